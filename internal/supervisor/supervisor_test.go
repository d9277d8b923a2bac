// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package supervisor

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/nishisan-dev/logjam/internal/event"
	"github.com/nishisan-dev/logjam/internal/flume"
	"github.com/nishisan-dev/logjam/internal/logline"
	"github.com/nishisan-dev/logjam/internal/reader"
)

// idleReader nunca produz linha; todo Read reporta try-again para os
// estágios ficarem ociosos sem sair.
type idleReader struct{}

func (idleReader) Set(key, value string) error   { return nil }
func (idleReader) Get(key string) (string, bool) { return "", false }
func (idleReader) Read() (logline.LogLine, error) {
	return logline.LogLine{}, reader.ErrTryAgain
}
func (idleReader) Close() error { return nil }

type noopParser struct{}

func (noopParser) Set(key, value string) error   { return nil }
func (noopParser) Get(key string) (string, bool) { return "", false }
func (noopParser) Parse(ll logline.LogLine) (*event.Event, bool) {
	return nil, false
}

type noopSender struct{}

func (noopSender) Set(key, value string) error   { return nil }
func (noopSender) Get(key string) (string, bool) { return "", false }
func (noopSender) Send(ev *event.Event) error    { return nil }
func (noopSender) Close() error                  { return nil }

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	var mu sync.Mutex
	return slog.New(slog.NewTextHandler(&lockedWriter{buf: buf, mu: &mu}, nil))
}

type lockedWriter struct {
	buf *bytes.Buffer
	mu  *sync.Mutex
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func TestSupervisor_RunStopsOnContextCancel(t *testing.T) {
	flm := flume.New(idleReader{}, noopParser{}, noopSender{})
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, flm, logger) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if !strings.Contains(buf.String(), "flume stats") {
		t.Fatal("expected a final stats line on shutdown")
	}
}

func TestSupervisor_RunEmitsStatsOnSIGUSR1(t *testing.T) {
	flm := flume.New(idleReader{}, noopParser{}, noopSender{})
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, flm, logger) }()

	time.Sleep(20 * time.Millisecond)
	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("failed to send SIGUSR1: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if !strings.Contains(buf.String(), "flume stats") {
		t.Fatal("expected SIGUSR1 to trigger a stats line")
	}
}
