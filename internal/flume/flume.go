// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package flume liga um reader, um parser e um sender através de duas
// filas limitadas e os executa como três estágios concorrentes:
// Reader -> fila de linhas -> Parser -> fila de events -> Sender.
package flume

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nishisan-dev/logjam/internal/cirq"
	"github.com/nishisan-dev/logjam/internal/event"
	"github.com/nishisan-dev/logjam/internal/logline"
	"github.com/nishisan-dev/logjam/internal/parser"
	"github.com/nishisan-dev/logjam/internal/reader"
	"github.com/nishisan-dev/logjam/internal/sender"
)

// DefaultQueueSize é a capacidade default de cada fila de estágio.
const DefaultQueueSize = 1024

// pollInterval é quanto o estágio reader dorme após um try-again, e a
// granularidade com que cada estágio re-checa cancelamento.
const pollInterval = 100 * time.Millisecond

// Stats é um snapshot dos contadores acumulados das duas filas.
type Stats struct {
	RawQueue   cirq.Stats
	EventQueue cirq.Stats
}

// Flume é dono de um reader, um parser, um sender e das duas filas que
// os conectam. É montado uma vez por New e executado até o context ser
// cancelado.
type Flume struct {
	reader reader.Reader
	parser parser.Parser
	sender sender.Sender

	rawQueue   *cirq.Queue[logline.LogLine]
	eventQueue *cirq.Queue[*event.Event]
}

// New monta um Flume a partir de componentes já configurados.
func New(r reader.Reader, p parser.Parser, s sender.Sender) *Flume {
	return &Flume{
		reader:     r,
		parser:     p,
		sender:     s,
		rawQueue:   cirq.New[logline.LogLine](DefaultQueueSize),
		eventQueue: cirq.New[*event.Event](DefaultQueueSize),
	}
}

// Run inicia as três goroutines de estágio e bloqueia até todas
// saírem. Os estágios saem quando ctx termina ou, no caso do reader,
// quando a fonte reporta um erro fatal (não try-again).
func (f *Flume) Run(ctx context.Context, logger *slog.Logger) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		f.runReader(ctx, logger)
	}()
	go func() {
		defer wg.Done()
		f.runParser(ctx, logger)
	}()
	go func() {
		defer wg.Done()
		f.runSender(ctx, logger)
	}()

	wg.Wait()
}

// runReader: lê, enfileira, re-tenta em try-again, descarta linha
// oversize com warning, e para em qualquer outro erro.
func (f *Flume) runReader(ctx context.Context, logger *slog.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}

		ll, err := f.reader.Read()
		if err != nil {
			if errors.Is(err, reader.ErrTryAgain) {
				select {
				case <-ctx.Done():
					return
				case <-time.After(pollInterval):
				}
				continue
			}
			if errors.Is(err, reader.ErrMessageTooLong) {
				logger.Warn("reader stage: oversize line discarded", "error", err)
				continue
			}
			logger.Error("reader stage stopped", "error", err)
			return
		}

		// LogLine deslocada é simplesmente descartada; o GC recolhe,
		// não há destrutor a executar.
		f.rawQueue.Put(ll)
	}
}

// runParser drena a fila de linhas, ignorando as que o parser não
// reconhece (Parse com ok=false não é erro).
func (f *Flume) runParser(ctx context.Context, logger *slog.Logger) {
	for {
		gctx, cancel := context.WithTimeout(ctx, pollInterval)
		ll, ok := f.rawQueue.Get(gctx)
		cancel()
		if !ok {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		ev, matched := f.parser.Parse(ll)
		if !matched {
			continue
		}
		f.eventQueue.Put(ev)
	}
}

// runSender drena a fila de events e entrega cada um. Falha de entrega
// é logada e o estágio continua; o reconnect-no-próximo-send do sender
// cobre perda transitória de conectividade.
func (f *Flume) runSender(ctx context.Context, logger *slog.Logger) {
	for {
		gctx, cancel := context.WithTimeout(ctx, pollInterval)
		ev, ok := f.eventQueue.Get(gctx)
		cancel()
		if !ok {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		if err := f.sender.Send(ev); err != nil {
			logger.Error("sender stage: delivery failed", "error", err)
		}
	}
}

// connectedChecker é satisfeita por senders que sabem reportar a
// conectividade atual do transporte, como *sender.ELK.
type connectedChecker interface {
	Connected() bool
}

// SenderConnected reporta a conectividade do transporte do sender, para
// a linha periódica de stats do supervisor. ok é false se o sender
// configurado não expõe essa checagem.
func (f *Flume) SenderConnected() (connected, ok bool) {
	cc, ok := f.sender.(connectedChecker)
	if !ok {
		return false, false
	}
	return cc.Connected(), true
}

// Stats retorna os contadores put/get/drop atuais das duas filas. Se
// clear é true, ambos são zerados atomicamente após a leitura.
func (f *Flume) Stats(clear bool) Stats {
	return Stats{
		RawQueue:   f.rawQueue.Stat(clear),
		EventQueue: f.eventQueue.Stat(clear),
	}
}

// Close libera os recursos do reader e do sender. Não para as
// goroutines de estágio; cancele o context do Run primeiro.
func (f *Flume) Close() error {
	var firstErr error
	if err := f.reader.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := f.sender.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
