// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package parser

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nishisan-dev/logjam/internal/logline"
)

func TestSSHD_ParseFailedPassword(t *testing.T) {
	p := NewSSHD()
	when := time.UnixMicro(1_700_000_000_000_000)
	line := logline.New(when, "Failed password for alice from 192.0.2.5 port 44123 ssh2")

	ev, ok := p.Parse(line)
	if !ok {
		t.Fatal("expected a match, got ok=false")
	}

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	want := `{"timestamp":1700000000,"method":"password","login":"alice","client_addr":"192.0.2.5","client_port":"44123","protocol":"2"}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}
}

func TestSSHD_ParseInvalidUser(t *testing.T) {
	p := NewSSHD()
	line := logline.New(time.Unix(0, 0), "Failed publickey for invalid user root from 198.51.100.1 port 22 ssh2")

	ev, ok := p.Parse(line)
	if !ok {
		t.Fatal("expected a match, got ok=false")
	}
	if v, _ := ev.Get("login"); v != "root" {
		t.Fatalf("expected login root, got %v", v)
	}
	if _, ok := ev.Get("invalid_user"); ok {
		t.Fatal("expected no invalid_user field")
	}
}

func TestSSHD_ParseNoMatch(t *testing.T) {
	p := NewSSHD()
	line := logline.New(time.Now(), "this is not an ssh line")
	if _, ok := p.Parse(line); ok {
		t.Fatal("expected ok=false for non-matching line, got true")
	}
}

func TestBIND_ParseQueryLine(t *testing.T) {
	p := NewBIND()
	line := logline.New(time.Unix(0, 0),
		"queries: info: client 198.51.100.7#53123 (example.com): query: example.com IN A +E (203.0.113.9)")

	ev, ok := p.Parse(line)
	if !ok {
		t.Fatal("expected a match, got ok=false")
	}

	wantFields := map[string]string{
		"client_addr": "198.51.100.7",
		"client_port": "53123",
		"dnsname":     "example.com",
		"class":       "IN",
		"type":        "A",
		"recurse":     "+",
		"flags":       "E",
		"server_addr": "203.0.113.9",
	}
	for k, want := range wantFields {
		got, ok := ev.Get(k)
		if !ok || got != want {
			t.Fatalf("expected field %q = %q, got %v (ok=%v)", k, want, got, ok)
		}
	}
}

func TestBIND_ParseNoSeverityLabel(t *testing.T) {
	p := NewBIND()
	line := logline.New(time.Unix(0, 0),
		"queries: client 198.51.100.7#53123 (example.com): query: example.com IN A +E (203.0.113.9)")
	if _, ok := p.Parse(line); !ok {
		t.Fatal("expected a match with the severity label omitted, got ok=false")
	}
}

func TestRegexParser_SetRejectsUnknownProperty(t *testing.T) {
	p := NewSSHD()
	if err := p.Set("anything", "value"); err == nil {
		t.Fatal("expected error for unconfigurable parser, got nil")
	}
}
