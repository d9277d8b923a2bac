// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "logjam.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `{
		"log_level": "notice",
		"flumes": [{
			"reader": {"class": "file", "path": "/var/log/auth.log", "datefmt": "Jan _2 15:04:05"},
			"parser": {"class": "sshd"},
			"sender": {"class": "elk", "server": "logs.example.com:6514", "logowner": "secteam"}
		}]
	}`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if f.LogLevel != "notice" {
		t.Errorf("expected log_level 'notice', got %q", f.LogLevel)
	}
	if len(f.Flumes) != 1 {
		t.Fatalf("expected 1 flume, got %d", len(f.Flumes))
	}
	flume := f.Flumes[0]
	if flume.Reader.Class != "file" {
		t.Errorf("expected reader class 'file', got %q", flume.Reader.Class)
	}
	if got, want := flume.Reader.Properties["path"], "/var/log/auth.log"; got != want {
		t.Errorf("expected reader path %q, got %q", want, got)
	}
	if flume.Parser.Class != "sshd" {
		t.Errorf("expected parser class 'sshd', got %q", flume.Parser.Class)
	}
	if flume.Sender.Properties["logowner"] != "secteam" {
		t.Errorf("expected sender logowner 'secteam', got %q", flume.Sender.Properties["logowner"])
	}
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	cfgPath := filepath.Join("..", "..", "configs", "logjamd.example.json")
	f, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load example config: %v", err)
	}

	if f.LogLevel != "notice" {
		t.Errorf("expected log_level 'notice', got %q", f.LogLevel)
	}
	flume := f.Flumes[0]
	if flume.Reader.Class != "file" {
		t.Errorf("expected reader class 'file', got %q", flume.Reader.Class)
	}
	if flume.Sender.Properties["server"] != "logs.example.com:6514" {
		t.Errorf("expected sender server 'logs.example.com:6514', got %q", flume.Sender.Properties["server"])
	}
}

func TestLoadConfig_RejectsUnknownTopLevelKey(t *testing.T) {
	path := writeConfig(t, `{
		"flumes": [{"reader": {"class": "file"}, "parser": {"class": "sshd"}, "sender": {"class": "elk"}}],
		"bogus": true
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown top-level key, got nil")
	}
}

func TestLoadConfig_RejectsUnknownReaderClass(t *testing.T) {
	path := writeConfig(t, `{
		"flumes": [{"reader": {"class": "tcp"}, "parser": {"class": "sshd"}, "sender": {"class": "elk"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown reader class, got nil")
	}
}

func TestLoadConfig_RejectsNonStringProperty(t *testing.T) {
	path := writeConfig(t, `{
		"flumes": [{
			"reader": {"class": "file", "path": 7},
			"parser": {"class": "sshd"},
			"sender": {"class": "elk"}
		}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-string property value, got nil")
	}
}

func TestLoadConfig_RejectsMissingClass(t *testing.T) {
	path := writeConfig(t, `{
		"flumes": [{"reader": {"path": "/x"}, "parser": {"class": "sshd"}, "sender": {"class": "elk"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing class, got nil")
	}
}

func TestLoadConfig_RejectsMultipleFlumes(t *testing.T) {
	flume := `{"reader": {"class": "file"}, "parser": {"class": "sshd"}, "sender": {"class": "elk"}}`
	path := writeConfig(t, `{"flumes": [`+flume+`, `+flume+`]}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for more than one flume, got nil")
	}
}

func TestLoadConfig_RejectsUnknownLogLevel(t *testing.T) {
	path := writeConfig(t, `{
		"log_level": "chatty",
		"flumes": [{"reader": {"class": "file"}, "parser": {"class": "sshd"}, "sender": {"class": "elk"}}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown log_level, got nil")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
