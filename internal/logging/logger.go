// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package logging constrói o logger de diagnóstico do daemon e guarda
// o estado global mutável que o resto do programa lê: o log level
// ativo e, indiretamente pelo *slog.Logger retornado por Init, o
// destino escolhido.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"os"
)

// Níveis aceitos pela chave log_level da configuração e pelos flags
// -d/-v, do mais verboso ao menos. "verbose" ganha um valor próprio
// entre Debug e Info do slog, e "notice" é o Info do slog, para que cada
// um dos cinco nomes mapeie a um nível único e estritamente ordenado.
const (
	LevelDebug   slog.Level = slog.LevelDebug // -4
	LevelVerbose slog.Level = slog.LevelDebug + 2
	LevelNotice  slog.Level = slog.LevelInfo // 0, o default
	LevelWarning slog.Level = slog.LevelWarn
	LevelError   slog.Level = slog.LevelError
)

// level é o log level global, seguro para concorrência. Todo
// diagnóstico o lê através do handler; -d e -v o elevam sem tocar no
// destino.
var level = new(slog.LevelVar)

func init() {
	level.Set(LevelNotice)
}

// ParseLevel mapeia um dos cinco nomes documentados para seu
// slog.Level. Nomes são casados exatamente; cada um tem seu próprio
// branch, sem fallback.
func ParseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return LevelDebug, nil
	case "verbose":
		return LevelVerbose, nil
	case "notice":
		return LevelNotice, nil
	case "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("logging: unknown level %q", name)
	}
}

// SetLevel instala lvl como nível global, incondicionalmente.
func SetLevel(lvl slog.Level) {
	level.Set(lvl)
}

// Raise instala lvl apenas se for mais verboso (numericamente menor)
// que o nível atual. É a regra "-d/-v só elevam a verbosidade": nunca
// silenciam um nível já mais verboso vindo da configuração.
func Raise(lvl slog.Level) {
	if lvl < level.Level() {
		level.Set(lvl)
	}
}

// Level retorna o log level global atual.
func Level() slog.Level {
	return level.Level()
}

// Init constrói o logger de diagnóstico conforme o contrato do
// -l <logspec>: spec vazio loga em stderr; "syslog:" loga no syslog
// sob a facility daemon com o PID no identificador; qualquer outro
// valor é um arquivo de destino aberto em append. O io.Closer
// retornado deve ser chamado no shutdown; é no-op para stderr.
func Init(logspec, progname string) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch {
	case logspec == "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), io.NopCloser(nil), nil

	case logspec == "syslog:":
		w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, progname)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: connecting to syslog: %w", err)
		}
		return slog.New(slog.NewTextHandler(w, opts)), w, nil

	default:
		f, err := os.OpenFile(logspec, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: opening %s: %w", logspec, err)
		}
		return slog.New(slog.NewJSONHandler(f, opts)), f, nil
	}
}
