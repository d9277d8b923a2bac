// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"github.com/nishisan-dev/logjam/internal/config"
	"github.com/nishisan-dev/logjam/internal/flume"
	"github.com/nishisan-dev/logjam/internal/logging"
	"github.com/nishisan-dev/logjam/internal/parser"
	"github.com/nishisan-dev/logjam/internal/pidfile"
	"github.com/nishisan-dev/logjam/internal/reader"
	"github.com/nishisan-dev/logjam/internal/sender"
	"github.com/nishisan-dev/logjam/internal/supervisor"
)

// rotationSignal é auto-levantado pelo reader de arquivo ao detectar
// rotação; ver raiseRotationSignal.
const rotationSignal = syscall.SIGUSR2

const progname = "logjamd"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("c", "/etc/logjamd/logjamd.json", "configuration file path")
	debug := flag.Bool("d", false, "raise verbosity to debug")
	foreground := flag.Bool("f", false, "run in foreground")
	logspec := flag.String("l", "", "destination for diagnostics: empty for stderr, \"syslog:\" for syslog, or a file path")
	pidPath := flag.String("p", fmt.Sprintf("/var/run/%s.pid", progname), "PID file path")
	verbose := flag.Bool("v", false, "raise verbosity to verbose")
	flag.Parse()

	_ = foreground // sem etapa de daemonização; ver DESIGN.md

	logger, closer, err := logging.Init(*logspec, progname)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progname, err)
		return 1
	}
	defer closer.Close()

	if *debug {
		logging.Raise(logging.LevelDebug)
	}
	if *verbose {
		logging.Raise(logging.LevelVerbose)
	}

	pf, err := pidfile.Open(*pidPath)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer pf.Remove()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}

	flm, err := buildFlume(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}

	// O log_level da configuração vale como base; -d/-v continuam só
	// elevando por cima dele
	if cfg.LogLevel != "" {
		lvl, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Error("startup failed", "error", err)
			return 1
		}
		logging.SetLevel(lvl)
		if *debug {
			logging.Raise(logging.LevelDebug)
		}
		if *verbose {
			logging.Raise(logging.LevelVerbose)
		}
	}

	logger.Info("logjamd starting", "config", *configPath, "pidfile", *pidPath)

	if err := supervisor.Run(context.Background(), flm, logger); err != nil {
		logger.Error("supervisor exited with error", "error", err)
		return 1
	}

	logger.Info("logjamd stopped cleanly")
	return 0
}

// buildFlume instancia reader, parser e sender concretos a partir do
// único flume de cfg, aplicando as propriedades configuradas via Set.
// Classe ou propriedade desconhecida é erro fatal de configuração.
func buildFlume(cfg *config.File, logger *slog.Logger) (*flume.Flume, error) {
	spec := cfg.Flumes[0]

	r, err := buildReader(spec.Reader)
	if err != nil {
		return nil, err
	}

	p, err := buildParser(spec.Parser)
	if err != nil {
		return nil, err
	}

	s, err := buildSender(spec.Sender)
	if err != nil {
		return nil, err
	}

	logger.Info("flume wired",
		"reader", spec.Reader.Class,
		"parser", spec.Parser.Class,
		"sender", spec.Sender.Class,
	)
	return flume.New(r, p, s), nil
}

func buildReader(spec config.ComponentSpec) (reader.Reader, error) {
	var r reader.Reader
	switch spec.Class {
	case "file":
		r = reader.NewFile(raiseRotationSignal)
	case "systemd":
		r = reader.NewJournal()
	default:
		return nil, fmt.Errorf("config: unknown reader class %q", spec.Class)
	}
	if err := applyProperties(r, spec.Properties); err != nil {
		return nil, fmt.Errorf("config: reader: %w", err)
	}
	return r, nil
}

func buildParser(spec config.ComponentSpec) (parser.Parser, error) {
	var p parser.Parser
	switch spec.Class {
	case "sshd":
		p = parser.NewSSHD()
	case "bind":
		p = parser.NewBIND()
	default:
		return nil, fmt.Errorf("config: unknown parser class %q", spec.Class)
	}
	if err := applyProperties(p, spec.Properties); err != nil {
		return nil, fmt.Errorf("config: parser: %w", err)
	}
	return p, nil
}

func buildSender(spec config.ComponentSpec) (sender.Sender, error) {
	var s sender.Sender
	switch spec.Class {
	case "elk":
		s = sender.NewELK()
	default:
		return nil, fmt.Errorf("config: unknown sender class %q", spec.Class)
	}
	if err := applyProperties(s, spec.Properties); err != nil {
		return nil, fmt.Errorf("config: sender: %w", err)
	}
	return s, nil
}

// settable é a metade Set do contrato de plug-in, comum a
// reader.Reader, parser.Parser e sender.Sender.
type settable interface {
	Set(key, value string) error
}

func applyProperties(c settable, props map[string]string) error {
	for k, v := range props {
		if err := c.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// raiseRotationSignal auto-levanta SIGUSR2: rotação faz o supervisor
// emitir e zerar as estatísticas, nada mais.
func raiseRotationSignal() {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return
	}
	_ = p.Signal(rotationSignal)
}
