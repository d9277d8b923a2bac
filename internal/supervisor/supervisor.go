// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package supervisor cuida do ciclo de vida de um flume: instala as
// disposições de sinal, inicia o pipeline, emite estatísticas de fila e
// processo periodicamente, e conduz o shutdown até o fim.
package supervisor

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/nishisan-dev/logjam/internal/flume"
)

// pollInterval é a granularidade do loop do supervisor para checar
// sinais.
const pollInterval = 100 * time.Millisecond

// statsInterval é a emissão de stats em cadência fixa, além das
// disparadas por SIGUSR1/SIGUSR2.
const statsInterval = 5 * time.Minute

// Run instala os handlers de sinal, inicia os três estágios de flm e
// bloqueia até SIGINT ou SIGTERM (ou o cancelamento do próprio ctx)
// pedir shutdown. Então junta os estágios, libera os recursos de flm e
// retorna. O retorno é sempre nil; exit code diferente de zero é
// decisão do caller com base no que Run logou. SIGPIPE nunca chega a
// um processo Go como sinal terminante — o runtime transforma
// broken-pipe em erro comum de escrita — então o "ignorar broken-pipe"
// vale estruturalmente, sem handler explícito.
func Run(ctx context.Context, flm *flume.Flume, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		defer close(done)
		flm.Run(ctx, logger)
	}()

	pid := os.Getpid()
	startedAt := time.Now()

	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	periodic := time.NewTicker(statsInterval)
	defer periodic.Stop()

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				logger.Info("received signal, initiating shutdown", "signal", sig.String())
				cancel()
			case syscall.SIGUSR1:
				emitStats(flm, logger, pid, startedAt, false)
			case syscall.SIGUSR2:
				emitStats(flm, logger, pid, startedAt, true)
			}

		case <-periodic.C:
			emitStats(flm, logger, pid, startedAt, false)

		case <-poll.C:
			// O tick só limita quanto tempo o select pode bloquear
			// entre checagens de sinal; não há mais nada a pollar, o
			// cancelamento já flui pelo ctx.

		case <-done:
			emitStats(flm, logger, pid, startedAt, false)
			if err := flm.Close(); err != nil {
				logger.Error("error releasing flume resources", "error", err)
			}
			return nil
		}
	}
}

// emitStats loga uma linha estruturada com as duas filas, a
// conectividade do sender, uptime e RSS do processo. Com clear=true os
// contadores de fila são zerados após a leitura, a semântica
// "emite e reseta" do SIGUSR2.
func emitStats(flm *flume.Flume, logger *slog.Logger, pid int, startedAt time.Time, clear bool) {
	stats := flm.Stats(clear)

	attrs := []any{
		"uptime_seconds", int64(time.Since(startedAt).Seconds()),
		"raw_queue_puts", stats.RawQueue.Puts,
		"raw_queue_gets", stats.RawQueue.Gets,
		"raw_queue_drops", stats.RawQueue.Drops,
		"event_queue_puts", stats.EventQueue.Puts,
		"event_queue_gets", stats.EventQueue.Gets,
		"event_queue_drops", stats.EventQueue.Drops,
		"cleared", clear,
	}

	if connected, ok := flm.SenderConnected(); ok {
		attrs = append(attrs, "sender_connected", connected)
	}

	if proc, err := process.NewProcess(int32(pid)); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			attrs = append(attrs, "rss_bytes", mem.RSS)
		}
	}

	logger.Info("flume stats", attrs...)
}
