// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package reader

import (
	"fmt"
	"strconv"
	"time"

	"github.com/coreos/go-systemd/v22/sdjournal"

	"github.com/nishisan-dev/logjam/internal/logline"
)

// timestampField é o campo do journal com o timestamp real-time da
// origem, em microssegundos.
const timestampField = "_SOURCE_REALTIME_TIMESTAMP"

// Journal lê o journal local do systemd, filtrado para uma service
// unit, posicionado no tail ao abrir. Não é seguro para uso concorrente.
type Journal struct {
	j    *sdjournal.Journal
	unit string
}

// NewJournal retorna um reader Journal ainda não aberto.
func NewJournal() *Journal {
	return &Journal{}
}

// Set implementa Reader. A única chave reconhecida é "unit". Setar com
// o journal já aberto limpa o match existente, instala o novo e
// reposiciona no tail — ponto sem retorno: o filtro antigo é perdido
// mesmo que a instalação do novo falhe.
func (r *Journal) Set(key, value string) error {
	if key != "unit" {
		return fmt.Errorf("reader: unknown property %q", key)
	}
	return r.setUnit(value)
}

func (r *Journal) setUnit(unit string) error {
	if r.j == nil {
		j, err := sdjournal.NewJournal()
		if err != nil {
			return fmt.Errorf("reader: opening journal: %w", err)
		}
		r.j = j

		if err := r.j.SeekTail(); err != nil {
			return fmt.Errorf("reader: seeking journal tail: %w", err)
		}
		if err := r.j.AddMatch("_SYSTEMD_UNIT=" + unit); err != nil {
			return fmt.Errorf("reader: installing journal filter: %w", err)
		}
		r.unit = unit
		return nil
	}

	r.j.FlushMatches()
	if err := r.j.AddMatch("_SYSTEMD_UNIT=" + unit); err != nil {
		r.unit = ""
		return fmt.Errorf("reader: installing journal filter: %w", err)
	}
	if err := r.j.SeekTail(); err != nil {
		return fmt.Errorf("reader: re-seeking journal tail: %w", err)
	}
	r.unit = unit
	return nil
}

// Get implementa Reader.
func (r *Journal) Get(key string) (string, bool) {
	if key == "unit" {
		return r.unit, r.unit != ""
	}
	return "", false
}

// Read implementa Reader.
func (r *Journal) Read() (logline.LogLine, error) {
	if r.j == nil {
		return logline.LogLine{}, fmt.Errorf("reader: no unit configured")
	}

	n, err := r.j.Next()
	if err != nil {
		return logline.LogLine{}, fmt.Errorf("reader: advancing journal cursor: %w", err)
	}
	if n == 0 {
		return logline.LogLine{}, ErrTryAgain
	}

	msg, err := r.j.GetDataValue("MESSAGE")
	if err != nil {
		return logline.LogLine{}, fmt.Errorf("reader: reading MESSAGE field: %w", err)
	}

	// Timestamp ausente ou não-parseável: carimba com o relógio atual
	when := time.Now()
	if raw, err := r.j.GetDataValue(timestampField); err == nil {
		if usec, err := strconv.ParseUint(raw, 10, 64); err == nil {
			when = time.UnixMicro(int64(usec))
		}
	}

	return logline.New(when, msg), nil
}

// Close implementa Reader.
func (r *Journal) Close() error {
	if r.j == nil {
		return nil
	}
	return r.j.Close()
}
