// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package reader implementa o contrato de plug-in das fontes de log: um
// arquivo texto em tail-follow e um cursor do journal do systemd, cada
// um produzindo LogLines para o estágio de parse.
package reader

import (
	"errors"

	"github.com/nishisan-dev/logjam/internal/logline"
)

// ErrTryAgain indica que não há dado disponível no momento e o caller
// deve re-tentar após uma pausa breve. Não é condição de erro para o
// pipeline.
var ErrTryAgain = errors.New("reader: try again")

// ErrMessageTooLong indica que uma linha excedeu o buffer interno do
// reader antes de um newline ser encontrado. O buffer já foi
// descartado; o resto da linha oversize aparece como linha truncada na
// próxima chamada.
var ErrMessageTooLong = errors.New("reader: message too long")

// Reader é o contrato de plug-in que toda fonte de log satisfaz.
type Reader interface {
	Set(key, value string) error
	Get(key string) (string, bool)
	Read() (logline.LogLine, error)
	Close() error
}
