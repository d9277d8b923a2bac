// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package sender

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/nishisan-dev/logjam/internal/event"
	"github.com/nishisan-dev/logjam/internal/logline"
	"github.com/nishisan-dev/logjam/internal/socket"
)

// defaultELKPort é usado quando o descritor do servidor omite o service.
const defaultELKPort = 6514

// minBurst é o piso do burst do rate limiter: o maior chunk que
// WriteJSON emite é um valor de campo vindo de uma linha (payload
// limitado a logline.MaxWhatLen), e o escape JSON expande no pior caso
// 6x (controle vira \u00XX), então 8x o payload cobre qualquer chunk de
// frame mesmo com rate configurado abaixo disso. Sem um piso, um rate
// menor que um chunk faria WaitN falhar sempre.
const minBurst = 8 * logline.MaxWhatLen

// streamSocket é o subconjunto de *socket.Socket que o sender ELK usa,
// estreitado para os testes poderem substituir o transporte.
type streamSocket interface {
	Connected() bool
	Reopen(ctx context.Context) error
	Write(p []byte) (int, error)
	Close() error
}

// ELK entrega events a um coletor downstream como JSON delimitado por
// newline sobre um stream TCP protegido por TLS.
type ELK struct {
	server   string
	certPath string
	keyPath  string
	rate     int64

	template *event.Event
	sock     streamSocket
	writer   io.Writer

	ctx context.Context
}

// NewELK retorna um sender ELK sem configuração. Configure "server"
// antes do primeiro Send.
func NewELK() *ELK {
	return &ELK{
		template: event.NewEmpty(),
		ctx:      context.Background(),
	}
}

// Set implementa Sender.
func (e *ELK) Set(key, value string) error {
	switch key {
	case "server":
		e.server = value
	case "cert":
		e.certPath = value
	case "key":
		e.keyPath = value
	case "logowner":
		e.template.Set("logowner", value)
	case "application":
		e.template.Set("application", value)
	case "rate_bytes_per_sec":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("sender: invalid rate_bytes_per_sec %q: %w", value, err)
		}
		e.rate = n
	default:
		return fmt.Errorf("sender: unknown property %q", key)
	}
	return nil
}

// Get implementa Sender.
func (e *ELK) Get(key string) (string, bool) {
	switch key {
	case "server":
		return e.server, e.server != ""
	case "cert":
		return e.certPath, e.certPath != ""
	case "logowner":
		v, ok := e.template.Get("logowner")
		if !ok {
			return "", false
		}
		return v.(string), true
	case "application":
		v, ok := e.template.Get("application")
		if !ok {
			return "", false
		}
		return v.(string), true
	default:
		return "", false
	}
}

func (e *ELK) ensureSocket() error {
	if e.sock != nil {
		return nil
	}
	if e.server == "" {
		return fmt.Errorf("sender: no server configured")
	}

	sock := socket.New(e.server, defaultELKPort)
	if err := sock.UseTLS(); err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	if e.certPath != "" {
		if err := sock.UseCert(e.certPath, e.keyPath); err != nil {
			return fmt.Errorf("sender: %w", err)
		}
	}

	e.sock = sock
	e.writer = sock
	if e.rate > 0 {
		burst := int(e.rate)
		if burst < minBurst {
			burst = minBurst
		}
		e.writer = &pacedSocket{
			sock:    sock,
			limiter: rate.NewLimiter(rate.Limit(e.rate), burst),
			ctx:     e.ctx,
		}
	}
	return nil
}

// pacedSocket aplica o rate limit do sender sobre o socket, um WaitN
// por chunk de frame. Diferente de um throttle de stream genérico, não
// há split de escrita por burst: os chunks que WriteJSON e o terminador
// de frame produzem são sempre menores que minBurst, então cada Write é
// uma reserva única de tokens e chega inteiro ao socket — escrita
// parcial aqui quebraria a disciplina de frame do Send.
type pacedSocket struct {
	sock    streamSocket
	limiter *rate.Limiter
	ctx     context.Context
}

func (ps *pacedSocket) Write(p []byte) (int, error) {
	if err := ps.limiter.WaitN(ps.ctx, len(p)); err != nil {
		return 0, err
	}
	return ps.sock.Write(p)
}

// Send entrega ev ao coletor, (re)conectando o socket se necessário.
// O terminador de frame (um newline) é SEMPRE escrito após a tentativa,
// com ou sem sucesso da serialização e do corpo — assim um registro
// parcial nunca dessincroniza o stream no coletor.
func (e *ELK) Send(ev *event.Event) error {
	if err := e.ensureSocket(); err != nil {
		return err
	}

	if !e.sock.Connected() {
		if err := e.sock.Reopen(e.ctx); err != nil {
			return fmt.Errorf("sender: reconnecting: %w", err)
		}
	}

	transmit := ev.Clone()
	transmit.Overlay(e.template)

	writeErr := transmit.WriteJSON(e.writer)

	_, newlineErr := e.writer.Write([]byte("\n"))

	if writeErr != nil {
		return fmt.Errorf("sender: serializing event: %w", writeErr)
	}
	if newlineErr != nil {
		return fmt.Errorf("sender: writing frame terminator: %w", newlineErr)
	}
	return nil
}

// Close libera o socket, se houver.
func (e *ELK) Close() error {
	if e.sock == nil {
		return nil
	}
	return e.sock.Close()
}

// Connected reporta se o socket está pronto para escrever, para a
// linha periódica de stats do supervisor. Um sender que nunca tentou
// um Send reporta false.
func (e *ELK) Connected() bool {
	if e.sock == nil {
		return false
	}
	return e.sock.Connected()
}
