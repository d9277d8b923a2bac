// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package socket

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/nishisan-dev/logjam/internal/pki"
)

// tlsState acompanha a prontidão do TLS, independente de haver conexão
// TCP aberta no momento.
type tlsState int

const (
	tlsDisabled tlsState = iota
	tlsEnabled
	tlsConnected
	tlsFailed
)

// DefaultHandshakeTimeout limita a duração do handshake TLS no Open.
const DefaultHandshakeTimeout = 10 * time.Second

// DefaultDialTimeout limita quanto tempo cada endereço candidato tem
// para completar o connect TCP no Open.
const DefaultDialTimeout = 10 * time.Second

// Socket é um stream TCP até target, opcionalmente protegido por TLS.
// Tem no máximo uma conexão ativa por vez e pertence a uma única
// goroutine durante toda a vida; não há locking interno.
type Socket struct {
	target      string
	defaultPort int
	family      string // "tcp", "tcp4", "tcp6"

	conn    net.Conn
	state   tlsState
	tlsConf *tls.Config
	lastErr error

	handshakeTimeout time.Duration
	dialTimeout      time.Duration
}

// New cria um Socket para target (host[:port] ou [ipv6][:port]); nenhuma
// atividade de rede acontece antes do Open.
func New(target string, defaultPort int) *Socket {
	return &Socket{
		target:           target,
		defaultPort:      defaultPort,
		family:           "tcp",
		handshakeTimeout: DefaultHandshakeTimeout,
		dialTimeout:      DefaultDialTimeout,
	}
}

// UseTLS provisiona credenciais TLS confiando no root store do sistema.
// Só é legal sem conexão aberta e com TLS ainda desabilitado. Em caso
// de falha o TLS permanece desabilitado e o socket segue utilizável em
// plaintext.
func (s *Socket) UseTLS() error {
	if s.conn != nil {
		return errors.New("socket: cannot enable TLS while a connection is open")
	}
	if s.state != tlsDisabled {
		return errors.New("socket: TLS already configured")
	}

	conf, err := pki.NewSenderTLSConfig()
	if err != nil {
		return fmt.Errorf("socket: %w", err)
	}

	s.tlsConf = conf
	s.state = tlsEnabled
	return nil
}

// UseCert carrega um certificado de cliente opcional, apresentado no
// handshake. Só é legal depois de UseTLS ter sucedido e antes do Open.
func (s *Socket) UseCert(certPath, keyPath string) error {
	if s.state != tlsEnabled {
		return errors.New("socket: UseCert requires UseTLS to have succeeded first")
	}
	if s.conn != nil {
		return errors.New("socket: cannot set client certificate while a connection is open")
	}

	cert, err := pki.LoadClientCertificate(certPath, keyPath)
	if err != nil {
		return fmt.Errorf("socket: %w", err)
	}
	s.tlsConf.Certificates = []tls.Certificate{cert}
	return nil
}

// Open resolve target, conecta TCP (tentando cada endereço candidato em
// ordem) e, com TLS habilitado, conduz o handshake até o fim. Erro
// fatal de handshake transiciona o TLS para failed e fecha a conexão
// TCP.
func (s *Socket) Open(ctx context.Context) error {
	targets, err := Resolve(ctx, s.target, s.defaultPort, s.family)
	if err != nil {
		s.lastErr = err
		return err
	}

	dialer := net.Dialer{Timeout: s.dialTimeout}
	var conn net.Conn
	var dialErr error
	for _, addr := range targets {
		conn, dialErr = dialer.DialContext(ctx, "tcp", addr)
		if dialErr == nil {
			break
		}
	}
	if dialErr != nil {
		s.lastErr = dialErr
		return fmt.Errorf("socket: connecting to %s: %w", s.target, dialErr)
	}

	if s.state == tlsEnabled {
		hctx, cancel := context.WithTimeout(ctx, s.handshakeTimeout)
		defer cancel()

		tlsConn := tls.Client(conn, s.tlsConf)
		if err := tlsConn.HandshakeContext(hctx); err != nil {
			conn.Close()
			s.state = tlsFailed
			s.lastErr = err
			return fmt.Errorf("socket: TLS handshake: %w", err)
		}
		conn = tlsConn
		s.state = tlsConnected
	}

	s.conn = conn
	s.lastErr = nil
	return nil
}

// Close derruba a conexão atual, se houver. Com TLS conectado envia o
// close-notify primeiro (erros tolerados). O estado TLS volta de
// failed/connected para enabled; um socket disabled permanece disabled.
func (s *Socket) Close() error {
	if s.conn == nil {
		if s.state == tlsFailed {
			s.state = tlsEnabled
		}
		return nil
	}

	var closeErr error
	if s.state == tlsConnected {
		closeErr = s.conn.Close()
		s.state = tlsEnabled
	} else {
		closeErr = s.conn.Close()
		if s.state == tlsFailed {
			s.state = tlsEnabled
		}
	}
	s.conn = nil
	return closeErr
}

// Reopen fecha a conexão atual (se houver) e abre uma nova.
func (s *Socket) Reopen(ctx context.Context) error {
	s.Close()
	return s.Open(ctx)
}

// Write envia p por inteiro ou retorna erro; escrita parcial nunca é
// reportada ao caller. Erro fatal registra lastErr e, se o TLS estava
// conectado, o transiciona para failed.
func (s *Socket) Write(p []byte) (int, error) {
	if s.conn == nil {
		return 0, errors.New("socket: not open")
	}

	total := 0
	for total < len(p) {
		n, err := s.conn.Write(p[total:])
		total += n
		if err != nil {
			s.lastErr = err
			if s.state == tlsConnected {
				s.state = tlsFailed
			}
			return total, err
		}
	}
	return total, nil
}

// Connected reporta se o socket está pronto para escrever: TCP aberto,
// nenhum erro registrado, e TLS disabled ou connected.
func (s *Socket) Connected() bool {
	return s.conn != nil && s.lastErr == nil && (s.state == tlsDisabled || s.state == tlsConnected)
}

// LastError retorna o erro fatal mais recente, se houver.
func (s *Socket) LastError() error {
	return s.lastErr
}
