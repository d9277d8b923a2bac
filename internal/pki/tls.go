// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package pki fornece funções para configuração de TLS do socket do
// sender: TLS de mão única confiando no root store do sistema, com
// certificado de cliente opcional para coletores que exigem um.
package pki

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// NewSenderTLSConfig retorna uma configuração TLS de cliente confiando
// no pool de certificados raiz do sistema. A identidade do coletor é
// verificada contra esse pool; não há autenticação mútua a menos que um
// certificado de cliente seja anexado via LoadClientCertificate.
func NewSenderTLSConfig() (*tls.Config, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("loading system root certificate pool: %w", err)
	}
	if pool == nil {
		pool = x509.NewCertPool()
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    pool,
	}, nil
}

// LoadClientCertificate carrega um par certificado/chave PEM para
// apresentação no handshake. keyPath vazio significa chave concatenada
// no próprio arquivo do certificado.
func LoadClientCertificate(certPath, keyPath string) (tls.Certificate, error) {
	if keyPath == "" {
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("loading client certificate: %w", err)
	}
	return cert, nil
}
