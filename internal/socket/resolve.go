// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package socket

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// splitEndpoint parseia um descritor "host[:service]" ou
// "[ipv6-literal][:service]", tolerando literais bracketed que contêm
// dois-pontos. hasService reporta se havia service/porta no descritor.
func splitEndpoint(endpoint string) (host, service string, hasService bool, err error) {
	if strings.HasPrefix(endpoint, "[") {
		end := strings.IndexByte(endpoint, ']')
		if end < 0 {
			return "", "", false, fmt.Errorf("socket: unterminated bracketed literal in %q", endpoint)
		}
		host = endpoint[1:end]
		rest := endpoint[end+1:]
		if rest == "" {
			return host, "", false, nil
		}
		if !strings.HasPrefix(rest, ":") {
			return "", "", false, fmt.Errorf("socket: unexpected trailer %q in %q", rest, endpoint)
		}
		return host, rest[1:], true, nil
	}

	if i := strings.IndexByte(endpoint, ':'); i >= 0 {
		return endpoint[:i], endpoint[i+1:], true, nil
	}
	return endpoint, "", false, nil
}

// Resolve parseia endpoint e resolve o host pelo resolver do sistema.
// defaultPort é usado quando o descritor não traz service, e af é
// "tcp", "tcp4" ou "tcp6". Retorna a lista ordenada de alvos de dial
// ("ip:port" ou "[ip]:port"); o caller tenta cada um em ordem até um
// connect suceder.
func Resolve(ctx context.Context, endpoint string, defaultPort int, af string) ([]string, error) {
	host, service, hasService, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	port := defaultPort
	if hasService {
		p, err := strconv.Atoi(service)
		if err != nil {
			return nil, fmt.Errorf("socket: invalid service %q: %w", service, err)
		}
		port = p
	}

	if af == "" {
		af = "tcp"
	}

	ips, err := net.DefaultResolver.LookupIP(ctx, ipNetworkFor(af), host)
	if err != nil {
		return nil, fmt.Errorf("socket: resolving %q: %w", host, err)
	}

	targets := make([]string, 0, len(ips))
	for _, ip := range ips {
		targets = append(targets, net.JoinHostPort(ip.String(), strconv.Itoa(port)))
	}
	return targets, nil
}

func ipNetworkFor(af string) string {
	switch af {
	case "tcp4":
		return "ip4"
	case "tcp6":
		return "ip6"
	default:
		return "ip"
	}
}

// HostService separa endpoint em host e service, aplicando
// defaultService quando o descritor não traz um.
func HostService(endpoint, defaultService string) (host, service string, err error) {
	h, s, has, err := splitEndpoint(endpoint)
	if err != nil {
		return "", "", err
	}
	if !has {
		s = defaultService
	}
	return h, s, nil
}
