// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package parser

// sshdPattern reconhece linhas de falha de autenticação do OpenSSH, ex.
// "Failed password for alice from 192.0.2.5 port 44123 ssh2" ou
// "Failed publickey for invalid user root from 198.51.100.1 port 22 ssh2".
const sshdPattern = `^Failed ([a-z-]+) for (invalid user |)([0-9a-z-]+) from ([0-9A-Fa-f:.]+) port ([0-9]+) ssh([0-9.]+)$`

// NewSSHD retorna um parser de linhas de falha de autenticação SSH.
// O grupo 2 (marcador "invalid user ") não é mapeado para campo algum.
func NewSSHD() Parser {
	return newRegexParser(sshdPattern, []fieldMapping{
		{group: 1, name: "method"},
		{group: 3, name: "login"},
		{group: 4, name: "client_addr"},
		{group: 5, name: "client_port"},
		{group: 6, name: "protocol"},
	})
}
