// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package parser

// bindPattern reconhece linhas de query log do BIND/named, ex.
// "queries: info: client 198.51.100.7#53123 (example.com): query: example.com IN A +E (203.0.113.9)".
//
// O ".*" entre o endereço do client e "query:" tolera ambiguidade no
// prefixo signer/qname: match greedy, não ancorado, até ": query: ".
const bindPattern = `^queries:( [0-9a-z]+:)? client ([0-9A-Fa-f:.]+)#([0-9]+).*: query: ([0-9A-Za-z._-]+) ([A-Z]+) ([0-9A-Z]+) ([+-])([A-Z]*) \(([0-9A-Fa-f:.]+)\)$`

// NewBIND retorna um parser de linhas de query log DNS do BIND/named.
// O grupo 1 (label de severidade, opcional) não é mapeado para campo.
func NewBIND() Parser {
	return newRegexParser(bindPattern, []fieldMapping{
		{group: 2, name: "client_addr"},
		{group: 3, name: "client_port"},
		{group: 4, name: "dnsname"},
		{group: 5, name: "class"},
		{group: 6, name: "type"},
		{group: 7, name: "recurse"},
		{group: 8, name: "flags"},
		{group: 9, name: "server_addr"},
	})
}
