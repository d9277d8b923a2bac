// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package parser

import (
	"fmt"
	"regexp"

	"github.com/nishisan-dev/logjam/internal/event"
	"github.com/nishisan-dev/logjam/internal/logline"
)

// Parser é o contrato de plug-in que todo parser de linha satisfaz.
// Set/Get expõem propriedades de configuração string; um parser sem
// propriedades configuráveis rejeita qualquer chave.
type Parser interface {
	Set(key, value string) error
	Get(key string) (string, bool)
	Parse(line logline.LogLine) (*event.Event, bool)
}

// fieldMapping liga um capture group a um campo nomeado do Event.
// Os números de grupo são 1-based, como na numeração do regexp.
type fieldMapping struct {
	group int
	name  string
}

// regexParser é o template dos parsers concretos: uma regex compilada
// mais uma lista ordenada de mapeamentos grupo→campo, aplicada em ordem
// para produzir o Event.
type regexParser struct {
	re     *regexp.Regexp
	fields []fieldMapping
}

func newRegexParser(pattern string, fields []fieldMapping) *regexParser {
	return &regexParser{re: regexp.MustCompile(pattern), fields: fields}
}

// Set implementa Parser. Os parsers de regex não têm propriedades
// configuráveis.
func (p *regexParser) Set(key, value string) error {
	return fmt.Errorf("parser: unknown property %q", key)
}

// Get implementa Parser.
func (p *regexParser) Get(key string) (string, bool) {
	return "", false
}

// Parse roda a regex compilada contra line.What. Sem match retorna
// (nil, false) — não é erro, é o fluxo de controle primário para linha
// não reconhecida. Com match, carimba um Event com line.When convertido
// para segundos e copia cada capture group mapeado para seu campo, na
// ordem dos campos.
func (p *regexParser) Parse(line logline.LogLine) (*event.Event, bool) {
	m := p.re.FindStringSubmatch(line.What)
	if m == nil {
		return nil, false
	}

	ev := event.New(line.When.Unix())
	for _, f := range p.fields {
		if f.group >= len(m) {
			return nil, false
		}
		ev.Set(f.name, m[f.group])
	}
	return ev, true
}
