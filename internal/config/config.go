// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// File representa o documento de configuração completo do logjamd.
type File struct {
	Flumes   []FlumeSpec `json:"flumes"`
	LogLevel string      `json:"log_level,omitempty"`
}

// FlumeSpec descreve os três componentes de um flume.
type FlumeSpec struct {
	Reader ComponentSpec `json:"reader"`
	Parser ComponentSpec `json:"parser"`
	Sender ComponentSpec `json:"sender"`
}

// ComponentSpec é o nome de classe de um componente mais um conjunto
// arbitrário de propriedades string, repassadas sem alteração ao Set do
// componente.
type ComponentSpec struct {
	Class      string
	Properties map[string]string
}

// UnmarshalJSON implementa um decode próprio: "class" é obrigatório e
// deve ser string; qualquer outra chave vira propriedade e também deve
// ter valor string, casando com o contrato Set(key, value string) dos
// plug-ins.
func (c *ComponentSpec) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: decoding component object: %w", err)
	}

	classRaw, ok := raw["class"]
	if !ok {
		return fmt.Errorf(`config: component missing required "class" key`)
	}
	var class string
	if err := json.Unmarshal(classRaw, &class); err != nil {
		return fmt.Errorf(`config: "class" must be a string: %w`, err)
	}
	delete(raw, "class")

	props := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("config: property %q must be a string: %w", k, err)
		}
		props[k] = s
	}

	c.Class = class
	c.Properties = props
	return nil
}

var (
	validReaderClasses = map[string]bool{"file": true, "systemd": true}
	validParserClasses = map[string]bool{"sshd": true, "bind": true}
	validSenderClasses = map[string]bool{"elk": true}
	validLogLevels     = map[string]bool{
		"debug": true, "verbose": true, "notice": true, "warning": true, "error": true,
	}
)

// Load lê e valida o arquivo de configuração em path. Chave desconhecida
// no nível do documento ou do flume é erro fatal.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if len(f.Flumes) != 1 {
		return fmt.Errorf("config: exactly one flume is supported, got %d", len(f.Flumes))
	}
	if f.LogLevel != "" && !validLogLevels[f.LogLevel] {
		return fmt.Errorf("config: unknown log_level %q", f.LogLevel)
	}

	flume := f.Flumes[0]
	if !validReaderClasses[flume.Reader.Class] {
		return fmt.Errorf("config: unknown reader class %q", flume.Reader.Class)
	}
	if !validParserClasses[flume.Parser.Class] {
		return fmt.Errorf("config: unknown parser class %q", flume.Parser.Class)
	}
	if !validSenderClasses[flume.Sender.Class] {
		return fmt.Errorf("config: unknown sender class %q", flume.Sender.Class)
	}
	return nil
}
