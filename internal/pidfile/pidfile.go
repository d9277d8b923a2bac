// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package pidfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// PIDFile representa um PID file criado e ainda não removido.
type PIDFile struct {
	path string
}

// Open cria path (modo 0600) com o PID do processo. Se path já existe
// e nomeia um processo vivo, falha com "already running with PID <n>"
// em vez de sobrescrever. Arquivo stale (processo morto, ou ilegível)
// é substituído.
func Open(path string) (*PIDFile, error) {
	if pid, ok := readLivePID(path); ok {
		return nil, fmt.Errorf("already running with PID %d", pid)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("pidfile: creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		return nil, fmt.Errorf("pidfile: writing %s: %w", path, err)
	}

	return &PIDFile{path: path}, nil
}

// Remove apaga o PID file. Seguro de chamar em *PIDFile nil.
func (p *PIDFile) Remove() error {
	if p == nil {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pidfile: removing %s: %w", p.path, err)
	}
	return nil
}

// readLivePID lê path e reporta o PID que ele nomeia, se houver, e se
// esse processo ainda está vivo. Qualquer falha de leitura ou parse é
// tratada como "sem PID vivo", para um arquivo stale ou corrompido
// nunca bloquear o startup.
func readLivePID(path string) (pid int, alive bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	// Sinal 0 não entrega nada mas reporta ESRCH para processo que não
	// existe mais — o probe de liveness padrão do POSIX. EPERM significa
	// que o processo existe mas pertence a outro usuário: está vivo.
	if err := syscall.Kill(pid, 0); err != nil && err != syscall.EPERM {
		return 0, false
	}
	return pid, true
}
