// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the Logjam License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package sender

import "github.com/nishisan-dev/logjam/internal/event"

// Sender é o contrato de plug-in que todo sender de events satisfaz.
type Sender interface {
	Set(key, value string) error
	Get(key string) (string, bool)
	Send(ev *event.Event) error
	Close() error
}
