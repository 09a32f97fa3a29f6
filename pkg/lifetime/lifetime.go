// Copyright 2024 The Okteto Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lifetime

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/okteto/devworkspace-gateway/pkg/log"
)

// Action is a cleanup step run when a Lifetime terminates
type Action func() error

type hook struct {
	name   string
	action Action
}

// Lifetime is an ordered list of cleanup actions attached to a single termination signal
type Lifetime struct {
	mu         sync.Mutex
	hooks      []hook
	terminated bool
	done       chan struct{}
	once       sync.Once
}

// New returns a live Lifetime
func New() *Lifetime {
	return &Lifetime{done: make(chan struct{})}
}

// OnTermination registers an action. Actions run in registration order.
// Registering on a terminated Lifetime runs the action as soon as the registered ones finished.
// It must not be called from inside an action.
func (l *Lifetime) OnTermination(name string, fn Action) {
	l.mu.Lock()
	if !l.terminated {
		l.hooks = append(l.hooks, hook{name: name, action: fn})
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	<-l.done
	if err := run(hook{name: name, action: fn}); err != nil {
		log.Infof("termination action failed: %s", err)
	}
}

// Terminate runs every registered action once. Failures are logged, never returned.
func (l *Lifetime) Terminate() {
	l.once.Do(func() {
		l.mu.Lock()
		l.terminated = true
		hooks := l.hooks
		l.hooks = nil
		l.mu.Unlock()

		var result error
		for _, h := range hooks {
			if err := run(h); err != nil {
				result = multierror.Append(result, err)
			}
		}
		if result != nil {
			log.Infof("termination finished with errors: %s", result)
		}
		close(l.done)
	})
}

// Done is closed once every action registered before Terminate has run
func (l *Lifetime) Done() <-chan struct{} {
	return l.done
}

// Terminated returns true once Terminate was called
func (l *Lifetime) Terminated() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.terminated
}

func run(h hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", h.name, r)
		}
	}()

	log.Debugf("running termination action '%s'", h.name)
	if err := h.action(); err != nil {
		return fmt.Errorf("%s: %w", h.name, err)
	}
	return nil
}
