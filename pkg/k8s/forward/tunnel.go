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

package forward

import (
	"sync"
)

// Tunnel is a local port forwarded to a pod. Closing it releases the local listener.
type Tunnel struct {
	localPort int
	release   func()

	closeOnce sync.Once
	doneOnce  sync.Once
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// NewTunnel returns an open tunnel bound to localPort. release is called once, on the first Close.
func NewTunnel(localPort int, release func()) *Tunnel {
	return &Tunnel{
		localPort: localPort,
		release:   release,
		done:      make(chan struct{}),
	}
}

// LocalPort returns the local port the tunnel listens on
func (t *Tunnel) LocalPort() int {
	return t.localPort
}

// Close releases the forward. It is safe to call it multiple times or after the forward died.
func (t *Tunnel) Close() {
	t.closeOnce.Do(func() {
		if t.release != nil {
			t.release()
		}
		t.finish(nil)
	})
}

// Done is closed when the tunnel is closed or the forward ends on its own
func (t *Tunnel) Done() <-chan struct{} {
	return t.done
}

// Closed returns true once the tunnel doesn't forward traffic anymore
func (t *Tunnel) Closed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Err returns the error that ended the forward, if any
func (t *Tunnel) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Tunnel) finish(err error) {
	t.doneOnce.Do(func() {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		close(t.done)
	})
}
