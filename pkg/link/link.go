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

package link

import (
	"context"
	"net/url"
	"sync"

	"github.com/okteto/devworkspace-gateway/pkg/lifetime"
)

// Handle is a live session of the interactive client
type Handle interface {
	// Lifetime terminates when the client session ends
	Lifetime() *lifetime.Lifetime

	// Terminate ends the session
	Terminate()
}

// Linker links the interactive client to a remote backend
type Linker interface {
	// Link opens a session on joinLink. onConnected is called once when the session is live.
	Link(ctx context.Context, joinLink *url.URL, onConnected func()) (Handle, error)
}

type handle struct {
	lifetime *lifetime.Lifetime
	stop     func()
	once     sync.Once
}

func newHandle(stop func()) *handle {
	return &handle{
		lifetime: lifetime.New(),
		stop:     stop,
	}
}

func (h *handle) Lifetime() *lifetime.Lifetime {
	return h.lifetime
}

func (h *handle) Terminate() {
	h.once.Do(func() {
		if h.stop != nil {
			h.stop()
		}
	})
	h.lifetime.Terminate()
}
