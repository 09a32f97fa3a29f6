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

package connection

import (
	"fmt"
	"sync"
)

// State is the phase of a connection attempt
type State int

const (
	// Idle no attempt is running
	Idle State = iota
	// Connecting an attempt is setting up the connection
	Connecting
	// Linked the interactive client is connected
	Linked
	// Disconnecting the teardown chain is running
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Connecting:
		return "Connecting"
	case Linked:
		return "Linked"
	case Disconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// guard serializes state transitions. Only one attempt may be Connecting or Linked at a time.
type guard struct {
	mu    sync.Mutex
	state State
}

func (g *guard) transition(from, to State) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != from {
		return false
	}
	g.state = to
	return true
}

func (g *guard) get() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
