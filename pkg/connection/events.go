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
	"sync"
	"time"
)

// EventType is a notification delivered to the caller of Connect
type EventType int

const (
	// EventConnected the interactive client is connected
	EventConnected EventType = iota
	// EventWorkspaceStopped the workspace was stopped after the session ended
	EventWorkspaceStopped
	// EventDisconnected the teardown chain finished
	EventDisconnected
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "Connected"
	case EventWorkspaceStopped:
		return "WorkspaceStopped"
	case EventDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// Event is delivered in order through Session.Events
type Event struct {
	Type         EventType
	ConnectionID string
	Workspace    Ref
	Time         time.Time
}

const eventTypes = 3

// events delivers each event type at most once and never blocks the sender
type events struct {
	id        string
	workspace Ref
	ch        chan Event

	mu     sync.Mutex
	fired  [eventTypes]bool
	closed bool
}

func newEvents(id string, workspace Ref) *events {
	return &events{
		id:        id,
		workspace: workspace,
		ch:        make(chan Event, eventTypes),
	}
}

func (e *events) emit(t EventType) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.fired[t] {
		return false
	}
	e.fired[t] = true
	e.ch <- Event{Type: t, ConnectionID: e.id, Workspace: e.workspace, Time: time.Now()}
	return true
}

func (e *events) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.ch)
}
