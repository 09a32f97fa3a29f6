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

import "fmt"

// Ref identifies a devworkspace
type Ref struct {
	Namespace string
	Name      string
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s", r.Namespace, r.Name)
}

// Context is the connection state of a single workspace. It is shared by every attempt on that workspace.
type Context struct {
	Workspace Ref

	guard guard
}

// NewContext returns an idle context for the workspace
func NewContext(ref Ref) *Context {
	return &Context{Workspace: ref}
}

// Connected returns true while an attempt is connecting, linked or tearing down
func (c *Context) Connected() bool {
	return c.guard.get() != Idle
}

// State returns the current state
func (c *Context) State() State {
	return c.guard.get()
}
