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
	"context"
)

// registerTeardown attaches the teardown chain to the client link termination.
// Every step runs even if the previous ones failed.
func (c *Connection) registerTeardown(a *attempt) {
	ref := c.ctx.Workspace
	l := a.handle.Lifetime()

	l.OnTermination("close tunnel", func() error {
		if !c.ctx.guard.transition(Linked, Disconnecting) && !c.ctx.guard.transition(Connecting, Disconnecting) {
			a.logger.Warn("teardown started from an unexpected state", "state", c.ctx.State().String())
		}
		a.logger.Info("client link terminated, closing the tunnel")
		a.tunnel.Close()
		return nil
	})

	l.OnTermination("stop workspace", func() error {
		ctx := context.Background()
		if !a.server.WaitTerminated(ctx) {
			a.logger.Info("projects are still open, the workspace is left running")
			return nil
		}
		if err := c.deps.Workspaces.Stop(ctx, ref.Namespace, ref.Name); err != nil {
			return err
		}
		a.logger.Info("workspace stopped")
		a.events.emit(EventWorkspaceStopped)
		return nil
	})

	l.OnTermination("release connection", func() error {
		if !c.ctx.guard.transition(Disconnecting, Idle) {
			a.logger.Warn("connection released from an unexpected state", "state", c.ctx.State().String())
		}
		return nil
	})

	l.OnTermination("notify disconnected", func() error {
		a.events.emit(EventDisconnected)
		a.events.close()
		a.logger.Info("disconnected")
		return nil
	})
}
