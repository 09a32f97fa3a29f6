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
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/okteto/devworkspace-gateway/pkg/constants"
	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/devworkspaces"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/exec"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/forward"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/pods"
	"github.com/okteto/devworkspace-gateway/pkg/link"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"github.com/okteto/devworkspace-gateway/pkg/remote"
	apiv1 "k8s.io/api/core/v1"
)

// Workspaces controls the lifecycle of devworkspaces
type Workspaces interface {
	Start(ctx context.Context, ns, name string) error
	Stop(ctx context.Context, ns, name string) error
	WaitPhase(ctx context.Context, ns, name string, phase devworkspaces.Phase, timeout time.Duration) bool
}

// Pods finds the pods of a workspace
type Pods interface {
	FindFirst(ctx context.Context, ns, selector string) (*apiv1.Pod, error)
}

// Deps are the collaborators of a connection
type Deps struct {
	Workspaces Workspaces
	Pods       Pods
	Executor   exec.Executor
	Forwarder  forward.Forwarder
	Linker     link.Linker
}

// Options bounds the waits of a connection and locates the backend
type Options struct {
	RunningTimeout     time.Duration
	ReadyTimeout       time.Duration
	TerminationTimeout time.Duration
	StatusInterval     time.Duration
	StatusCommand      string
	SelectorLabel      string
	PortName           string
	RemotePort         int
	LocalPort          int
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		RunningTimeout:     constants.DefaultRunningTimeout,
		ReadyTimeout:       constants.DefaultReadyTimeout,
		TerminationTimeout: constants.DefaultTerminationTimeout,
		StatusInterval:     constants.DefaultStatusInterval,
		StatusCommand:      constants.BackendStatusCommand,
		SelectorLabel:      constants.DevWorkspaceNameLabel,
		PortName:           constants.BackendPortName,
		RemotePort:         constants.BackendPort,
		LocalPort:          constants.BackendPort,
	}
}

// Connection connects the interactive client to the backend of a workspace
type Connection struct {
	ctx  *Context
	deps Deps
	opts Options
}

// New returns a Connection for the workspace of c
func New(c *Context, deps Deps, opts Options) *Connection {
	return &Connection{ctx: c, deps: deps, opts: opts}
}

// Session is a linked connection
type Session struct {
	ID        string
	Workspace Ref
	Pod       *apiv1.Pod
	Container string
	Handle    link.Handle
	Tunnel    *forward.Tunnel
	Status    *remote.ProjectStatus

	events *events
}

// Events delivers Connected, WorkspaceStopped and Disconnected in that order.
// The channel is closed after Disconnected.
func (s *Session) Events() <-chan Event {
	return s.events.ch
}

// Disconnect ends the client session and runs the teardown chain
func (s *Session) Disconnect() {
	s.Handle.Terminate()
}

// Done is closed once the teardown chain finished
func (s *Session) Done() <-chan struct{} {
	return s.Handle.Lifetime().Done()
}

// attempt holds what a single Connect call created
type attempt struct {
	id     string
	logger *slog.Logger
	events *events
	server *remote.Server
	handle link.Handle
	tunnel *forward.Tunnel
	hooked bool
}

// Connect starts the workspace, waits for its backend, links the interactive client and opens the tunnel.
// It fails with AlreadyConnectedError if another attempt is connecting or linked.
// On failure every resource created by the attempt is released and the context goes back to Idle.
func (c *Connection) Connect(ctx context.Context) (*Session, error) {
	ref := c.ctx.Workspace
	if !c.ctx.guard.transition(Idle, Connecting) {
		return nil, &oktetoErrors.AlreadyConnectedError{Workspace: ref.String()}
	}

	id := uuid.NewString()
	a := &attempt{
		id:     id,
		logger: log.Slog().With("connection", id, "workspace", ref.String()),
		events: newEvents(id, ref),
	}

	s, err := c.connect(ctx, a)
	if err != nil {
		a.logger.Info("connection attempt failed", "error", err.Error())
		c.abort(a)
		return nil, err
	}
	return s, nil
}

func (c *Connection) connect(ctx context.Context, a *attempt) (*Session, error) {
	ref := c.ctx.Workspace

	if err := c.deps.Workspaces.Start(ctx, ref.Namespace, ref.Name); err != nil {
		return nil, err
	}
	if !c.deps.Workspaces.WaitPhase(ctx, ref.Namespace, ref.Name, devworkspaces.PhaseRunning, c.opts.RunningTimeout) {
		return nil, &oktetoErrors.WorkloadTimeoutError{
			Workspace: ref.Name,
			Phase:     string(devworkspaces.PhaseRunning),
			Timeout:   c.opts.RunningTimeout,
		}
	}
	a.logger.Info("workspace is running")

	pod, err := c.deps.Pods.FindFirst(ctx, ref.Namespace, pods.SelectorForWorkspace(c.opts.SelectorLabel, ref.Name))
	if err != nil {
		return nil, err
	}
	container, err := pods.FindContainer(pod, c.opts.PortName)
	if err != nil {
		return nil, err
	}
	a.logger.Info("backend located", "pod", pod.Name, "container", container.Name)

	a.server = remote.NewServer(c.deps.Executor, pod, container.Name, remote.Options{
		StatusCommand:      c.opts.StatusCommand,
		Interval:           c.opts.StatusInterval,
		ReadyTimeout:       c.opts.ReadyTimeout,
		TerminationTimeout: c.opts.TerminationTimeout,
	})
	if err := a.server.WaitReady(ctx); err != nil {
		return nil, err
	}

	status, err := a.server.Status(ctx)
	if err != nil {
		return nil, err
	}
	joinLink, err := parseJoinLink(status.JoinLink)
	if err != nil {
		return nil, &oktetoErrors.QueryError{Pod: pod.Name, Container: container.Name, Err: err}
	}
	a.logger.Info("backend is ready", "version", status.AppVersion, "projects", len(status.Projects))

	a.handle, err = c.deps.Linker.Link(ctx, joinLink, func() {
		a.events.emit(EventConnected)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to link the interactive client: %w", err)
	}

	a.tunnel, err = c.deps.Forwarder.Forward(ctx, pod, c.opts.LocalPort, c.remotePort(container))
	if err != nil {
		return nil, err
	}

	c.registerTeardown(a)
	a.hooked = true

	if !c.ctx.guard.transition(Connecting, Linked) {
		return nil, oktetoErrors.ErrLinkTerminated
	}
	a.logger.Info("connected", "localPort", a.tunnel.LocalPort())

	return &Session{
		ID:        a.id,
		Workspace: ref,
		Pod:       pod,
		Container: container.Name,
		Handle:    a.handle,
		Tunnel:    a.tunnel,
		Status:    status,
		events:    a.events,
	}, nil
}

func (c *Connection) remotePort(container *apiv1.Container) int {
	if c.opts.RemotePort != 0 {
		return c.opts.RemotePort
	}
	return int(pods.ContainerPort(container, c.opts.PortName))
}

// abort releases what a failed attempt created
func (c *Connection) abort(a *attempt) {
	if a.hooked {
		// the teardown chain owns the tunnel, the state and the events
		a.handle.Terminate()
		return
	}

	if a.handle != nil {
		a.handle.Terminate()
	}
	if a.tunnel != nil {
		a.tunnel.Close()
	}
	if !c.ctx.guard.transition(Connecting, Idle) {
		a.logger.Warn("unexpected state after a failed attempt", "state", c.ctx.State().String())
	}
	a.events.close()
}

func parseJoinLink(s string) (*url.URL, error) {
	if s == "" {
		return nil, fmt.Errorf("the backend didn't report a join link")
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid join link: %w", err)
	}
	return u, nil
}
