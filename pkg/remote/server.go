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

package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/okteto/devworkspace-gateway/pkg/constants"
	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/exec"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"github.com/okteto/devworkspace-gateway/pkg/poll"
	apiv1 "k8s.io/api/core/v1"
)

// Options configures how the backend is queried
type Options struct {
	StatusCommand      string
	Interval           time.Duration
	ReadyTimeout       time.Duration
	TerminationTimeout time.Duration
}

// DefaultOptions returns the options of a backend started by the devworkspace operator
func DefaultOptions() Options {
	return Options{
		StatusCommand:      constants.BackendStatusCommand,
		Interval:           constants.DefaultStatusInterval,
		ReadyTimeout:       constants.DefaultReadyTimeout,
		TerminationTimeout: constants.DefaultTerminationTimeout,
	}
}

// Server is the remote backend running in a workspace container
type Server struct {
	Pod       *apiv1.Pod
	Container string

	executor exec.Executor
	opts     Options
}

// NewServer returns the backend running in container. Zero options take their default value.
func NewServer(executor exec.Executor, pod *apiv1.Pod, container string, opts Options) *Server {
	defaults := DefaultOptions()
	if opts.StatusCommand == "" {
		opts.StatusCommand = defaults.StatusCommand
	}
	if opts.Interval == 0 {
		opts.Interval = defaults.Interval
	}
	if opts.ReadyTimeout == 0 {
		opts.ReadyTimeout = defaults.ReadyTimeout
	}
	if opts.TerminationTimeout == 0 {
		opts.TerminationTimeout = defaults.TerminationTimeout
	}
	return &Server{
		Pod:       pod,
		Container: container,
		executor:  executor,
		opts:      opts,
	}
}

// Status queries the backend once. Each call returns a new snapshot.
func (s *Server) Status(ctx context.Context) (*ProjectStatus, error) {
	out, err := s.executor.Exec(ctx, s.Pod, s.Container, []string{"/bin/sh", "-c", s.opts.StatusCommand})
	if err != nil {
		return nil, s.queryError(err)
	}

	status, err := parseStatus(out)
	if err != nil {
		return nil, s.queryError(err)
	}
	return status, nil
}

func (s *Server) queryError(err error) error {
	return &oktetoErrors.QueryError{Pod: s.Pod.Name, Container: s.Container, Err: err}
}

// parseStatus decodes the json document printed by the status command, skipping any banner before it
func parseStatus(out string) (*ProjectStatus, error) {
	i := strings.Index(out, "{")
	if i < 0 {
		if strings.TrimSpace(out) == "" {
			return nil, fmt.Errorf("the status command printed nothing")
		}
		return nil, fmt.Errorf("the status command didn't print a json document")
	}

	status := &ProjectStatus{}
	if err := json.NewDecoder(strings.NewReader(out[i:])).Decode(status); err != nil {
		return nil, fmt.Errorf("failed to parse the backend status: %w", err)
	}
	return status, nil
}

// AwaitState polls the backend until it is ready (ready=true) or drained (ready=false).
// Failed queries are logged and retried. It returns whether the state was observed before timeout.
func (s *Server) AwaitState(ctx context.Context, ready bool, timeout time.Duration) bool {
	return poll.Until(ctx, s.opts.Interval, timeout, func(ctx context.Context) (bool, error) {
		status, err := s.Status(ctx)
		if err != nil {
			return false, err
		}
		if ready {
			return status.IsReady(), nil
		}
		return status.IsDrained(), nil
	})
}

// WaitReady waits until the backend reports at least one project
func (s *Server) WaitReady(ctx context.Context) error {
	log.Infof("waiting for the projects of %s/%s to be ready", s.Pod.Name, s.Container)
	if !s.AwaitState(ctx, true, s.opts.ReadyTimeout) {
		return &oktetoErrors.BackendTimeoutError{Timeout: s.opts.ReadyTimeout}
	}
	return nil
}

// WaitTerminated waits until the backend reports no open projects
func (s *Server) WaitTerminated(ctx context.Context) bool {
	log.Infof("waiting for the projects of %s/%s to be closed", s.Pod.Name, s.Container)
	return s.AwaitState(ctx, false, s.opts.TerminationTimeout)
}
