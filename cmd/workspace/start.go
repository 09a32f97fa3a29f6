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

package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/okteto/devworkspace-gateway/cmd/utils"
	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/devworkspaces"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"github.com/spf13/cobra"
)

type lifecycleFlags struct {
	utils.ClusterFlags
	wait bool
}

// lifecycle is the subset of the devworkspace client used by start and stop
type lifecycle interface {
	Start(ctx context.Context, ns, name string) error
	Stop(ctx context.Context, ns, name string) error
	WaitPhase(ctx context.Context, ns, name string, phase devworkspaces.Phase, timeout time.Duration) bool
}

// Start starts a devworkspace
func Start(ctx context.Context) *cobra.Command {
	flags := &lifecycleFlags{}
	cmd := &cobra.Command{
		Use:   "start WORKSPACE",
		Short: "Start a devworkspace",
		Args:  utils.ExactArgsAccepted(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCommand(&flags.ClusterFlags)
			if err != nil {
				return err
			}
			err = executeStart(ctx, c.workspaces, c.namespace, args[0], flags.wait, c.cfg.Timeouts.Running)
			return utils.TranslateAPIError(err)
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&flags.wait, "wait", "w", false, "wait until the devworkspace is running")
	return cmd
}

// Stop stops a devworkspace
func Stop(ctx context.Context) *cobra.Command {
	flags := &lifecycleFlags{}
	cmd := &cobra.Command{
		Use:   "stop WORKSPACE",
		Short: "Stop a devworkspace",
		Args:  utils.ExactArgsAccepted(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCommand(&flags.ClusterFlags)
			if err != nil {
				return err
			}
			err = executeStop(ctx, c.workspaces, c.namespace, args[0], flags.wait, c.cfg.Timeouts.Running)
			return utils.TranslateAPIError(err)
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&flags.wait, "wait", "w", false, "wait until the devworkspace is stopped")
	return cmd
}

func executeStart(ctx context.Context, ws lifecycle, ns, name string, wait bool, timeout time.Duration) error {
	if err := ws.Start(ctx, ns, name); err != nil {
		return err
	}
	if !wait {
		log.Success("Devworkspace '%s' is starting", name)
		return nil
	}
	return waitFor(ctx, ws, ns, name, devworkspaces.PhaseRunning, timeout)
}

func executeStop(ctx context.Context, ws lifecycle, ns, name string, wait bool, timeout time.Duration) error {
	if err := ws.Stop(ctx, ns, name); err != nil {
		return err
	}
	if !wait {
		log.Success("Devworkspace '%s' is stopping", name)
		return nil
	}
	return waitFor(ctx, ws, ns, name, devworkspaces.PhaseStopped, timeout)
}

func waitFor(ctx context.Context, ws lifecycle, ns, name string, phase devworkspaces.Phase, timeout time.Duration) error {
	log.Spinner(fmt.Sprintf("Waiting for devworkspace '%s' to be %s...", name, phase))
	log.StartSpinner()
	defer log.StopSpinner()

	if !ws.WaitPhase(ctx, ns, name, phase, timeout) {
		return &oktetoErrors.WorkloadTimeoutError{Workspace: name, Phase: string(phase), Timeout: timeout}
	}
	log.Success("Devworkspace '%s' is %s", name, phase)
	return nil
}
