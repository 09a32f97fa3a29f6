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

	"github.com/okteto/devworkspace-gateway/cmd/utils"
	"github.com/okteto/devworkspace-gateway/pkg/config"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/devworkspaces"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/exec"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/pods"
	"github.com/okteto/devworkspace-gateway/pkg/remote"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	apiv1 "k8s.io/api/core/v1"
)

// Workspace has all the devworkspace subcommands
func Workspace(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Short:   "Manage devworkspaces",
		Aliases: []string{"ws"},
	}
	cmd.AddCommand(List(ctx))
	cmd.AddCommand(Start(ctx))
	cmd.AddCommand(Stop(ctx))
	cmd.AddCommand(Status(ctx))
	return cmd
}

// command holds the clients shared by the subcommands
type command struct {
	cfg        *config.Config
	namespace  string
	workspaces *devworkspaces.Client
	backends   *backends
}

func newCommand(flags *utils.ClusterFlags) (*command, error) {
	cfg, err := utils.LoadConfig(afero.NewOsFs(), flags)
	if err != nil {
		return nil, err
	}
	c, err := utils.GetClients(cfg)
	if err != nil {
		return nil, err
	}

	ws := devworkspaces.NewClient(c.Dynamic)
	ws.Interval = cfg.Intervals.Phase
	return &command{
		cfg:        cfg,
		namespace:  c.Namespace,
		workspaces: ws,
		backends: &backends{
			pods:     pods.NewLocator(c.Kubernetes),
			executor: exec.NewSPDYExecutor(c.Kubernetes, c.Config),
			cfg:      cfg,
		},
	}, nil
}

type podFinder interface {
	FindFirst(ctx context.Context, ns, selector string) (*apiv1.Pod, error)
}

// backends queries the remote backend of running workspaces
type backends struct {
	pods     podFinder
	executor exec.Executor
	cfg      *config.Config
}

func (b *backends) status(ctx context.Context, ns, name string) (*remote.ProjectStatus, error) {
	pod, err := b.pods.FindFirst(ctx, ns, pods.SelectorForWorkspace(b.cfg.Backend.SelectorLabel, name))
	if err != nil {
		return nil, err
	}
	container, err := pods.FindContainer(pod, b.cfg.Backend.PortName)
	if err != nil {
		return nil, err
	}
	return remote.NewServer(b.executor, pod, container.Name, utils.ServerOptions(b.cfg)).Status(ctx)
}
