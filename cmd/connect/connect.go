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

package connect

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okteto/devworkspace-gateway/cmd/utils"
	"github.com/okteto/devworkspace-gateway/pkg/config"
	"github.com/okteto/devworkspace-gateway/pkg/connection"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/devworkspaces"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/exec"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/forward"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/pods"
	"github.com/okteto/devworkspace-gateway/pkg/link"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Options are the flags of the connect command
type Options struct {
	utils.ClusterFlags
	Client    string
	LocalPort int
}

// Connect connects the interactive client to a devworkspace
func Connect(ctx context.Context) *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "connect WORKSPACE",
		Short: "Start a devworkspace and connect the interactive client to it",
		Args:  utils.ExactArgsAccepted(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := utils.LoadConfig(afero.NewOsFs(), &opts.ClusterFlags)
			if err != nil {
				return err
			}
			if opts.Client != "" {
				cfg.Client.Command = opts.Client
			}
			if cmd.Flags().Changed("local-port") {
				cfg.Backend.LocalPort = opts.LocalPort
			}

			c, err := utils.GetClients(cfg)
			if err != nil {
				return err
			}

			ws := devworkspaces.NewClient(c.Dynamic)
			ws.Interval = cfg.Intervals.Phase
			deps := connection.Deps{
				Workspaces: ws,
				Pods:       pods.NewLocator(c.Kubernetes),
				Executor:   exec.NewSPDYExecutor(c.Kubernetes, c.Config),
				Forwarder:  forward.NewPortForwarder(c.Config, c.Kubernetes),
				Linker:     linkerFor(cfg),
			}

			ref := connection.Ref{Namespace: c.Namespace, Name: args[0]}
			conn := connection.New(connection.NewContext(ref), deps, utils.ConnectionOptions(cfg))
			return utils.TranslateAPIError(run(ctx, conn, ref))
		},
	}

	opts.AddFlags(cmd.Flags())
	cmd.Flags().StringVar(&opts.Client, "client", "", "command launching the interactive client, the join link is appended or replaces '{joinLink}'")
	cmd.Flags().IntVar(&opts.LocalPort, "local-port", 0, "local port of the tunnel to the backend (0 picks a free port)")
	return cmd
}

func linkerFor(cfg *config.Config) link.Linker {
	if cfg.Client.Command != "" {
		return &link.ProcessLinker{Command: cfg.Client.Command}
	}
	return link.NewBrowserLinker()
}

func run(ctx context.Context, conn *connection.Connection, ref connection.Ref) error {
	log.Spinner(fmt.Sprintf("Connecting to devworkspace '%s'...", ref.Name))
	log.StartSpinner()
	session, err := conn.Connect(ctx)
	log.StopSpinner()
	if err != nil {
		return err
	}

	log.Success("Connected to devworkspace '%s'", ref.Name)
	log.Information("Backend forwarded to localhost:%d", session.Tunnel.LocalPort())
	if session.Status.AppVersion != "" {
		log.Information("Backend version %s", session.Status.AppVersion)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	return watch(session, sigs)
}

// watch reports the session events until the teardown chain finished
func watch(session *connection.Session, sigs <-chan os.Signal) error {
	events := session.Events()
	tunnelDone := session.Tunnel.Done()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Type {
			case connection.EventConnected:
				log.Information("Interactive client connected")
			case connection.EventWorkspaceStopped:
				log.Success("Devworkspace '%s' stopped", ev.Workspace.Name)
			case connection.EventDisconnected:
				log.Information("Disconnected from devworkspace '%s'", ev.Workspace.Name)
			}
		case <-tunnelDone:
			tunnelDone = nil
			if err := session.Tunnel.Err(); err != nil {
				log.Warning("The tunnel to the backend was lost: %s", err)
				go session.Disconnect()
			}
		case <-sigs:
			log.Information("Disconnecting...")
			go session.Disconnect()
		}
	}
}
