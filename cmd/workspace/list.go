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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/juju/ansiterm"
	"github.com/okteto/devworkspace-gateway/cmd/utils"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/devworkspaces"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"github.com/okteto/devworkspace-gateway/pkg/remote"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const statusParallelism = 4

type listFlags struct {
	utils.ClusterFlags
	output string
}

type listItem struct {
	Name     string `json:"name" yaml:"name"`
	Phase    string `json:"phase" yaml:"phase"`
	Started  bool   `json:"started" yaml:"started"`
	Projects *int   `json:"projects,omitempty" yaml:"projects,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
}

type listFn func(ctx context.Context, ns string) ([]devworkspaces.DevWorkspace, error)
type statusFn func(ctx context.Context, ns, name string) (*remote.ProjectStatus, error)

// List lists the devworkspaces of a namespace
func List(ctx context.Context) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the devworkspaces of a namespace",
		Args:  utils.NoArgsAccepted(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(flags.output); err != nil {
				return err
			}
			c, err := newCommand(&flags.ClusterFlags)
			if err != nil {
				return err
			}
			return utils.TranslateAPIError(executeList(ctx, c.namespace, flags.output, c.workspaces.List, c.backends.status, os.Stdout))
		},
	}

	flags.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output format. One of: ['json', 'yaml']")
	return cmd
}

func validateOutput(output string) error {
	switch output {
	case "", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("output format '%s' is not supported, use 'json' or 'yaml'", output)
	}
}

func executeList(ctx context.Context, ns, output string, list listFn, status statusFn, w io.Writer) error {
	items, err := getListItems(ctx, ns, list, status)
	if err != nil {
		return err
	}

	switch output {
	case "json":
		b, err := json.MarshalIndent(items, "", " ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	case "yaml":
		b, err := yaml.Marshal(items)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(b))
	default:
		if len(items) == 0 {
			fmt.Fprintf(w, "There are no devworkspaces in namespace '%s'\n", ns)
			return nil
		}
		printTable(w, items)
	}
	return nil
}

// getListItems lists the workspaces and counts the open projects of the running ones in parallel
func getListItems(ctx context.Context, ns string, list listFn, status statusFn) ([]listItem, error) {
	workspaces, err := list(ctx, ns)
	if err != nil {
		return nil, err
	}
	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].Name < workspaces[j].Name })

	items := make([]listItem, len(workspaces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusParallelism)
	for i := range workspaces {
		dw := workspaces[i]
		items[i] = listItem{
			Name:    dw.Name,
			Phase:   string(dw.Phase),
			Started: dw.Started,
			URL:     dw.MainURL,
		}
		if dw.Phase != devworkspaces.PhaseRunning {
			continue
		}

		g.Go(func() error {
			s, err := status(gctx, ns, dw.Name)
			if err != nil {
				log.Infof("failed to get the backend status of '%s': %s", dw.Name, err)
				return nil
			}
			n := len(s.Projects)
			items[i].Projects = &n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func printTable(w io.Writer, items []listItem) {
	tw := ansiterm.NewTabWriter(w, 1, 1, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tPhase\tStarted\tProjects\tURL")
	for _, item := range items {
		projects := "-"
		if item.Projects != nil {
			projects = strconv.Itoa(*item.Projects)
		}
		url := item.URL
		if url == "" {
			url = "-"
		}

		fmt.Fprintf(tw, "%s\t", item.Name)
		tw.SetForeground(phaseColor(item.Phase))
		fmt.Fprintf(tw, "%s", item.Phase)
		tw.Reset()
		fmt.Fprintf(tw, "\t%t\t%s\t%s\n", item.Started, projects, url)
	}
	if err := tw.Flush(); err != nil {
		log.Infof("failed to flush the table: %s", err)
	}
}

func phaseColor(phase string) ansiterm.Color {
	switch devworkspaces.Phase(phase) {
	case devworkspaces.PhaseRunning:
		return ansiterm.Green
	case devworkspaces.PhaseFailed, devworkspaces.PhaseFailing:
		return ansiterm.Red
	case devworkspaces.PhaseStarting, devworkspaces.PhaseStopping, devworkspaces.PhaseTerminating:
		return ansiterm.Yellow
	default:
		return ansiterm.Default
	}
}
