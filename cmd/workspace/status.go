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

	"github.com/okteto/devworkspace-gateway/cmd/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type statusFlags struct {
	utils.ClusterFlags
	output string
}

// Status prints the status reported by the backend of a running devworkspace
func Status(ctx context.Context) *cobra.Command {
	flags := &statusFlags{}
	cmd := &cobra.Command{
		Use:   "status WORKSPACE",
		Short: "Show the backend status of a running devworkspace",
		Args:  utils.ExactArgsAccepted(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(flags.output); err != nil {
				return err
			}
			c, err := newCommand(&flags.ClusterFlags)
			if err != nil {
				return err
			}
			return utils.TranslateAPIError(executeStatus(ctx, c.namespace, args[0], flags.output, c.backends.status, os.Stdout))
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&flags.output, "output", "o", "yaml", "output format. One of: ['json', 'yaml']")
	return cmd
}

func executeStatus(ctx context.Context, ns, name, output string, status statusFn, w io.Writer) error {
	s, err := status(ctx, ns, name)
	if err != nil {
		return err
	}

	if output == "json" {
		b, err := json.MarshalIndent(s, "", " ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
		return nil
	}

	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(b))
	return nil
}
