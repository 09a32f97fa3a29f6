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

package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/okteto/devworkspace-gateway/pkg/config"
	"github.com/spf13/cobra"
)

// Version returns information about the binary
func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("View the version of the %s binary", config.GetBinaryName()),
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion(os.Stdout, config.VersionString)
			return nil
		},
	}
}

func printVersion(w io.Writer, version string) {
	fmt.Fprintf(w, "%s version %s %s/%s\n", config.GetBinaryName(), displayVersion(version), runtime.GOOS, runtime.GOARCH)
}

func displayVersion(version string) string {
	v, err := semver.NewVersion(version)
	if err != nil {
		return "dev"
	}
	if v.Prerelease() != "" {
		return fmt.Sprintf("%s (pre-release)", v.String())
	}
	return v.String()
}
