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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/okteto/devworkspace-gateway/cmd"
	"github.com/okteto/devworkspace-gateway/cmd/connect"
	"github.com/okteto/devworkspace-gateway/cmd/workspace"
	"github.com/okteto/devworkspace-gateway/pkg/config"
	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/runtime"
)

func init() {
	// override client-go error handlers to downgrade the "logging before flag.Parse" error
	errorHandlers := []runtime.ErrorHandler{
		func(_ context.Context, e error, msg string, keysAndValues ...interface{}) {
			log.Debugf("unhandled error: %s %s", msg, e)
		},
	}

	runtime.ErrorHandlers = errorHandlers
}

func main() {
	ctx := context.Background()
	var logLevel string

	root := &cobra.Command{
		Use:           fmt.Sprintf("%s COMMAND [ARG...]", config.GetBinaryName()),
		Short:         "Connect interactive clients to devworkspaces",
		SilenceErrors: true,
		PersistentPreRunE: func(ccmd *cobra.Command, args []string) error {
			ccmd.SilenceUsage = true
			home := config.GetGatewayHome()
			if err := os.MkdirAll(home, 0700); err != nil {
				return fmt.Errorf("failed to create %s: %w", home, err)
			}
			return log.Init(logLevel, home, config.GetBinaryName())
		},
	}

	root.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "warn", "amount of information outputted (debug, info, warn, error)")
	root.AddCommand(cmd.Version())
	root.AddCommand(connect.Connect(ctx))
	root.AddCommand(workspace.Workspace(ctx))

	if err := root.Execute(); err != nil {
		log.Fail("%s", err.Error())
		var uErr oktetoErrors.UserError
		if errors.As(err, &uErr) && uErr.Hint != "" {
			log.Hint("    %s", uErr.Hint)
		}
		os.Exit(1)
	}
}
