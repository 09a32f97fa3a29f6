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

package utils

import (
	"fmt"

	"github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/spf13/cobra"
)

// NoArgsAccepted validates that the number of arguments given by the user is 0
func NoArgsAccepted() cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return errors.UserError{
				E:    fmt.Errorf("arguments are not supported for command %q", cmd.CommandPath()),
				Hint: fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath()),
			}
		}
		return nil
	}
}

// ExactArgsAccepted returns an error if there are not exactly n args
func ExactArgsAccepted(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.UserError{
				E:    fmt.Errorf("%q accepts %d arg(s), but received %d", cmd.CommandPath(), n, len(args)),
				Hint: fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath()),
			}
		}
		return nil
	}
}
