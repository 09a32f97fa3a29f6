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

	"github.com/okteto/devworkspace-gateway/pkg/config"
	"github.com/okteto/devworkspace-gateway/pkg/connection"
	"github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/client"
	"github.com/okteto/devworkspace-gateway/pkg/remote"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// ClusterFlags selects the cluster and namespace of a command
type ClusterFlags struct {
	Kubeconfig string
	Context    string
	Namespace  string
}

// AddFlags registers the cluster flags
func (f *ClusterFlags) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&f.Namespace, "namespace", "n", "", "namespace of the devworkspace (defaults to the current namespace)")
	flags.StringVarP(&f.Context, "context", "c", "", "kubeconfig context to use (defaults to the current context)")
	flags.StringVar(&f.Kubeconfig, "kubeconfig", "", "path to the kubeconfig file")
}

// LoadConfig reads the gateway configuration and applies the flags on top of it
func LoadConfig(fs afero.Fs, f *ClusterFlags) (*config.Config, error) {
	cfg, err := config.Load(fs, config.GetConfigPath())
	if err != nil {
		return nil, errors.UserError{
			E:    err,
			Hint: fmt.Sprintf("Fix or remove '%s' and try again.", config.GetConfigPath()),
		}
	}

	if f.Kubeconfig != "" {
		cfg.Kubeconfig = f.Kubeconfig
	}
	if f.Context != "" {
		cfg.Context = f.Context
	}
	if f.Namespace != "" {
		cfg.Namespace = f.Namespace
	}
	return cfg, nil
}

// GetClients returns the clients of the configured cluster
func GetClients(cfg *config.Config) (*client.Clients, error) {
	c, err := client.GetLocal(client.Options{
		Kubeconfig: cfg.Kubeconfig,
		Context:    cfg.Context,
		Namespace:  cfg.Namespace,
		Timeout:    cfg.Timeouts.Kubernetes,
	})
	if err != nil {
		return nil, errors.UserError{
			E:    err,
			Hint: "Make sure your kubeconfig points to the cluster running your devworkspaces, or use the '--kubeconfig' and '--context' flags.",
		}
	}
	if c.Namespace == "" {
		c.Namespace = "default"
	}
	return c, nil
}

// TranslateAPIError adds a hint to the errors caused by the cluster credentials
func TranslateAPIError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.IsX509(err):
		return errors.UserError{
			E:    err,
			Hint: "The certificate of your cluster is not trusted. Check the certificate authority of your kubeconfig.",
		}
	case errors.IsForbidden(err):
		return errors.UserError{
			E:    err,
			Hint: "Your credentials were rejected. Refresh your kubeconfig credentials and try again.",
		}
	default:
		return err
	}
}

// ServerOptions returns the options to query the remote backend
func ServerOptions(cfg *config.Config) remote.Options {
	return remote.Options{
		StatusCommand:      cfg.Backend.StatusCommand,
		Interval:           cfg.Intervals.Status,
		ReadyTimeout:       cfg.Timeouts.Ready,
		TerminationTimeout: cfg.Timeouts.Termination,
	}
}

// ConnectionOptions returns the options of a connection attempt
func ConnectionOptions(cfg *config.Config) connection.Options {
	return connection.Options{
		RunningTimeout:     cfg.Timeouts.Running,
		ReadyTimeout:       cfg.Timeouts.Ready,
		TerminationTimeout: cfg.Timeouts.Termination,
		StatusInterval:     cfg.Intervals.Status,
		StatusCommand:      cfg.Backend.StatusCommand,
		SelectorLabel:      cfg.Backend.SelectorLabel,
		PortName:           cfg.Backend.PortName,
		RemotePort:         cfg.Backend.Port,
		LocalPort:          cfg.Backend.LocalPort,
	}
}
