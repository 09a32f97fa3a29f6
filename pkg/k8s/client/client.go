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

package client

import (
	"fmt"
	"time"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	// auth plugins for gcp, azure and oidc clusters
	_ "k8s.io/client-go/plugin/pkg/client/auth"
)

// Options selects the cluster to talk to. Empty fields fall back to the kubeconfig defaults.
type Options struct {
	Kubeconfig string
	Context    string
	Namespace  string
	Timeout    time.Duration
}

// Clients bundles the clients of a single cluster
type Clients struct {
	Kubernetes kubernetes.Interface
	Dynamic    dynamic.Interface
	Config     *rest.Config
	Namespace  string
}

// GetLocal returns the clients for the local configuration. It will detect if KUBECONFIG is defined.
func GetLocal(opts Options) (*Clients, error) {
	clientConfig := getClientConfig(opts)

	namespace, _, err := clientConfig.Namespace()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve the current namespace: %w", err)
	}
	if opts.Namespace != "" {
		namespace = opts.Namespace
	}

	config, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load your kubeconfig: %w", err)
	}
	config.Timeout = opts.Timeout
	config.WrapTransport = credentialsFn

	c, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create the kubernetes client: %w", err)
	}

	dc, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create the dynamic client: %w", err)
	}

	return &Clients{
		Kubernetes: c,
		Dynamic:    dc,
		Config:     config,
		Namespace:  namespace,
	}, nil
}

// CurrentContext returns the name of the kubeconfig context in use
func CurrentContext(opts Options) string {
	if opts.Context != "" {
		return opts.Context
	}
	c, err := getClientConfig(opts).RawConfig()
	if err != nil {
		return ""
	}
	return c.CurrentContext
}

func getClientConfig(opts Options) clientcmd.ClientConfig {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if opts.Kubeconfig != "" {
		rules.ExplicitPath = opts.Kubeconfig
	}

	overrides := &clientcmd.ConfigOverrides{}
	if opts.Context != "" {
		overrides.CurrentContext = opts.Context
	}

	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)
}
