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

package devworkspaces

import (
	"context"
	"fmt"
	"time"

	"github.com/okteto/devworkspace-gateway/pkg/constants"
	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"github.com/okteto/devworkspace-gateway/pkg/poll"
	k8sErrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/util/retry"
)

// Client starts, stops and watches devworkspaces
type Client struct {
	dynClient dynamic.Interface

	// Interval is how often WaitPhase reads the workspace
	Interval time.Duration
}

// NewClient returns a devworkspace client polling every DefaultPhaseInterval
func NewClient(dynClient dynamic.Interface) *Client {
	return &Client{
		dynClient: dynClient,
		Interval:  constants.DefaultPhaseInterval,
	}
}

// Get returns the devworkspace
func (c *Client) Get(ctx context.Context, ns, name string) (*DevWorkspace, error) {
	u, err := c.dynClient.Resource(GVR).Namespace(ns).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if k8sErrors.IsNotFound(err) {
			return nil, &oktetoErrors.NotFoundError{Kind: "devworkspace", Name: name, Namespace: ns}
		}
		return nil, &oktetoErrors.RemoteAPIError{Op: fmt.Sprintf("get devworkspace '%s'", name), Err: err}
	}
	return fromUnstructured(u), nil
}

// List returns the devworkspaces of a namespace
func (c *Client) List(ctx context.Context, ns string) ([]DevWorkspace, error) {
	l, err := c.dynClient.Resource(GVR).Namespace(ns).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, &oktetoErrors.RemoteAPIError{Op: fmt.Sprintf("list devworkspaces in namespace '%s'", ns), Err: err}
	}

	result := make([]DevWorkspace, 0, len(l.Items))
	for i := range l.Items {
		result = append(result, *fromUnstructured(&l.Items[i]))
	}
	return result, nil
}

// Start sets spec.started to true. It's a no-op if the workspace is already started.
func (c *Client) Start(ctx context.Context, ns, name string) error {
	dw, err := c.Get(ctx, ns, name)
	if err != nil {
		return err
	}
	if dw.Started {
		log.Debugf("devworkspace '%s' is already started", name)
		return nil
	}
	return c.setStarted(ctx, ns, name, true)
}

// Stop sets spec.started to false
func (c *Client) Stop(ctx context.Context, ns, name string) error {
	return c.setStarted(ctx, ns, name, false)
}

func (c *Client) setStarted(ctx context.Context, ns, name string, started bool) error {
	patch := []byte(fmt.Sprintf(`{"spec":{"started":%t}}`, started))

	err := retry.OnError(retry.DefaultRetry, isRetryable, func() error {
		_, err := c.dynClient.Resource(GVR).Namespace(ns).Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{})
		return err
	})
	if err != nil {
		if k8sErrors.IsNotFound(err) {
			return &oktetoErrors.NotFoundError{Kind: "devworkspace", Name: name, Namespace: ns}
		}
		return &oktetoErrors.RemoteAPIError{Op: fmt.Sprintf("set started=%t on devworkspace '%s'", started, name), Err: err}
	}

	log.Infof("devworkspace '%s' patched with started=%t", name, started)
	return nil
}

func isRetryable(err error) bool {
	return k8sErrors.IsConflict(err) || k8sErrors.IsServerTimeout(err) || k8sErrors.IsTooManyRequests(err) || oktetoErrors.IsTransient(err)
}

// WaitPhase polls the workspace until it reaches phase or timeout expires.
// Failed reads are logged and retried. It returns whether the phase was reached.
func (c *Client) WaitPhase(ctx context.Context, ns, name string, phase Phase, timeout time.Duration) bool {
	var last Phase
	return poll.Until(ctx, c.Interval, timeout, func(ctx context.Context) (bool, error) {
		dw, err := c.Get(ctx, ns, name)
		if err != nil {
			return false, err
		}

		if dw.Phase != last {
			log.Infof("devworkspace '%s' is %s", name, dw.Phase)
			last = dw.Phase
			if dw.Phase == PhaseFailed && phase != PhaseFailed {
				log.Infof("devworkspace '%s' failed: %s", name, dw.Message)
			}
		}
		return dw.Phase == phase, nil
	})
}
