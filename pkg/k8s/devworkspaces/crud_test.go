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
	"errors"
	"sync/atomic"
	"testing"
	"time"

	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/poll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	k8sErrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	k8sTesting "k8s.io/client-go/testing"
)

func newDevWorkspace(ns, name string, started bool, phase Phase) *unstructured.Unstructured {
	u := &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "workspace.devfile.io/v1alpha2",
			"kind":       "DevWorkspace",
			"metadata": map[string]interface{}{
				"name":      name,
				"namespace": ns,
				"uid":       "uid-" + name,
			},
			"spec": map[string]interface{}{
				"started": started,
			},
		},
	}
	if phase != "" {
		u.Object["status"] = map[string]interface{}{
			"phase":   string(phase),
			"mainUrl": "https://" + name + ".example.com",
		}
	}
	return u
}

func newFakeClient(objects ...runtime.Object) *dynamicfake.FakeDynamicClient {
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{GVR: "DevWorkspaceList"},
		objects...,
	)
}

func TestGet(t *testing.T) {
	dc := newFakeClient(newDevWorkspace("ns", "my-ws", true, PhaseRunning))
	c := NewClient(dc)

	dw, err := c.Get(context.Background(), "ns", "my-ws")
	require.NoError(t, err)
	assert.Equal(t, &DevWorkspace{
		Namespace: "ns",
		Name:      "my-ws",
		UID:       "uid-my-ws",
		Started:   true,
		Phase:     PhaseRunning,
		MainURL:   "https://my-ws.example.com",
	}, dw)

	_, err = c.Get(context.Background(), "ns", "missing")
	var notFound *oktetoErrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.True(t, oktetoErrors.IsNotFound(err))
}

func TestGetRemoteAPIError(t *testing.T) {
	dc := newFakeClient()
	dc.PrependReactor("get", "devworkspaces", func(k8sTesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})

	_, err := NewClient(dc).Get(context.Background(), "ns", "my-ws")
	var apiErr *oktetoErrors.RemoteAPIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestList(t *testing.T) {
	dc := newFakeClient(
		newDevWorkspace("ns", "a", true, PhaseRunning),
		newDevWorkspace("ns", "b", false, PhaseStopped),
		newDevWorkspace("other", "c", false, ""),
	)

	result, err := NewClient(dc).List(context.Background(), "ns")
	require.NoError(t, err)
	require.Len(t, result, 2)

	names := []string{result[0].Name, result[1].Name}
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func countPatches(dc *dynamicfake.FakeDynamicClient) *int32 {
	var patches int32
	dc.PrependReactor("patch", "devworkspaces", func(k8sTesting.Action) (bool, runtime.Object, error) {
		atomic.AddInt32(&patches, 1)
		return false, nil, nil
	})
	return &patches
}

func TestStart(t *testing.T) {
	var tests = []struct {
		name    string
		started bool
		patches int32
	}{
		{name: "stopped", started: false, patches: 1},
		{name: "already-started", started: true, patches: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := newFakeClient(newDevWorkspace("ns", "my-ws", tt.started, PhaseStopped))
			patches := countPatches(dc)
			c := NewClient(dc)

			require.NoError(t, c.Start(context.Background(), "ns", "my-ws"))
			assert.Equal(t, tt.patches, atomic.LoadInt32(patches))

			dw, err := c.Get(context.Background(), "ns", "my-ws")
			require.NoError(t, err)
			assert.True(t, dw.Started)
		})
	}
}

func TestStop(t *testing.T) {
	dc := newFakeClient(newDevWorkspace("ns", "my-ws", true, PhaseRunning))
	c := NewClient(dc)

	require.NoError(t, c.Stop(context.Background(), "ns", "my-ws"))
	dw, err := c.Get(context.Background(), "ns", "my-ws")
	require.NoError(t, err)
	assert.False(t, dw.Started)
}

func TestStopRetriesConflicts(t *testing.T) {
	dc := newFakeClient(newDevWorkspace("ns", "my-ws", true, PhaseRunning))
	var calls int32
	dc.PrependReactor("patch", "devworkspaces", func(k8sTesting.Action) (bool, runtime.Object, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return true, nil, k8sErrors.NewConflict(GVR.GroupResource(), "my-ws", errors.New("modified"))
		}
		return false, nil, nil
	})

	require.NoError(t, NewClient(dc).Stop(context.Background(), "ns", "my-ws"))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestStopFailure(t *testing.T) {
	dc := newFakeClient(newDevWorkspace("ns", "my-ws", true, PhaseRunning))
	dc.PrependReactor("patch", "devworkspaces", func(k8sTesting.Action) (bool, runtime.Object, error) {
		return true, nil, k8sErrors.NewForbidden(GVR.GroupResource(), "my-ws", errors.New("denied"))
	})

	err := NewClient(dc).Stop(context.Background(), "ns", "my-ws")
	var apiErr *oktetoErrors.RemoteAPIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestWaitPhase(t *testing.T) {
	var tests = []struct {
		name     string
		phases   []Phase
		failures int32
		timeout  time.Duration
		expected bool
	}{
		{
			name:     "already-running",
			phases:   []Phase{PhaseRunning},
			timeout:  time.Second,
			expected: true,
		},
		{
			name:     "running-after-two-polls",
			phases:   []Phase{PhaseStarting, PhaseStarting, PhaseRunning},
			timeout:  2 * time.Second,
			expected: true,
		},
		{
			name:     "failed-reads-then-running",
			phases:   []Phase{PhaseRunning},
			failures: 3,
			timeout:  2 * time.Second,
			expected: true,
		},
		{
			name:     "never-running",
			phases:   []Phase{PhaseFailed},
			timeout:  350 * time.Millisecond,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := newFakeClient()
			var gets int32
			dc.PrependReactor("get", "devworkspaces", func(k8sTesting.Action) (bool, runtime.Object, error) {
				n := atomic.AddInt32(&gets, 1)
				if n <= tt.failures {
					return true, nil, errors.New("i/o timeout")
				}
				i := int(n - tt.failures - 1)
				if i >= len(tt.phases) {
					i = len(tt.phases) - 1
				}
				return true, newDevWorkspace("ns", "my-ws", true, tt.phases[i]), nil
			})

			c := NewClient(dc)
			c.Interval = poll.MinInterval
			assert.Equal(t, tt.expected, c.WaitPhase(context.Background(), "ns", "my-ws", PhaseRunning, tt.timeout))
		})
	}
}

