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
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okteto/devworkspace-gateway/pkg/config"
	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/devworkspaces"
	"github.com/okteto/devworkspace-gateway/pkg/k8s/pods"
	"github.com/okteto/devworkspace-gateway/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apiv1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func fakeList(items ...devworkspaces.DevWorkspace) listFn {
	return func(context.Context, string) ([]devworkspaces.DevWorkspace, error) {
		return items, nil
	}
}

func TestExecuteList(t *testing.T) {
	list := fakeList(
		devworkspaces.DevWorkspace{Name: "web", Phase: devworkspaces.PhaseStopped},
		devworkspaces.DevWorkspace{Name: "api", Phase: devworkspaces.PhaseRunning, Started: true, MainURL: "https://api.example.com"},
		devworkspaces.DevWorkspace{Name: "broken", Phase: devworkspaces.PhaseRunning, Started: true},
	)

	var mu sync.Mutex
	var queried []string
	status := func(_ context.Context, _, name string) (*remote.ProjectStatus, error) {
		mu.Lock()
		queried = append(queried, name)
		mu.Unlock()
		if name == "broken" {
			return nil, errors.New("unable to upgrade connection")
		}
		return &remote.ProjectStatus{Projects: []remote.Project{{Name: "api"}, {Name: "lib"}}}, nil
	}

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, executeList(context.Background(), "team-a", "", list, status, &out))
		expected := "Name    Phase    Started  Projects  URL\n" +
			"api     Running  true     2         https://api.example.com\n" +
			"broken  Running  true     -         -\n" +
			"web     Stopped  false    -         -\n"
		assert.Equal(t, expected, out.String())
		assert.ElementsMatch(t, []string{"api", "broken"}, queried)
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, executeList(context.Background(), "team-a", "yaml", list, status, &out))
		assert.Contains(t, out.String(), "- name: api\n  phase: Running\n  started: true\n  projects: 2\n")
	})

	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, executeList(context.Background(), "team-a", "", fakeList(), status, &out))
		assert.Equal(t, "There are no devworkspaces in namespace 'team-a'\n", out.String())
	})
}

func TestExecuteListError(t *testing.T) {
	list := func(context.Context, string) ([]devworkspaces.DevWorkspace, error) {
		return nil, &oktetoErrors.RemoteAPIError{Op: "list devworkspaces", Err: errors.New("forbidden")}
	}
	err := executeList(context.Background(), "team-a", "", list, nil, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestValidateOutput(t *testing.T) {
	assert.NoError(t, validateOutput(""))
	assert.NoError(t, validateOutput("json"))
	assert.NoError(t, validateOutput("yaml"))
	assert.Error(t, validateOutput("table"))
}

type fakeLifecycle struct {
	started, stopped int
	reached          bool
	waited           devworkspaces.Phase
}

func (f *fakeLifecycle) Start(context.Context, string, string) error {
	f.started++
	return nil
}

func (f *fakeLifecycle) Stop(context.Context, string, string) error {
	f.stopped++
	return nil
}

func (f *fakeLifecycle) WaitPhase(_ context.Context, _, _ string, phase devworkspaces.Phase, _ time.Duration) bool {
	f.waited = phase
	return f.reached
}

func TestExecuteStart(t *testing.T) {
	ws := &fakeLifecycle{reached: true}
	require.NoError(t, executeStart(context.Background(), ws, "ns", "api", false, time.Minute))
	assert.Equal(t, 1, ws.started)
	assert.Equal(t, devworkspaces.Phase(""), ws.waited)

	require.NoError(t, executeStart(context.Background(), ws, "ns", "api", true, time.Minute))
	assert.Equal(t, devworkspaces.PhaseRunning, ws.waited)

	ws.reached = false
	err := executeStart(context.Background(), ws, "ns", "api", true, time.Minute)
	var timeoutErr *oktetoErrors.WorkloadTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "devworkspace 'api' is not running after 60 seconds", err.Error())
}

func TestExecuteStop(t *testing.T) {
	ws := &fakeLifecycle{reached: true}
	require.NoError(t, executeStop(context.Background(), ws, "ns", "api", true, time.Minute))
	assert.Equal(t, 1, ws.stopped)
	assert.Equal(t, devworkspaces.PhaseStopped, ws.waited)
}

type fakeExecutor struct {
	out string
}

func (f *fakeExecutor) Exec(context.Context, *apiv1.Pod, string, []string) (string, error) {
	return f.out, nil
}

func TestBackendsStatus(t *testing.T) {
	pod := &apiv1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "api-123",
			Namespace: "ns",
			Labels:    map[string]string{"controller.devfile.io/devworkspace_name": "api"},
		},
		Spec: apiv1.PodSpec{
			Containers: []apiv1.Container{
				{Name: "ide", Ports: []apiv1.ContainerPort{{Name: "idea-server", ContainerPort: 5990}}},
			},
		},
	}
	b := &backends{
		pods:     pods.NewLocator(fake.NewSimpleClientset(pod)),
		executor: &fakeExecutor{out: `{"appVersion":"IU-233","joinLink":"tcp://x","projects":[{"projectName":"api","projectPath":"/projects/api"}]}`},
		cfg:      config.Default(),
	}

	s, err := b.status(context.Background(), "ns", "api")
	require.NoError(t, err)
	assert.Equal(t, "IU-233", s.AppVersion)

	var out bytes.Buffer
	require.NoError(t, executeStatus(context.Background(), "ns", "api", "yaml", b.status, &out))
	assert.Contains(t, out.String(), "joinLink: tcp://x\n")
	assert.Contains(t, out.String(), "- name: api\n      path: /projects/api\n")

	_, err = b.status(context.Background(), "ns", "missing")
	assert.ErrorIs(t, err, oktetoErrors.ErrNotFound)
}
