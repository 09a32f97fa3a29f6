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
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kubeconfig = `apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://127.0.0.1:6443
  name: local
contexts:
- context:
    cluster: local
    namespace: team-a
    user: dev
  name: local
- context:
    cluster: local
    namespace: team-b
    user: dev
  name: other
current-context: local
users:
- name: dev
  user:
    token: secret
`

func writeKubeconfig(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(kubeconfig), 0600))
	return path
}

func TestGetLocal(t *testing.T) {
	path := writeKubeconfig(t)

	var tests = []struct {
		name      string
		opts      Options
		namespace string
	}{
		{
			name:      "current-context",
			opts:      Options{Kubeconfig: path},
			namespace: "team-a",
		},
		{
			name:      "other-context",
			opts:      Options{Kubeconfig: path, Context: "other"},
			namespace: "team-b",
		},
		{
			name:      "namespace-flag",
			opts:      Options{Kubeconfig: path, Namespace: "mine"},
			namespace: "mine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Timeout = 5 * time.Second
			c, err := GetLocal(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.namespace, c.Namespace)
			assert.Equal(t, "https://127.0.0.1:6443", c.Config.Host)
			assert.Equal(t, 5*time.Second, c.Config.Timeout)
			assert.NotNil(t, c.Kubernetes)
			assert.NotNil(t, c.Dynamic)
		})
	}
}

func TestCurrentContext(t *testing.T) {
	path := writeKubeconfig(t)
	assert.Equal(t, "local", CurrentContext(Options{Kubeconfig: path}))
	assert.Equal(t, "other", CurrentContext(Options{Kubeconfig: path, Context: "other"}))
}

func TestIsCredentialError(t *testing.T) {
	assert.True(t, isCredentialError(&http.Response{StatusCode: http.StatusUnauthorized}, nil))
	assert.True(t, isCredentialError(nil, errors.New("x509: certificate signed by unknown authority")))
	assert.False(t, isCredentialError(&http.Response{StatusCode: http.StatusOK}, nil))
	assert.False(t, isCredentialError(nil, errors.New("connection refused")))
}
