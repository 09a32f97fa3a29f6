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

package exec

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apiv1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

func TestExecUpgradeRejected(t *testing.T) {
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path + "?" + r.URL.RawQuery)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	config := &rest.Config{Host: srv.URL}
	c, err := kubernetes.NewForConfig(config)
	require.NoError(t, err)

	pod := &apiv1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "ws-1", Namespace: "test"}}
	_, err = NewSPDYExecutor(c, config).Exec(context.Background(), pod, "ide", []string{"echo", "hi"})
	assert.Error(t, err)

	got, _ := path.Load().(string)
	assert.True(t, strings.HasPrefix(got, "/api/v1/namespaces/test/pods/ws-1/exec?"), got)
	assert.Contains(t, got, "container=ide")
}
