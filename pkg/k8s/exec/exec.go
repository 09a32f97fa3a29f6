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
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okteto/devworkspace-gateway/pkg/log"
	apiv1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"
)

// Executor runs a command in a container and returns its stdout
type Executor interface {
	Exec(ctx context.Context, pod *apiv1.Pod, container string, command []string) (string, error)
}

// SPDYExecutor runs commands through the pods/exec subresource
type SPDYExecutor struct {
	c      kubernetes.Interface
	config *rest.Config
}

// NewSPDYExecutor returns an Executor using the kubernetes API server
func NewSPDYExecutor(c kubernetes.Interface, config *rest.Config) *SPDYExecutor {
	return &SPDYExecutor{c: c, config: config}
}

// Exec runs command without a tty. A non-zero exit code is returned as an error including stderr.
func (e *SPDYExecutor) Exec(ctx context.Context, pod *apiv1.Pod, container string, command []string) (string, error) {
	req := e.c.CoreV1().RESTClient().Post().
		Namespace(pod.Namespace).
		Resource("pods").
		Name(pod.Name).
		SubResource("exec").
		VersionedParams(&apiv1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	exec, err := remotecommand.NewSPDYExecutor(e.config, http.MethodPost, req.URL())
	if err != nil {
		return "", fmt.Errorf("failed to establish the remote executor: %w", err)
	}

	var stdout, stderr bytes.Buffer
	err = exec.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		var exitErr utilexec.CodeExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), fmt.Errorf("command exited with code %d: %s", exitErr.Code, strings.TrimSpace(stderr.String()))
		}
		log.Debugf("exec stream on %s/%s failed: %s", pod.Name, container, err)
		return stdout.String(), err
	}

	if stderr.Len() > 0 {
		log.Debugf("stderr of %s/%s: %s", pod.Name, container, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
