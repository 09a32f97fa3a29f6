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

package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "non transient error",
			err:      assert.AnError,
			expected: false,
		},
		{
			name:     "i/o timeout",
			err:      errors.New("dial tcp 10.0.0.1:443: i/o timeout"),
			expected: true,
		},
		{
			name:     "connection refused",
			err:      errors.New("connection refused"),
			expected: true,
		},
		{
			name:     "upgrade failure",
			err:      errors.New("error dialing backend: unable to upgrade connection: pod not found"),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}

func TestFormatTimeout(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		timeout  time.Duration
	}{
		{
			name:     "whole seconds",
			timeout:  60 * time.Second,
			expected: "60 seconds",
		},
		{
			name:     "minutes",
			timeout:  5 * time.Minute,
			expected: "300 seconds",
		},
		{
			name:     "sub second",
			timeout:  60 * time.Millisecond,
			expected: "60ms",
		},
		{
			name:     "fractional seconds",
			timeout:  1500 * time.Millisecond,
			expected: "1.5s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimeout(tt.timeout))
		})
	}
}

func TestTimeoutErrors(t *testing.T) {
	backendErr := &BackendTimeoutError{Timeout: 60 * time.Second}
	assert.Equal(t, "projects are not ready after 60 seconds", backendErr.Error())
	assert.ErrorIs(t, backendErr, ErrTimeout)

	workloadErr := &WorkloadTimeoutError{Workspace: "my-ws", Phase: "Running", Timeout: 300 * time.Second}
	assert.Equal(t, "devworkspace 'my-ws' is not running after 300 seconds", workloadErr.Error())
	assert.ErrorIs(t, workloadErr, ErrTimeout)
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("locating backend: %w", &NotFoundError{Kind: "pod", Name: "my-ws", Namespace: "user-che", Reason: "devworkspace is not running"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))

	var nfErr *NotFoundError
	assert.True(t, errors.As(err, &nfErr))
	assert.Equal(t, "pod 'my-ws' not found in namespace 'user-che': devworkspace is not running", nfErr.Error())
}

func TestWrappedCauses(t *testing.T) {
	cause := errors.New("connection refused")

	apiErr := &RemoteAPIError{Op: "stop devworkspace 'my-ws'", Err: cause}
	assert.ErrorIs(t, apiErr, cause)
	assert.Equal(t, "failed to stop devworkspace 'my-ws': connection refused", apiErr.Error())

	tunnelErr := &TunnelError{Pod: "ws-pod", LocalPort: 5990, RemotePort: 5990, Err: cause}
	assert.ErrorIs(t, tunnelErr, cause)
	assert.Equal(t, "failed to forward 5990:5990 to pod 'ws-pod': connection refused", tunnelErr.Error())

	queryErr := &QueryError{Pod: "ws-pod", Container: "tools", Err: cause}
	assert.ErrorIs(t, queryErr, cause)

	userErr := UserError{E: queryErr, Hint: "check the workspace logs"}
	var target *QueryError
	assert.True(t, errors.As(userErr, &target))
}

func TestAlreadyConnectedError(t *testing.T) {
	err := &AlreadyConnectedError{Workspace: "my-ws"}
	assert.Equal(t, "already connected to my-ws", err.Error())
}
