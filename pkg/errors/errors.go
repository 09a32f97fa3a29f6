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
	"strings"
	"time"
)

// UserError is meant for errors displayed to the user. It can include a message and a hint
type UserError struct {
	E    error
	Hint string
}

// Error returns the error message
func (u UserError) Error() string {
	return u.E.Error()
}

func (u UserError) Unwrap() error {
	return u.E
}

var (
	// ErrNotFound is raised when an object is not found
	ErrNotFound = errors.New("not found")

	// ErrTimeout is raised when an operation has timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrNotInteractive is raised when the interactive client can't be launched from the current terminal
	ErrNotInteractive = errors.New("the interactive client requires a terminal session")

	// ErrLinkTerminated is raised when a client link is used after its termination
	ErrLinkTerminated = errors.New("client link is terminated")
)

// AlreadyConnectedError is raised when a connection attempt is started while another one is in progress or linked
type AlreadyConnectedError struct {
	Workspace string
}

// Error returns the error message
func (e *AlreadyConnectedError) Error() string {
	return fmt.Sprintf("already connected to %s", e.Workspace)
}

// WorkloadTimeoutError is raised when a workspace doesn't reach the expected phase in time
type WorkloadTimeoutError struct {
	Workspace string
	Phase     string
	Timeout   time.Duration
}

// Error returns the error message
func (e *WorkloadTimeoutError) Error() string {
	return fmt.Sprintf("devworkspace '%s' is not %s after %s", e.Workspace, strings.ToLower(e.Phase), FormatTimeout(e.Timeout))
}

// Unwrap returns ErrTimeout
func (*WorkloadTimeoutError) Unwrap() error {
	return ErrTimeout
}

// BackendTimeoutError is raised when the remote backend projects are not ready in time
type BackendTimeoutError struct {
	Timeout time.Duration
}

// Error returns the error message
func (e *BackendTimeoutError) Error() string {
	return fmt.Sprintf("projects are not ready after %s", FormatTimeout(e.Timeout))
}

// Unwrap returns ErrTimeout
func (*BackendTimeoutError) Unwrap() error {
	return ErrTimeout
}

// NotFoundError is raised when the cluster doesn't have an object the workspace claims to have
type NotFoundError struct {
	Kind      string
	Name      string
	Namespace string
	Reason    string
}

// Error returns the error message
func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
	if e.Namespace != "" {
		msg = fmt.Sprintf("%s '%s' not found in namespace '%s'", e.Kind, e.Name, e.Namespace)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	return msg
}

// Unwrap returns ErrNotFound
func (*NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RemoteAPIError is raised when a call to the kubernetes API fails
type RemoteAPIError struct {
	Op  string
	Err error
}

// Error returns the error message
func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.Op, e.Err)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// TunnelError is raised when the port forward to the remote backend can't be established
type TunnelError struct {
	Pod        string
	LocalPort  int
	RemotePort int
	Err        error
}

// Error returns the error message
func (e *TunnelError) Error() string {
	return fmt.Sprintf("failed to forward %d:%d to pod '%s': %s", e.LocalPort, e.RemotePort, e.Pod, e.Err)
}

func (e *TunnelError) Unwrap() error {
	return e.Err
}

// QueryError is raised when the status of the remote backend can't be retrieved or parsed
type QueryError struct {
	Pod       string
	Container string
	Err       error
}

// Error returns the error message
func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to query the backend status in %s/%s: %s", e.Pod, e.Container, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// FormatTimeout prints whole-second timeouts as "N seconds" and anything else as a duration
func FormatTimeout(d time.Duration) string {
	if d >= time.Second && d%time.Second == 0 {
		return fmt.Sprintf("%d seconds", int64(d/time.Second))
	}
	return d.String()
}

// IsForbidden returns true if the kubernetes API rejected the credentials
func IsForbidden(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "Unauthorized") || strings.Contains(err.Error(), "forbidden"))
}

// IsX509 returns true if the error is caused by an untrusted certificate
func IsX509(err error) bool {
	return err != nil && strings.Contains(err.Error(), "x509")
}

// IsNotFound returns true if err is of the type not found
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "doesn't exist")
}

// IsTransient returns true if err represents a transient error
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case strings.Contains(err.Error(), "operation time out"),
		strings.Contains(err.Error(), "operation timed out"),
		strings.Contains(err.Error(), "i/o timeout"),
		strings.Contains(err.Error(), "Client.Timeout exceeded while awaiting headers"),
		strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"),
		strings.Contains(err.Error(), "no route to host"),
		strings.Contains(err.Error(), "unexpected EOF"),
		strings.Contains(err.Error(), "TLS handshake timeout"),
		strings.Contains(err.Error(), "broken pipe"),
		strings.Contains(err.Error(), "network is unreachable"),
		strings.Contains(err.Error(), "unable to upgrade connection"):
		return true
	default:
		return false
	}
}

// IsClosedNetwork returns true if the error is caused by a closed network connection
func IsClosedNetwork(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}
