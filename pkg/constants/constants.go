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

package constants

import "time"

const (
	// GatewayHomeEnvVar defines the path of the gateway folder
	GatewayHomeEnvVar = "GATEWAY_HOME"

	// KubeConfigEnvVar defines the path where kubeconfig is stored
	KubeConfigEnvVar = "KUBECONFIG"

	// GatewayKubernetesTimeoutEnvVar overrides the timeout of kubernetes API calls
	GatewayKubernetesTimeoutEnvVar = "GATEWAY_KUBERNETES_TIMEOUT"

	// GatewayRunningTimeoutEnvVar overrides how long to wait for a workspace to be running
	GatewayRunningTimeoutEnvVar = "GATEWAY_RUNNING_TIMEOUT"

	// GatewayReadyTimeoutEnvVar overrides how long to wait for the remote backend projects to be ready
	GatewayReadyTimeoutEnvVar = "GATEWAY_READY_TIMEOUT"

	// GatewayTerminationTimeoutEnvVar overrides how long to wait for the remote backend projects to be closed
	GatewayTerminationTimeoutEnvVar = "GATEWAY_TERMINATION_TIMEOUT"

	// GatewayClientCommandEnvVar overrides the command used to launch the interactive client
	GatewayClientCommandEnvVar = "GATEWAY_CLIENT_COMMAND"

	// GatewayDisableSpinnerEnvVar if true spinner is disabled
	GatewayDisableSpinnerEnvVar = "GATEWAY_DISABLE_SPINNER"

	// DevWorkspaceNameLabel is set by the devworkspace controller on every pod of a workspace
	DevWorkspaceNameLabel = "controller.devfile.io/devworkspace_name"

	// BackendPortName is the name of the container port exposed by the remote backend
	BackendPortName = "idea-server"

	// BackendPort is the port where the remote backend listens for the interactive client
	BackendPort = 5990

	// BackendStatusCommand prints the status of the remote backend as a json document
	BackendStatusCommand = "/idea-server/bin/remote-dev-server.sh status $PROJECT_SOURCE | awk '/STATUS:/{p=1; next} p'"

	// DefaultRunningTimeout is the default time to wait for a workspace to reach the Running phase
	DefaultRunningTimeout = 300 * time.Second

	// DefaultReadyTimeout is the default time to wait for the remote backend projects to be ready
	DefaultReadyTimeout = 60 * time.Second

	// DefaultTerminationTimeout is the default time to wait for the remote backend projects to be closed
	DefaultTerminationTimeout = 10 * time.Second

	// DefaultKubernetesTimeout is the default timeout of kubernetes API calls
	DefaultKubernetesTimeout = 30 * time.Second

	// DefaultPhaseInterval is how often the workspace phase is polled
	DefaultPhaseInterval = 3 * time.Second

	// DefaultStatusInterval is how often the remote backend status is polled
	DefaultStatusInterval = 5 * time.Second

	// MinPollInterval is the lowest polling interval accepted
	MinPollInterval = 100 * time.Millisecond

	// TimeFormat is the format to use when printing timestamps
	TimeFormat = "2006-01-02T15:04:05"
)
