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
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Phase is the observed lifecycle phase of a devworkspace
type Phase string

const (
	// PhaseStarting the workspace is being started
	PhaseStarting Phase = "Starting"
	// PhaseRunning the workspace is ready to accept connections
	PhaseRunning Phase = "Running"
	// PhaseStopping the workspace is being stopped
	PhaseStopping Phase = "Stopping"
	// PhaseStopped the workspace has no running pods
	PhaseStopped Phase = "Stopped"
	// PhaseFailing the workspace is failing to start
	PhaseFailing Phase = "Failing"
	// PhaseFailed the workspace failed to start
	PhaseFailed Phase = "Failed"
	// PhaseTerminating the workspace is being deleted
	PhaseTerminating Phase = "Terminating"
)

// GVR is the resource served by the devworkspace operator
var GVR = schema.GroupVersionResource{
	Group:    "workspace.devfile.io",
	Version:  "v1alpha2",
	Resource: "devworkspaces",
}

// DevWorkspace is the subset of a devworkspace consumed by the gateway
type DevWorkspace struct {
	Namespace string
	Name      string
	UID       string
	Started   bool
	Phase     Phase
	Message   string
	MainURL   string
}

func fromUnstructured(u *unstructured.Unstructured) *DevWorkspace {
	started, _, _ := unstructured.NestedBool(u.Object, "spec", "started")
	phase, _, _ := unstructured.NestedString(u.Object, "status", "phase")
	message, _, _ := unstructured.NestedString(u.Object, "status", "message")
	mainURL, _, _ := unstructured.NestedString(u.Object, "status", "mainUrl")

	return &DevWorkspace{
		Namespace: u.GetNamespace(),
		Name:      u.GetName(),
		UID:       string(u.GetUID()),
		Started:   started,
		Phase:     Phase(phase),
		Message:   message,
		MainURL:   mainURL,
	}
}
