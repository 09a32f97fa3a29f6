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

package pods

import (
	"context"
	"fmt"
	"sort"

	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	apiv1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
)

// Locator finds the pod and container serving a workspace
type Locator struct {
	c kubernetes.Interface
}

// NewLocator returns a Locator using c
func NewLocator(c kubernetes.Interface) *Locator {
	return &Locator{c: c}
}

// SelectorForWorkspace returns the label selector matching the pods of a workspace
func SelectorForWorkspace(label, name string) string {
	return labels.SelectorFromSet(labels.Set{label: name}).String()
}

// FindFirst returns the oldest pod that matches the selector. Pods being deleted are ignored.
func (l *Locator) FindFirst(ctx context.Context, namespace, selector string) (*apiv1.Pod, error) {
	return FindFirst(ctx, namespace, selector, l.c)
}

// FindFirst returns the oldest pod that matches the selector. Pods being deleted are ignored.
func FindFirst(ctx context.Context, namespace, selector string, c kubernetes.Interface) (*apiv1.Pod, error) {
	if selector == "" {
		return nil, fmt.Errorf("empty selector")
	}

	p, err := c.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, &oktetoErrors.RemoteAPIError{Op: fmt.Sprintf("list pods with selector '%s'", selector), Err: err}
	}

	candidates := make([]apiv1.Pod, 0, len(p.Items))
	for i := range p.Items {
		if p.Items[i].DeletionTimestamp != nil {
			log.Debugf("skipping pod '%s': it is being deleted", p.Items[i].Name)
			continue
		}
		candidates = append(candidates, p.Items[i])
	}

	if len(candidates) == 0 {
		return nil, &oktetoErrors.NotFoundError{
			Kind:      "pod",
			Name:      selector,
			Namespace: namespace,
			Reason:    "the workspace is running but no pod matches its selector",
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ti, tj := candidates[i].CreationTimestamp, candidates[j].CreationTimestamp
		if !ti.Equal(&tj) {
			return ti.Before(&tj)
		}
		return candidates[i].Name < candidates[j].Name
	})

	r := candidates[0]
	return &r, nil
}

// FindContainer returns the first container declaring a port named portName
func FindContainer(pod *apiv1.Pod, portName string) (*apiv1.Container, error) {
	for i := range pod.Spec.Containers {
		if ContainerPort(&pod.Spec.Containers[i], portName) != 0 {
			return &pod.Spec.Containers[i], nil
		}
	}
	return nil, &oktetoErrors.NotFoundError{
		Kind:      "container",
		Name:      portName,
		Namespace: pod.Namespace,
		Reason:    fmt.Sprintf("pod '%s' has no container exposing a port named '%s'", pod.Name, portName),
	}
}

// ContainerPort returns the container port named portName, or 0 if the container doesn't declare it
func ContainerPort(container *apiv1.Container, portName string) int32 {
	for _, p := range container.Ports {
		if p.Name == portName {
			return p.ContainerPort
		}
	}
	return 0
}
