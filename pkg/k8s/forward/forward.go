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

package forward

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"time"

	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	apiv1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/httpstream"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"
)

const stopTimeout = 5 * time.Second

// Forwarder opens tunnels to pods
type Forwarder interface {
	Forward(ctx context.Context, pod *apiv1.Pod, localPort, remotePort int) (*Tunnel, error)
}

// PortForwarder forwards local ports through the pods/portforward subresource
type PortForwarder struct {
	restConfig *rest.Config
	client     kubernetes.Interface

	// Address is the local interface the tunnel listens on
	Address string
}

// NewPortForwarder returns a Forwarder listening on localhost
func NewPortForwarder(restConfig *rest.Config, c kubernetes.Interface) *PortForwarder {
	return &PortForwarder{
		restConfig: restConfig,
		client:     c,
		Address:    "localhost",
	}
}

// Forward opens a tunnel from localPort to remotePort in pod. A localPort of 0 picks a free port.
// It doesn't retry: any failure is returned as a TunnelError.
func (p *PortForwarder) Forward(ctx context.Context, pod *apiv1.Pod, localPort, remotePort int) (*Tunnel, error) {
	fail := func(err error) (*Tunnel, error) {
		return nil, &oktetoErrors.TunnelError{Pod: pod.Name, LocalPort: localPort, RemotePort: remotePort, Err: err}
	}

	if localPort != 0 && !isPortAvailable(p.Address, localPort) {
		return fail(portInUse(localPort))
	}

	dialer, err := p.buildDialer(pod.Namespace, pod.Name)
	if err != nil {
		return fail(err)
	}

	stopChan := make(chan struct{}, 1)
	readyChan := make(chan struct{})
	out := new(bytes.Buffer)

	pf, err := portforward.NewOnAddresses(
		dialer,
		[]string{p.Address},
		[]string{fmt.Sprintf("%d:%d", localPort, remotePort)},
		stopChan,
		readyChan,
		io.Discard,
		out)
	if err != nil {
		return fail(err)
	}

	errChan := make(chan error, 1)
	returned := make(chan struct{})
	go func() {
		defer close(returned)
		errChan <- pf.ForwardPorts()
	}()

	select {
	case <-readyChan:
	case err := <-errChan:
		if err == nil {
			err = fmt.Errorf("port forward ended before it was ready")
		}
		return fail(err)
	case <-ctx.Done():
		close(stopChan)
		return fail(ctx.Err())
	}

	bound := localPort
	if ports, err := pf.GetPorts(); err == nil && len(ports) > 0 {
		bound = int(ports[0].Local)
	}

	t := NewTunnel(bound, func() {
		log.Debugf("[port-forward-%d:%d] stopping", bound, remotePort)
		close(stopChan)
		select {
		case <-returned:
		case <-time.After(stopTimeout):
			log.Infof("[port-forward-%d:%d] didn't stop after %s", bound, remotePort, stopTimeout)
		}
		if out.Len() > 0 {
			log.Debugf("[port-forward-%d:%d] logged errors: %s", bound, remotePort, out.String())
		}
		log.Debugf("[port-forward-%d:%d] stopped", bound, remotePort)
	})

	go func() {
		err := <-errChan
		if err != nil && !oktetoErrors.IsClosedNetwork(err) {
			log.Infof("[port-forward-%d:%d] finished with errors: %s", bound, remotePort, err)
		}
		t.finish(err)
	}()

	log.Infof("[port-forward-%d:%d] forwarding to pod '%s'", bound, remotePort, pod.Name)
	return t, nil
}

func (p *PortForwarder) buildDialer(namespace, pod string) (httpstream.Dialer, error) {
	if p.restConfig == nil {
		return nil, fmt.Errorf("restConfig is nil")
	}

	url := p.client.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("portforward").URL()

	transport, upgrader, err := spdy.RoundTripperFor(p.restConfig)
	if err != nil {
		return nil, err
	}

	return spdy.NewDialer(upgrader, &http.Client{Transport: transport}, http.MethodPost, url), nil
}

func isPortAvailable(address string, port int) bool {
	l, err := net.Listen("tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		log.Debugf("port %s:%d is not available: %s", address, port, err)
		return false
	}
	if err := l.Close(); err != nil {
		log.Debugf("failed to close the port probe on %s:%d: %s", address, port, err)
	}
	return true
}

func portInUse(port int) error {
	if port <= 1024 && runtime.GOOS == "linux" {
		return fmt.Errorf("local port %d is privileged or already in use in your local machine", port)
	}
	return fmt.Errorf("local port %d is already in use in your local machine", port)
}
