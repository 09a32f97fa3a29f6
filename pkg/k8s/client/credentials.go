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
	"net/http"
	"strings"

	"github.com/okteto/devworkspace-gateway/pkg/log"
)

type credentials struct {
	rt http.RoundTripper
}

func credentialsFn(rt http.RoundTripper) http.RoundTripper {
	return &credentials{rt: rt}
}

// RoundTrip logs requests rejected because of expired or invalid credentials
func (c *credentials) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := c.rt.RoundTrip(req)
	if isCredentialError(resp, err) {
		log.Debugf("%s %s was rejected, your kubernetes credentials might be expired", req.Method, req.URL.Path)
	}
	return resp, err
}

func isCredentialError(resp *http.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return true
	}
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "x509") || strings.Contains(msg, "no such host")
}
