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

package remote

// Project is a project opened by the remote backend
type Project struct {
	Name string `json:"projectName" yaml:"name"`
	Path string `json:"projectPath" yaml:"path"`
}

// ProjectStatus is a snapshot of the remote backend status
type ProjectStatus struct {
	JoinLink       string    `json:"joinLink" yaml:"joinLink"`
	HTTPLink       string    `json:"httpLink" yaml:"httpLink"`
	GatewayLink    string    `json:"gatewayLink" yaml:"gatewayLink"`
	AppVersion     string    `json:"appVersion" yaml:"appVersion"`
	RuntimeVersion string    `json:"runtimeVersion" yaml:"runtimeVersion"`
	Projects       []Project `json:"projects" yaml:"projects"`
}

// IsReady returns true if the backend reports at least one project
func (s *ProjectStatus) IsReady() bool {
	return s != nil && len(s.Projects) > 0
}

// IsDrained returns true if the backend reports the projects field with no projects.
// A missing projects field means the backend isn't initialized yet.
func (s *ProjectStatus) IsDrained() bool {
	return s != nil && s.Projects != nil && len(s.Projects) == 0
}
