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

package link

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	oktetoErrors "github.com/okteto/devworkspace-gateway/pkg/errors"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"github.com/skratchdot/open-golang/open"
)

// BrowserLinker opens the join link with the default handler of the OS.
// The session lasts until Terminate is called.
type BrowserLinker struct {
	open func(string) error
}

// NewBrowserLinker returns a linker using the OS handler
func NewBrowserLinker() *BrowserLinker {
	return &BrowserLinker{open: open.Start}
}

// Link opens joinLink
func (b *BrowserLinker) Link(_ context.Context, joinLink *url.URL, onConnected func()) (Handle, error) {
	if err := b.open(joinLink.String()); err != nil {
		if strings.Contains(err.Error(), "executable file not found in $PATH") {
			return nil, oktetoErrors.UserError{
				E:    fmt.Errorf("no handler could open the join link: %w", oktetoErrors.ErrNotInteractive),
				Hint: "Use the '--client' flag to launch the client with a command",
			}
		}
		return nil, fmt.Errorf("failed to open the join link: %w", err)
	}
	log.Infof("join link opened with the default handler")

	h := newHandle(nil)
	if onConnected != nil {
		onConnected()
	}
	return h, nil
}
