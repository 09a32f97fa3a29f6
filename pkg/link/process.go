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
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/a8m/envsubst"
	"github.com/alessio/shellescape"
	shellquote "github.com/kballard/go-shellquote"
	"github.com/okteto/devworkspace-gateway/pkg/log"
)

const (
	// joinLinkPlaceholder is replaced by the join link when present in the command
	joinLinkPlaceholder = "{joinLink}"

	killTimeout = 5 * time.Second
)

// ProcessLinker launches a local client process with the join link
type ProcessLinker struct {
	Command string
}

// Link starts the client. The session ends when the process exits or Terminate is called.
func (p *ProcessLinker) Link(_ context.Context, joinLink *url.URL, onConnected func()) (Handle, error) {
	args, err := commandFor(p.Command, joinLink.String())
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to launch '%s': %w", args[0], err)
	}
	log.Infof("interactive client started with pid %d: %s", cmd.Process.Pid, shellescape.QuoteCommand(args))

	exited := make(chan struct{})
	h := newHandle(func() {
		select {
		case <-exited:
			return
		default:
		}
		if err := interrupt(cmd.Process); err != nil {
			log.Debugf("failed to interrupt the interactive client: %s", err)
		}
		select {
		case <-exited:
		case <-time.After(killTimeout):
			log.Infof("interactive client didn't exit after %s, killing it", killTimeout)
			if err := cmd.Process.Kill(); err != nil {
				log.Debugf("failed to kill the interactive client: %s", err)
			}
		}
	})

	go func() {
		err := cmd.Wait()
		close(exited)
		if err != nil {
			log.Infof("interactive client exited: %s", err)
		} else {
			log.Infof("interactive client exited")
		}
		h.lifetime.Terminate()
	}()

	if onConnected != nil {
		onConnected()
	}
	return h, nil
}

// commandFor expands the environment in command, supporting "${var:-default}", and adds the join link
func commandFor(command, joinLink string) ([]string, error) {
	expanded, err := envsubst.String(command)
	if err != nil {
		return nil, fmt.Errorf("error expanding environment on '%s': %w", command, err)
	}
	args, err := shellquote.Split(expanded)
	if err != nil {
		return nil, fmt.Errorf("invalid client command '%s': %w", command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("the client command is empty")
	}

	replaced := false
	for i := range args {
		if strings.Contains(args[i], joinLinkPlaceholder) {
			args[i] = strings.ReplaceAll(args[i], joinLinkPlaceholder, joinLink)
			replaced = true
		}
	}
	if !replaced {
		args = append(args, joinLink)
	}
	return args, nil
}

func interrupt(p *os.Process) error {
	if runtime.GOOS == "windows" {
		return p.Kill()
	}
	return p.Signal(os.Interrupt)
}
