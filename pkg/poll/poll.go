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

package poll

import (
	"context"
	"time"

	"github.com/okteto/devworkspace-gateway/pkg/constants"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"k8s.io/apimachinery/pkg/util/wait"
)

// MinInterval is the lowest interval accepted by Until
const MinInterval = constants.MinPollInterval

// Condition reports whether the awaited state was observed.
// An error is logged and means "not yet".
type Condition func(ctx context.Context) (bool, error)

// Until runs cond immediately and then every interval until it returns true,
// the timeout expires or ctx is cancelled. It returns whether cond was satisfied.
// The polling goroutine never outlives the deadline.
func Until(ctx context.Context, interval, timeout time.Duration, cond Condition) bool {
	if interval < MinInterval {
		interval = MinInterval
	}
	if timeout <= 0 {
		return false
	}

	attempt := 0
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		attempt++
		ok, err := cond(ctx)
		if err != nil {
			log.Debugf("poll attempt %d failed: %s", attempt, err)
			return false, nil
		}
		return ok, nil
	})
	if err != nil {
		log.Debugf("stopped polling after %d attempts: %s", attempt, err)
		return false
	}
	return true
}
