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

package lifetime

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminateRunsInOrder(t *testing.T) {
	l := New()
	var got []string
	l.OnTermination("first", func() error {
		got = append(got, "first")
		return errors.New("tunnel already closed")
	})
	l.OnTermination("second", func() error {
		got = append(got, "second")
		panic("boom")
	})
	l.OnTermination("third", func() error {
		got = append(got, "third")
		return nil
	})

	assert.False(t, l.Terminated())
	l.Terminate()

	assert.True(t, l.Terminated())
	assert.Equal(t, []string{"first", "second", "third"}, got)
	select {
	case <-l.Done():
	default:
		t.Fatal("done channel is not closed")
	}
}

func TestTerminateOnce(t *testing.T) {
	l := New()
	calls := 0
	l.OnTermination("count", func() error {
		calls++
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Terminate()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
}

func TestOnTerminationAfterTerminate(t *testing.T) {
	l := New()
	l.Terminate()

	called := false
	l.OnTermination("late", func() error {
		called = true
		return nil
	})
	assert.True(t, called)
}
