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

package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	var tests = []struct {
		name        string
		level       string
		expected    logrus.Level
		expectError bool
	}{
		{name: "debug", level: "debug", expected: logrus.DebugLevel},
		{name: "info", level: "info", expected: logrus.InfoLevel},
		{name: "warn", level: "warn", expected: logrus.WarnLevel},
		{name: "error", level: "error", expected: logrus.ErrorLevel},
		{name: "invalid", level: "verbose", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, err := parseLevel(tt.level)
			if tt.expectError {
				var levelErr *InvalidLogLevelError
				require.ErrorAs(t, err, &levelErr)
				assert.Equal(t, "invalid log level 'verbose'", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, levelMap[lvl])
		})
	}
}

func TestSetLevel(t *testing.T) {
	log = newLogger(&bytes.Buffer{})
	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, "debug", GetLevel())

	assert.Error(t, SetLevel("chatty"))
	assert.Equal(t, "debug", GetLevel())
}

func TestPlainOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log = newLogger(buf)

	Success("connected to %s", "my-ws")
	Information("join link: %s", "tcp://127.0.0.1:5990")
	Warning("workspace %s is still running", "my-ws")
	Fail("projects are not ready")
	Hint("    run 'gateway workspace status my-ws'")

	expected := "SUCCESS: connected to my-ws\n" +
		"INFO: join link: tcp://127.0.0.1:5990\n" +
		"WARNING: workspace my-ws is still running\n" +
		"ERROR: projects are not ready\n" +
		"    run 'gateway workspace status my-ws'\n"
	assert.Equal(t, expected, buf.String())
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log = newLogger(buf)

	Infof("hidden at warn level")
	assert.Empty(t, buf.String())

	require.NoError(t, SetLevel("info"))
	Infof("shown at info level")
	assert.Contains(t, buf.String(), "shown at info level")

	buf.Reset()
	Slog().Info("structured", "workspace", "my-ws")
	assert.Contains(t, buf.String(), "workspace=my-ws")
}

func TestInitWithFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init("info", dir, "gateway"))
	require.NotNil(t, log.file)

	Debugf("always written to file")
	Slog().Debug("structured debug", "workspace", "my-ws")
	assert.FileExists(t, filepath.Join(dir, "gateway.log"))

	b, err := os.ReadFile(filepath.Join(dir, "gateway.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "always written to file")
	assert.Contains(t, string(b), "workspace=my-ws")

	assert.Error(t, Init("loud", dir, "gateway"))
}
