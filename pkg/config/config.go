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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/okteto/devworkspace-gateway/pkg/constants"
	"github.com/okteto/devworkspace-gateway/pkg/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	gatewayFolderName = ".gateway"
	configFile        = "config.yml"
)

// VersionString the version of the cli
var VersionString string

// Config is the configuration of the gateway
type Config struct {
	Kubeconfig string    `yaml:"kubeconfig,omitempty"`
	Context    string    `yaml:"context,omitempty"`
	Namespace  string    `yaml:"namespace,omitempty"`
	Timeouts   Timeouts  `yaml:"timeouts,omitempty"`
	Intervals  Intervals `yaml:"intervals,omitempty"`
	Backend    Backend   `yaml:"backend,omitempty"`
	Client     Client    `yaml:"client,omitempty"`
}

// Timeouts bounds every wait of a connection attempt
type Timeouts struct {
	Running     time.Duration `yaml:"running,omitempty"`
	Ready       time.Duration `yaml:"ready,omitempty"`
	Termination time.Duration `yaml:"termination,omitempty"`
	Kubernetes  time.Duration `yaml:"kubernetes,omitempty"`
}

// Intervals defines how often the remote state is polled
type Intervals struct {
	Phase  time.Duration `yaml:"phase,omitempty"`
	Status time.Duration `yaml:"status,omitempty"`
}

// Backend describes where the remote backend listens and how to query it
type Backend struct {
	PortName      string `yaml:"portName,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	LocalPort     int    `yaml:"localPort,omitempty"`
	StatusCommand string `yaml:"statusCommand,omitempty"`
	SelectorLabel string `yaml:"selectorLabel,omitempty"`
}

// Client describes how to launch the interactive client
type Client struct {
	Command string `yaml:"command,omitempty"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Timeouts: Timeouts{
			Running:     constants.DefaultRunningTimeout,
			Ready:       constants.DefaultReadyTimeout,
			Termination: constants.DefaultTerminationTimeout,
			Kubernetes:  constants.DefaultKubernetesTimeout,
		},
		Intervals: Intervals{
			Phase:  constants.DefaultPhaseInterval,
			Status: constants.DefaultStatusInterval,
		},
		Backend: Backend{
			PortName:      constants.BackendPortName,
			Port:          constants.BackendPort,
			LocalPort:     constants.BackendPort,
			StatusCommand: constants.BackendStatusCommand,
			SelectorLabel: constants.DevWorkspaceNameLabel,
		},
	}
}

// GetBinaryName returns the name of the binary
func GetBinaryName() string {
	return filepath.Base(os.Args[0])
}

// GetGatewayHome returns the path of the gateway folder
func GetGatewayHome() string {
	if v, ok := os.LookupEnv(constants.GatewayHomeEnvVar); ok && v != "" {
		return v
	}

	home, err := homedir.Dir()
	if err != nil {
		log.Infof("failed to get the home directory: %s", err)
		home = os.TempDir()
	}
	return filepath.Join(home, gatewayFolderName)
}

// GetConfigPath returns the path of the configuration file
func GetConfigPath() string {
	return filepath.Join(GetGatewayHome(), configFile)
}

// Load reads the configuration at path on top of the defaults and applies env overrides.
// A missing file is not an error.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	b, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		fromFile := &Config{}
		if err := yaml.Unmarshal(b, fromFile); err != nil {
			return nil, fmt.Errorf("failed to parse '%s': %w", path, err)
		}
		cfg.merge(fromFile)
	case os.IsNotExist(err):
		log.Debugf("config file '%s' not found, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}

	cfg.applyEnv()
	cfg.Intervals.Phase = floorInterval(cfg.Intervals.Phase)
	cfg.Intervals.Status = floorInterval(cfg.Intervals.Status)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration at path
func Save(fs afero.Fs, path string, cfg *Config) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize the configuration: %w", err)
	}
	return afero.WriteFile(fs, path, b, 0600)
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if c.Backend.Port <= 0 || c.Backend.Port > 65535 {
		return fmt.Errorf("backend.port %d is not a valid port", c.Backend.Port)
	}
	if c.Backend.LocalPort < 0 || c.Backend.LocalPort > 65535 {
		return fmt.Errorf("backend.localPort %d is not a valid port", c.Backend.LocalPort)
	}
	if c.Backend.PortName == "" {
		return fmt.Errorf("backend.portName can't be empty")
	}
	if strings.TrimSpace(c.Backend.StatusCommand) == "" {
		return fmt.Errorf("backend.statusCommand can't be empty")
	}
	for name, d := range map[string]time.Duration{
		"timeouts.running":     c.Timeouts.Running,
		"timeouts.ready":       c.Timeouts.Ready,
		"timeouts.termination": c.Timeouts.Termination,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be greater than zero", name)
		}
	}
	return nil
}

func (c *Config) merge(o *Config) {
	if o.Kubeconfig != "" {
		c.Kubeconfig = o.Kubeconfig
	}
	if o.Context != "" {
		c.Context = o.Context
	}
	if o.Namespace != "" {
		c.Namespace = o.Namespace
	}
	mergeDuration(&c.Timeouts.Running, o.Timeouts.Running)
	mergeDuration(&c.Timeouts.Ready, o.Timeouts.Ready)
	mergeDuration(&c.Timeouts.Termination, o.Timeouts.Termination)
	mergeDuration(&c.Timeouts.Kubernetes, o.Timeouts.Kubernetes)
	mergeDuration(&c.Intervals.Phase, o.Intervals.Phase)
	mergeDuration(&c.Intervals.Status, o.Intervals.Status)
	if o.Backend.PortName != "" {
		c.Backend.PortName = o.Backend.PortName
	}
	if o.Backend.Port != 0 {
		c.Backend.Port = o.Backend.Port
	}
	if o.Backend.LocalPort != 0 {
		c.Backend.LocalPort = o.Backend.LocalPort
	}
	if o.Backend.StatusCommand != "" {
		c.Backend.StatusCommand = o.Backend.StatusCommand
	}
	if o.Backend.SelectorLabel != "" {
		c.Backend.SelectorLabel = o.Backend.SelectorLabel
	}
	if o.Client.Command != "" {
		c.Client.Command = o.Client.Command
	}
}

func mergeDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

func floorInterval(d time.Duration) time.Duration {
	if d < constants.MinPollInterval {
		return constants.MinPollInterval
	}
	return d
}

func (c *Config) applyEnv() {
	durationFromEnv(constants.GatewayKubernetesTimeoutEnvVar, &c.Timeouts.Kubernetes)
	durationFromEnv(constants.GatewayRunningTimeoutEnvVar, &c.Timeouts.Running)
	durationFromEnv(constants.GatewayReadyTimeoutEnvVar, &c.Timeouts.Ready)
	durationFromEnv(constants.GatewayTerminationTimeoutEnvVar, &c.Timeouts.Termination)
	if v, ok := os.LookupEnv(constants.GatewayClientCommandEnvVar); ok {
		c.Client.Command = v
	}
}

func durationFromEnv(name string, dst *time.Duration) {
	t, ok := os.LookupEnv(name)
	if !ok {
		return
	}

	parsed, err := time.ParseDuration(t)
	if err != nil || parsed <= 0 {
		log.Infof("'%s' is not a valid duration for %s, ignoring", t, name)
		return
	}

	log.Infof("%s applied: '%s'", name, parsed.String())
	*dst = parsed
}
