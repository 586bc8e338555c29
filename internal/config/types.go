package config

import (
	"time"
)

// KubelConfig is the top-level configuration structure for kubel.
type KubelConfig struct {
	Kubectl   KubectlConfig   `yaml:"kubectl"`
	Proxy     ProxyConfig     `yaml:"proxy"`
	Readiness ReadinessConfig `yaml:"readiness"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// KubectlConfig describes how the kubectl child processes are invoked.
type KubectlConfig struct {
	Binary     string `yaml:"binary,omitempty"`     // Path or name of the kubectl binary
	Kubeconfig string `yaml:"kubeconfig,omitempty"` // Optional explicit kubeconfig file
	Context    string `yaml:"context,omitempty"`    // Optional context override
	Namespace  string `yaml:"namespace,omitempty"`  // Optional namespace for pollers
}

// ProxyConfig holds settings for the `kubectl proxy` child.
type ProxyConfig struct {
	Port int `yaml:"port,omitempty"`
}

// ReadinessConfig controls the retry budget used when probing the proxy.
type ReadinessConfig struct {
	RetryCount   int           `yaml:"retryCount,omitempty"`
	RetryWait    time.Duration `yaml:"retryWait,omitempty"`
	ProbeTimeout time.Duration `yaml:"probeTimeout,omitempty"`
}

// OutputConfig bounds the per-process output sinks.
type OutputConfig struct {
	MaxLines int `yaml:"maxLines,omitempty"`
}

// LoggingConfig selects the log level ("debug", "info", "warn", "error").
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
}
