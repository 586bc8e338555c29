package config

import "time"

const (
	DefaultKubectlBinary = "kubectl"
	// DefaultProxyPort matches kubectl proxy's own default.
	DefaultProxyPort    = 8001
	DefaultRetryCount   = 5
	DefaultRetryWait    = 2 * time.Second
	DefaultProbeTimeout = 3 * time.Second
	DefaultMaxLines     = 10000
	DefaultLogLevel     = "info"
)

// GetDefaultConfig returns the configuration used when no file overrides it.
func GetDefaultConfig() KubelConfig {
	return KubelConfig{
		Kubectl: KubectlConfig{
			Binary: DefaultKubectlBinary,
		},
		Proxy: ProxyConfig{
			Port: DefaultProxyPort,
		},
		Readiness: ReadinessConfig{
			RetryCount:   DefaultRetryCount,
			RetryWait:    DefaultRetryWait,
			ProbeTimeout: DefaultProbeTimeout,
		},
		Output: OutputConfig{
			MaxLines: DefaultMaxLines,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}
