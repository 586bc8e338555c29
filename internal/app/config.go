package app

import (
	"kubel/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug lowers the log level to debug regardless of the config file.
	Debug bool

	// EditorMode routes logs to a channel instead of stderr text, for hosts
	// that speak a protocol on stdout.
	EditorMode bool

	// ConfigPath, when set, replaces the layered user/project lookup.
	ConfigPath string

	// Loaded kubel configuration
	KubelConfig *config.KubelConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}
