package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/kubel"
	projectConfigDir = ".kubel"
	configFileName   = "config.yaml"
)

// LoadConfig loads the kubel configuration by layering default, user, and project settings.
func LoadConfig() (KubelConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// user config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if config, err = overlayFromFile(config, userConfigPath); err != nil {
		return KubelConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if config, err = overlayFromFile(config, projectConfigPath); err != nil {
		return KubelConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func overlayFromFile(base KubelConfig, path string) (KubelConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return base, err
	}
	return mergeConfigs(base, overlay), nil
}

// loadConfigFromFile loads a KubelConfig from a YAML file.
func loadConfigFromFile(filePath string) (KubelConfig, error) {
	var config KubelConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return KubelConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return KubelConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in
// overlay leave base untouched.
func mergeConfigs(base, overlay KubelConfig) KubelConfig {
	merged := base

	if overlay.Kubectl.Binary != "" {
		merged.Kubectl.Binary = overlay.Kubectl.Binary
	}
	if overlay.Kubectl.Kubeconfig != "" {
		merged.Kubectl.Kubeconfig = overlay.Kubectl.Kubeconfig
	}
	if overlay.Kubectl.Context != "" {
		merged.Kubectl.Context = overlay.Kubectl.Context
	}
	if overlay.Kubectl.Namespace != "" {
		merged.Kubectl.Namespace = overlay.Kubectl.Namespace
	}

	if overlay.Proxy.Port != 0 {
		merged.Proxy.Port = overlay.Proxy.Port
	}

	if overlay.Readiness.RetryCount != 0 {
		merged.Readiness.RetryCount = overlay.Readiness.RetryCount
	}
	if overlay.Readiness.RetryWait != 0 {
		merged.Readiness.RetryWait = overlay.Readiness.RetryWait
	}
	if overlay.Readiness.ProbeTimeout != 0 {
		merged.Readiness.ProbeTimeout = overlay.Readiness.ProbeTimeout
	}

	if overlay.Output.MaxLines != 0 {
		merged.Output.MaxLines = overlay.Output.MaxLines
	}
	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}

	return merged
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfigFromPath layers a single explicit file over the defaults,
// skipping the user and project locations. The file must exist.
func LoadConfigFromPath(filePath string) (KubelConfig, error) {
	overlay, err := loadConfigFromFile(filePath)
	if err != nil {
		return KubelConfig{}, fmt.Errorf("error loading config from %s: %w", filePath, err)
	}
	return mergeConfigs(GetDefaultConfig(), overlay), nil
}
