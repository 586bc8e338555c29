// Package config provides configuration management for kubel.
//
// Configuration is loaded from three layers, later layers overriding
// earlier ones field by field:
//
//  1. Defaults compiled into the binary (see GetDefaultConfig)
//  2. User configuration (~/.config/kubel/config.yaml)
//  3. Project configuration (./.kubel/config.yaml)
//
// Missing files are skipped. A file that exists but fails to parse is an
// error.
//
// # Configuration Structure
//
//	kubectl:
//	  binary: kubectl
//	  context: my-cluster
//	  namespace: default
//	proxy:
//	  port: 8001
//	readiness:
//	  retryCount: 5
//	  retryWait: 2s
//	  probeTimeout: 3s
//	output:
//	  maxLines: 10000
//	logging:
//	  level: info
package config
