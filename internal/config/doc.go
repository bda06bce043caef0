// Package config provides user configuration management for fonbook.
//
// This package manages a YAML configuration file holding named box profiles
// (host, username, transport options) and application preferences. The file
// follows OS-specific conventions for its location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/fonbook/config.yaml or $HOME/.config/fonbook/config.yaml
//   - macOS: $HOME/.config/fonbook/config.yaml
//   - Windows: %LOCALAPPDATA%\fonbook\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores box passwords. The command line
// tool reads them from --password, FONBOOK_PASSWORD or an interactive prompt.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetProfile("home", &config.Profile{Host: "192.168.178.1"})
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File writes are protected by a mutex and replace the file atomically.
package config
