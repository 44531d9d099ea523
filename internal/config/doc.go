// Package config provides user configuration management for wsclient.
//
// This package manages a YAML-based configuration file that stores saved
// WebSocket endpoints (URL, extra handshake headers, connect timeout) and
// client preferences. The configuration follows OS-specific conventions for
// storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/wsclient/config.yaml or $HOME/.config/wsclient/config.yaml
//   - macOS: $HOME/.config/wsclient/config.yaml
//   - Windows: %LOCALAPPDATA%\wsclient\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetEndpointURL("home", "ws://192.168.1.20:8080/events")
//	registry.SetEndpointHeader("home", "Authorization", "Bearer abc")
//
//	url, header, err := registry.ResolveURL("home")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
