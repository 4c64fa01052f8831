// Package config loads the wait-for-rs configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/wait-for-rs/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. Keys missing from the file keep their defaults
//
// Command line flags are applied on top of the loaded Config by the app
// package.
//
// # TOML Format
//
//	host = "render01"
//	port = 8080
//	num_retries = 10
//	retry_interval_ms = 1000
//	request_timeout_ms = 2500
//	monitor_frequency_ms = 0
//	secure = false
//	insecure_skip_verify = false
//
//	[log]
//	level = "info"
//	file = "~/.local/state/wait-for-rs/wait-for-rs.log"
//
// Durations are whole milliseconds. A key that is present is taken as
// written: num_retries = 0 is not replaced by the default, it is rejected by
// handshake validation before any request is sent.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files and TOML
// syntax errors ("parse config: ..."). A missing file is not an error.
package config
