// Package app is the composition root of wait-for-rs.
//
// Run performs, in order:
//
//  1. Load the config file (internal/config) and apply command line Overrides
//  2. Validate the handshake options; nothing touches the network on error
//  3. Configure the global zerolog logger (internal/logging)
//  4. Either run the handshake and print the server version, or hand over
//     to the watch UI (internal/ui) when Options.Watch is set
//  5. When monitoring is enabled, print "connected" / "disconnected" lines
//     for each transition until ctx is cancelled, then stop the monitor
//
// Progress is logged once per failed attempt at info level. In watch mode
// the log goes to a file, since the terminal belongs to the UI; the UI tails
// that file.
//
// # Components
//
//   - app.go: Run, Overrides and the watch mode wiring
//   - events.go: printing monitor transitions until shutdown
package app
