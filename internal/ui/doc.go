// Package ui implements the --watch terminal view of wait-for-rs.
//
// The view is a single Bubble Tea model. Run starts the program and, on a
// separate goroutine, the handshake supplied as Options.Connect. Everything
// the handshake produces reaches the model as a message:
//
//   - progressMsg for every failed attempt
//   - resultMsg once, with the version or the terminal error
//   - connectivityMsg for each connected/disconnected edge of the monitor
//
// A periodic tick pulls the monitor's state.Snapshot and the tail of the log
// file, so probe counters stay current between transitions.
//
// # Layout
//
//	header   program name, target URL, theme
//	status   spinner and attempt n/N while connecting,
//	         version, badge, counters and recent transitions once connected
//	log      last lines of the log file, colored by level
//	footer   key help
//
// # Keys
//
//	q, ctrl+c  quit; stops the monitor
//	t          cycle theme (saved to prefs)
//	?          toggle full help (saved to prefs)
//	j/k        scroll the log
//
// After a failed handshake any key exits and Run returns the handshake error.
package ui
