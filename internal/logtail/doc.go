// Package logtail follows the wait-for-rs log file for the watch UI.
//
// A Tail remembers the byte offset it has read up to, so each Refresh only
// reads what was appended since the last call and keeps at most maxLines in
// memory. An unterminated final line is held back until its newline arrives.
// When the file shrinks it is assumed to have been rotated and is read again
// from the start.
//
// Read is the one-shot form:
//
//	lines, err := logtail.Read(path, 200)
//
// A missing file is not an error; it yields no lines.
//
// LevelOf classifies lines written by zerolog's console writer (INF, WRN,
// ERR, ...) so the UI can color them.
package logtail
