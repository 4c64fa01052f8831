package handshake

import (
	"context"
	"time"

	"github.com/migenius/wait-for-realityserver/internal/monitor"
)

// Result is delivered once the handshake succeeded.
type Result struct {
	Version string
	// Monitor is nil unless MonitorFrequency was positive.
	Monitor *monitor.Monitor
}

// Monitoring reports whether the result carries a monitor.
func (r *Result) Monitoring() bool {
	return r != nil && r.Monitor != nil
}

// Start starts polling, if there is a monitor. Subscribe first: transitions
// before Start cannot happen, later ones reach every handler registered so far.
func (r *Result) Start() {
	if r.Monitoring() {
		r.Monitor.Start()
	}
}

// Stop stops the monitor, if any, and waits for a handler that is still
// running. Handlers call Monitor.Stop instead.
func (r *Result) Stop() {
	if r.Monitoring() {
		_ = r.Monitor.Shutdown(context.Background())
	}
}

// Progress is reported once per failed attempt.
type Progress struct {
	NumRetries       int
	RetriesRemaining int
	RetryInterval    time.Duration
}

// ProgressFunc receives progress reports. It runs on the handshake goroutine.
type ProgressFunc func(Progress)
