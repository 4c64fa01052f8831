// Package handshake waits for a RealityServer to become available.
//
// # Overview
//
// One attempt is the full UAC handshake, always in this order:
//
//  1. GET /uac/create/ opens a session
//  2. POST / runs get_version inside that session
//  3. GET /uac/destroy/ closes the session
//
// A step only runs after the previous one succeeded. Any failure (transport
// error, timeout, HTTP error, a version that is not a string) fails the whole
// attempt, and the next attempt starts again at step 1 so no session is left
// half open.
//
// # Retry Policy
//
// Options.NumRetries is the total number of attempts. After every failed
// attempt the progress callback receives the retries still remaining, then
// the handshake waits Options.RetryInterval. With NumRetries = 3 and a dead
// host, progress sees 2, 1, 0 and the caller gets ErrRetryLimit. Individual
// attempt errors are only logged; callers never see them.
//
// # Calling Conventions
//
// Run blocks and returns the outcome. Start runs in the background and
// delivers the outcome either to a done callback or, when done is nil,
// through a Future:
//
//	// blocking
//	res, err := handshake.Run(ctx, "render01", 8080, nil, nil)
//
//	// callback
//	_, err := handshake.Start("render01", 8080, &opts, func(res *handshake.Result, err error) {
//		...
//	}, onProgress)
//
//	// future
//	f, err := handshake.Start("render01", 8080, &opts, nil, onProgress)
//	res, err := f.Wait(ctx)
//
// In every case invalid options are reported straight away, before any
// request, and the outcome is delivered exactly once.
//
// # Monitoring
//
// When Options.MonitorFrequency is positive the Result carries a
// monitor.Monitor that shares the handshake's client. It is idle until
// Result.Start, so handlers subscribed in between see every transition:
//
//	_ = res.Monitor.Subscribe(monitor.EventDisconnected, onLost)
//	res.Start()
//	defer res.Stop()
//
// Callers own the monitor and must call Result.Stop when they are done.
package handshake
