// Package monitor keeps watching a RealityServer after the handshake.
//
// A Monitor probes GET / every Options.Frequency and tracks one bit of state:
// whether the server was reachable at the last probe. It starts out
// connectable, because it only exists after a successful handshake.
//
// Events are edge-triggered. A failed probe while connectable publishes
// EventDisconnected; a successful probe while not connectable publishes
// EventConnected; a probe that confirms the current state publishes nothing.
// Events carry no payload and the monitor never reports why a probe failed.
//
//	mon, _ := monitor.New(client, monitor.Options{Frequency: 500 * time.Millisecond}, nil)
//	_ = mon.Subscribe(monitor.EventDisconnected, func() { log.Print("lost server") })
//	mon.Start()
//	defer mon.Shutdown(context.Background())
//
// Probes run on the monitor goroutine one at a time, so a degraded network
// never piles up concurrent requests. Stop cancels the probe in flight and
// its result is discarded. Stop is safe inside a handler and never blocks;
// Shutdown also waits for a handler that is still running.
package monitor
