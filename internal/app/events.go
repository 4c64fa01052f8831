package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/migenius/wait-for-realityserver/internal/monitor"
)

// eventSource is the part of *monitor.Monitor followEvents needs.
type eventSource interface {
	Subscribe(event monitor.Event, fn func()) error
	Start()
	Shutdown(ctx context.Context) error
}

var _ eventSource = (*monitor.Monitor)(nil)

// followEvents subscribes, starts the monitor and prints one line per
// connectivity transition until ctx is done. It returns once the monitor
// has stopped and no handler is left writing to out.
func followEvents(ctx context.Context, src eventSource, out io.Writer) error {
	defer func() { _ = src.Shutdown(context.WithoutCancel(ctx)) }()

	var mu sync.Mutex
	for _, event := range []monitor.Event{monitor.EventConnected, monitor.EventDisconnected} {
		event := event
		if err := src.Subscribe(event, func() {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(out, event)
		}); err != nil {
			return fmt.Errorf("subscribe %s: %w", event, err)
		}
	}
	src.Start()

	<-ctx.Done()
	return nil
}
