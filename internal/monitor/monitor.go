package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	eventbus "github.com/mysteriumnetwork/EventBus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/migenius/wait-for-realityserver/internal/realityserver"
	"github.com/migenius/wait-for-realityserver/internal/state"
)

// Event names a connectivity transition.
type Event string

const (
	// EventConnected fires when the server becomes reachable again.
	EventConnected Event = "connected"
	// EventDisconnected fires when a probe fails while the server was reachable.
	EventDisconnected Event = "disconnected"
)

// ErrUnknownEvent is returned by Subscribe for anything but the two events.
var ErrUnknownEvent = errors.New("unknown monitor event")

const defaultRequestTimeout = 2500 * time.Millisecond

// Options configure a Monitor.
type Options struct {
	Frequency      time.Duration
	RequestTimeout time.Duration
	// Version is the server version captured by the handshake.
	Version string
}

// Monitor polls a server and publishes edge-triggered connectivity events.
type Monitor struct {
	prober realityserver.Prober
	opts   Options
	store  *state.Store
	bus    eventbus.Bus
	logger zerolog.Logger

	mu          sync.Mutex
	connectable bool

	ctx       context.Context
	cancel    context.CancelFunc
	stopped   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// New builds a Monitor. It does not poll until Start is called. A nil store
// gets a private one.
func New(prober realityserver.Prober, opts Options, store *state.Store) (*Monitor, error) {
	if prober == nil {
		return nil, fmt.Errorf("monitor requires a prober")
	}
	if opts.Frequency <= 0 {
		return nil, fmt.Errorf("monitor frequency must be positive, got %v", opts.Frequency)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if store == nil {
		store = &state.Store{}
	}
	store.SetVersion(opts.Version)

	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		prober:      prober,
		opts:        opts,
		store:       store,
		bus:         eventbus.New(),
		logger:      log.With().Str("component", "monitor").Logger(),
		connectable: true,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}, nil
}

// Start launches the polling goroutine. It returns immediately and has no
// effect after the first call or after Stop.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		if m.stopped.Load() {
			close(m.done)
			return
		}
		m.logger.Debug().Dur("frequency", m.opts.Frequency).Msg("Connectivity monitor started")
		go m.run()
	})
}

// Stop halts polling permanently. It is safe to call more than once and from
// inside an event handler. Once Stop returns no handler is dispatched again,
// even for a probe that was already in flight. Stop does not wait for a
// handler that is already running; use Shutdown for that.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		m.stopped.Store(true)
		m.cancel()
		m.startOnce.Do(func() { close(m.done) })
		m.logger.Debug().Msg("Connectivity monitor stopped")
	})
}

// Shutdown stops the monitor and waits until the polling goroutine, and any
// handler it was running, has returned or ctx is done. It must not be called
// from an event handler.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.Stop()
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("monitor shutdown: %w", ctx.Err())
	}
}

// Done is closed once the polling goroutine has exited. Handlers run on that
// goroutine, so none is running after Done is closed.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Subscribe registers fn for event. Handlers run on the monitor goroutine, in
// subscription order, and must not call Subscribe themselves.
func (m *Monitor) Subscribe(event Event, fn func()) error {
	if event != EventConnected && event != EventDisconnected {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if fn == nil {
		return fmt.Errorf("handler for %q is nil", event)
	}
	return m.bus.Subscribe(string(event), func() {
		if m.stopped.Load() {
			return
		}
		fn()
	})
}

// Version returns the server version captured at handshake time.
func (m *Monitor) Version() string {
	return m.opts.Version
}

// Connectable reports the last known reachability.
func (m *Monitor) Connectable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectable
}

// Store exposes the snapshot store the monitor writes to.
func (m *Monitor) Store() *state.Store {
	return m.store
}

func (m *Monitor) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.opts.Frequency)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			// Inline: at most one probe is in flight.
			m.probe()
		}
	}
}

func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(m.ctx, m.opts.RequestTimeout)
	err := m.prober.Ping(ctx)
	cancel()

	if m.ctx.Err() != nil {
		return
	}
	if event, changed := m.observe(err); changed {
		m.emit(event)
	}
}

// observe folds one probe result into the monitor state and reports the
// event to publish, if any.
func (m *Monitor) observe(err error) (Event, bool) {
	reachable := err == nil

	m.mu.Lock()
	previous := m.connectable
	m.connectable = reachable
	m.mu.Unlock()

	m.store.Record(reachable, err)

	switch {
	case previous && !reachable:
		m.logger.Warn().Err(err).Msg("RealityServer disconnected")
		return EventDisconnected, true
	case !previous && reachable:
		m.logger.Info().Msg("RealityServer connected")
		return EventConnected, true
	default:
		m.logger.Trace().Bool("connectable", reachable).Msg("Probe unchanged")
		return "", false
	}
}

func (m *Monitor) emit(event Event) {
	if m.stopped.Load() {
		return
	}
	m.bus.Publish(string(event))
}
