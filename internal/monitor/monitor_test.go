package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migenius/wait-for-realityserver/internal/state"
)

var errRefused = errors.New("connection refused")

// scriptedProber hands out one scripted result per Ping and then blocks until
// the probe context ends.
type scriptedProber struct {
	results chan error
	calls   atomic.Int32
}

func newScriptedProber(results ...error) *scriptedProber {
	p := &scriptedProber{results: make(chan error, len(results))}
	for _, r := range results {
		p.results <- r
	}
	return p
}

func (p *scriptedProber) Ping(ctx context.Context) error {
	p.calls.Add(1)
	select {
	case err := <-p.results:
		return err
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

type funcProber func(ctx context.Context) error

func (f funcProber) Ping(ctx context.Context) error { return f(ctx) }

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) subscribe(t *testing.T, m *Monitor) {
	t.Helper()
	for _, ev := range []Event{EventConnected, EventDisconnected} {
		ev := ev
		require.NoError(t, m.Subscribe(ev, func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, ev)
		}))
	}
}

func (r *eventRecorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Options{Frequency: time.Second}, nil)
	assert.Error(t, err)

	_, err = New(newScriptedProber(), Options{}, nil)
	assert.Error(t, err)

	m, err := New(newScriptedProber(), Options{Frequency: time.Second, Version: "6.2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "6.2", m.Version())
	assert.True(t, m.Connectable())
	assert.Equal(t, "6.2", m.Store().Snapshot().Version)
}

func TestSubscribe_RejectsUnknownEvent(t *testing.T) {
	m, err := New(newScriptedProber(), Options{Frequency: time.Second}, nil)
	require.NoError(t, err)

	err = m.Subscribe("reconnecting", func() {})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	err = m.Subscribe(EventConnected, nil)
	assert.Error(t, err)
}

func TestObserve_EdgeTriggered(t *testing.T) {
	// given
	m, err := New(newScriptedProber(), Options{Frequency: time.Second}, nil)
	require.NoError(t, err)

	outcomes := []error{nil, nil, errRefused, errRefused, nil}
	var got []Event

	// when
	for _, outcome := range outcomes {
		if ev, changed := m.observe(outcome); changed {
			got = append(got, ev)
		}
	}

	// then
	assert.Equal(t, []Event{EventDisconnected, EventConnected}, got)
	assert.True(t, m.Connectable())
	snap := m.Store().Snapshot()
	assert.Equal(t, 5, snap.Probes)
	assert.Equal(t, 2, snap.Transitions)
}

func TestMonitor_EmitsOnlyOnTransitions(t *testing.T) {
	// given
	prober := newScriptedProber(nil, nil, errRefused, errRefused, nil)
	store := &state.Store{}
	m, err := New(prober, Options{Frequency: 5 * time.Millisecond, RequestTimeout: time.Minute}, store)
	require.NoError(t, err)
	rec := &eventRecorder{}
	rec.subscribe(t, m)

	// when
	m.Start()
	t.Cleanup(m.Stop)

	// the sixth call blocks, so five outcomes have been processed
	require.Eventually(t, func() bool { return prober.calls.Load() >= 6 }, 2*time.Second, time.Millisecond)
	m.Stop()
	<-m.Done()

	// then
	assert.Equal(t, []Event{EventDisconnected, EventConnected}, rec.snapshot())
	snap := store.Snapshot()
	assert.Equal(t, 5, snap.Probes)
	assert.True(t, snap.Connectable)
}

func TestMonitor_AlternatingProbesAlternateEvents(t *testing.T) {
	var calls atomic.Int32
	prober := funcProber(func(ctx context.Context) error {
		if calls.Add(1)%2 == 1 {
			return errRefused
		}
		return nil
	})
	m, err := New(prober, Options{Frequency: 5 * time.Millisecond}, nil)
	require.NoError(t, err)
	rec := &eventRecorder{}
	rec.subscribe(t, m)

	m.Start()
	t.Cleanup(m.Stop)

	require.Eventually(t, func() bool { return len(rec.snapshot()) >= 4 }, 2*time.Second, time.Millisecond)
	m.Stop()
	<-m.Done()

	events := rec.snapshot()
	for i, ev := range events {
		want := EventDisconnected
		if i%2 == 1 {
			want = EventConnected
		}
		assert.Equal(t, want, ev, "event %d", i)
	}
}

func TestMonitor_StopDiscardsInFlightProbe(t *testing.T) {
	// given
	release := make(chan struct{})
	var calls atomic.Int32
	prober := funcProber(func(ctx context.Context) error {
		calls.Add(1)
		<-release
		return errRefused
	})
	m, err := New(prober, Options{Frequency: 5 * time.Millisecond, RequestTimeout: time.Minute}, nil)
	require.NoError(t, err)
	rec := &eventRecorder{}
	rec.subscribe(t, m)

	m.Start()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, time.Millisecond)

	// when
	m.Stop()
	close(release)

	// then
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("monitor goroutine did not exit after Stop")
	}
	assert.Empty(t, rec.snapshot())
	assert.Equal(t, int32(1), calls.Load(), "stopped monitor must not re-arm")
	assert.True(t, m.Connectable())
}

func TestMonitor_StopFromHandler(t *testing.T) {
	m, err := New(newScriptedProber(errRefused, nil), Options{Frequency: 5 * time.Millisecond}, nil)
	require.NoError(t, err)

	var connected atomic.Bool
	require.NoError(t, m.Subscribe(EventDisconnected, m.Stop))
	require.NoError(t, m.Subscribe(EventConnected, func() { connected.Store(true) }))

	m.Start()
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Stop from a handler did not stop the monitor")
	}
	assert.False(t, connected.Load())
}

func TestMonitor_StopSkipsHandlersNotYetDispatched(t *testing.T) {
	// given: two handlers for the same event, the first one blocks
	m, err := New(newScriptedProber(errRefused), Options{Frequency: 5 * time.Millisecond}, nil)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	var second atomic.Bool
	require.NoError(t, m.Subscribe(EventDisconnected, func() {
		close(entered)
		<-release
	}))
	require.NoError(t, m.Subscribe(EventDisconnected, func() { second.Store(true) }))

	m.Start()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first handler never ran")
	}

	// when
	m.Stop()
	close(release)

	// then
	require.NoError(t, m.Shutdown(context.Background()))
	assert.False(t, second.Load(), "handler dispatched after Stop returned")
}

func TestMonitor_ShutdownWaitsForRunningHandler(t *testing.T) {
	// given
	m, err := New(newScriptedProber(errRefused), Options{Frequency: 5 * time.Millisecond}, nil)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, m.Subscribe(EventDisconnected, func() {
		close(entered)
		<-release
		finished.Store(true)
	}))

	m.Start()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}

	// when
	shutdown := make(chan error, 1)
	go func() { shutdown <- m.Shutdown(context.Background()) }()

	// then
	select {
	case <-shutdown:
		t.Fatal("Shutdown returned while a handler was still running")
	case <-time.After(30 * time.Millisecond):
	}
	close(release)
	select {
	case err := <-shutdown:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return after the handler finished")
	}
	assert.True(t, finished.Load())
}

func TestMonitor_ShutdownHonoursContext(t *testing.T) {
	m, err := New(newScriptedProber(errRefused), Options{Frequency: 5 * time.Millisecond}, nil)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	require.NoError(t, m.Subscribe(EventDisconnected, func() {
		close(entered)
		<-release
	}))
	m.Start()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = m.Shutdown(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMonitor_StopIsIdempotentAndStartAfterStopIsInert(t *testing.T) {
	prober := newScriptedProber()
	m, err := New(prober, Options{Frequency: time.Millisecond}, nil)
	require.NoError(t, err)

	m.Stop()
	m.Stop()
	m.Start()

	select {
	case <-m.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed for a monitor stopped before Start")
	}
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), prober.calls.Load())
}

func TestMonitor_ProbesNeverOverlap(t *testing.T) {
	var inFlight, maxInFlight, calls atomic.Int32
	prober := funcProber(func(ctx context.Context) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	m, err := New(prober, Options{Frequency: time.Millisecond}, nil)
	require.NoError(t, err)

	m.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, time.Millisecond)
	m.Stop()
	<-m.Done()

	assert.Equal(t, int32(1), maxInFlight.Load())
}
