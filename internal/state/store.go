package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot represents the latest connectivity data available to the UI.
type Snapshot struct {
	Version             string
	Connectable         bool
	HasProbe            bool
	Probes              int
	LastProbe           time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed probes
	Transitions         int
	LastChange          time.Time
}

// IsOffline returns true when the last probe could not reach the server.
func (s Snapshot) IsOffline() bool {
	return s.HasProbe && !s.Connectable
}

// Store coordinates concurrent updates to the snapshot. The zero value starts
// as connectable, matching a monitor that begins right after a handshake.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	started  bool
}

// SetVersion records the version reported by the handshake.
func (s *Store) SetVersion(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	s.snapshot.Version = version
}

// Record stores the outcome of one probe. err is kept for display only.
func (s *Store) Record(connectable bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	now := time.Now()
	if connectable != s.snapshot.Connectable {
		s.snapshot.Transitions++
		s.snapshot.LastChange = now
	}
	s.snapshot.Connectable = connectable
	s.snapshot.HasProbe = true
	s.snapshot.Probes++
	s.snapshot.LastProbe = now
	s.snapshot.LastError = err
	if connectable {
		s.snapshot.ConsecutiveFailures = 0
	} else {
		s.snapshot.ConsecutiveFailures++
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if !s.started {
		snap.Connectable = true
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) init() {
	if s.started {
		return
	}
	s.started = true
	s.snapshot.Connectable = true
}
