// Package state holds the connectivity snapshot shared between the monitor
// and the watch UI.
//
// The monitor is the single writer: it calls Record after every probe. The UI
// reads copies through Snapshot on its own tick. A sync.RWMutex guards the
// snapshot; the lock is never held during network I/O or rendering.
//
// A zero Store is ready to use and reports Connectable, because a monitor
// only exists after a successful handshake. Transitions counts edges, not
// probes: two failed probes in a row are one transition.
package state
