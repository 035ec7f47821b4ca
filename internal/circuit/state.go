// Package circuit holds the one-way offline flag guarding the remote store.
package circuit

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Status of the remote store circuit
type Status int

const (
	// Online means remote calls are attempted
	Online Status = iota
	// Offline means remote calls are skipped until restart
	Offline
)

// String returns string representation of the status
func (s Status) String() string {
	switch s {
	case Online:
		return "ONLINE"
	case Offline:
		return "OFFLINE"
	default:
		return "UNKNOWN"
	}
}

// OfflineCallback is called once when the circuit goes offline
type OfflineCallback func(reason error)

// State is the process-wide circuit for one remote dependency. It only moves
// from Online to Offline; nothing resets it.
type State struct {
	name      string
	offline   atomic.Bool
	trippedAt atomic.Int64
	logger    *logrus.Logger

	mu        sync.Mutex
	callbacks []OfflineCallback
}

// NewState creates an online circuit for the named dependency
func NewState(name string, logger *logrus.Logger) *State {
	return &State{name: name, logger: logger}
}

// OnOffline registers a callback fired on the Online to Offline transition
func (s *State) OnOffline(cb OfflineCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// MarkOffline trips the circuit. Concurrent and repeated calls are harmless;
// only the first one logs and fires callbacks.
func (s *State) MarkOffline(reason error) {
	if !s.offline.CompareAndSwap(false, true) {
		return
	}
	s.trippedAt.Store(time.Now().UnixNano())

	fields := logrus.Fields{
		"dependency": s.name,
		"old_state":  Online.String(),
		"new_state":  Offline.String(),
	}
	if reason != nil {
		fields["reason"] = reason.Error()
	}
	s.logger.WithFields(fields).Warn("Remote store unreachable, switching to offline mode")

	s.mu.Lock()
	callbacks := append([]OfflineCallback(nil), s.callbacks...)
	s.mu.Unlock()
	for _, cb := range callbacks {
		cb(reason)
	}
}

// IsOffline reports whether the circuit has tripped
func (s *State) IsOffline() bool {
	return s.offline.Load()
}

// Status returns the current status
func (s *State) Status() Status {
	if s.IsOffline() {
		return Offline
	}
	return Online
}

// TrippedAt returns when the circuit went offline, zero while online
func (s *State) TrippedAt() time.Time {
	ns := s.trippedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Name returns the guarded dependency name
func (s *State) Name() string {
	return s.name
}
