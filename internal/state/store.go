package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/gabbwatch/gabb"
)

// Snapshot represents the latest account data available to the UI.
type Snapshot struct {
	Devices             []gabb.MapDevice
	Events              []gabb.Event
	HasData             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the service has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(devices []gabb.MapDevice, events []gabb.Event, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Devices = cloneDevices(devices)
	s.snapshot.Events = cloneEvents(events)
	s.snapshot.HasData = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Devices = cloneDevices(s.snapshot.Devices)
	snap.Events = cloneEvents(s.snapshot.Events)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneDevices(devices []gabb.MapDevice) []gabb.MapDevice {
	if len(devices) == 0 {
		return nil
	}
	dup := make([]gabb.MapDevice, len(devices))
	copy(dup, devices)
	return dup
}

func cloneEvents(events []gabb.Event) []gabb.Event {
	if len(events) == 0 {
		return nil
	}
	dup := make([]gabb.Event, len(events))
	copy(dup, events)
	return dup
}
