// Package state provides thread-safe state management for gabbwatch.
//
// # Overview
//
// This package implements a simple but thread-safe store for sharing the
// account's device map and event log between the background poller and the
// UI. It acts as the coordination point where polling updates meet UI
// rendering.
//
// # Architecture
//
// The package follows a producer-consumer pattern:
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌────────────────┐
//	│ client.Map()   │            │                │
//	│ client.Events()│            │                │
//	│      ↓         │            │                │
//	│ store.Update() │───────────→│ store.Snapshot()│
//	│      ↓         │  (mutex)   │      ↓         │
//	│  repeat...     │            │  render UI     │
//	└────────────────┘            └────────────────┘
//
// The Store mediates between these two independent goroutines, ensuring:
//   - Atomic updates (no partial/torn reads)
//   - No data races (mutex-protected access)
//   - Immutable snapshots (defensive copying)
//
// # Update Semantics
//
// The Update method has special error handling behavior:
//
//	// Success case: Replace devices and events
//	store.Update(devices, events, nil)
//	→ snapshot.Devices = devices
//	→ snapshot.Events = events
//	→ snapshot.HasData = true
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Error case: Keep old data, record error
//	store.Update(nil, nil, err)
//	→ snapshot.Devices = <unchanged>
//	→ snapshot.Events = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// This ensures the UI always has the most recent successful data to display,
// while also being informed of polling failures. IsOffline reports when two
// or more polls in a row have failed, which the UI surfaces as a degraded
// connection rather than flashing an error on every transient hiccup.
//
// # Defensive Copying
//
// Both Update and Snapshot clone the device and event slices and copy the
// error value, so the poller and the UI can never mutate each other's view.
// An account has a handful of watches and a bounded event log, so the cost
// is negligible.
//
// # Testing Considerations
//
// The Store is safe to construct with zero value:
//
//	store := &state.Store{}  // Ready to use immediately
//
// Snapshot() returns a zero Snapshot (HasData false) if never updated.
package state
