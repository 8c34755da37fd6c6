// Package ui provides the terminal dashboard for gabbwatch.
//
// # Architecture Overview
//
// The UI package implements a TUI (Terminal User Interface) using the Bubble
// Tea framework with Lipgloss styling, styled after k9s for a familiar
// dashboard experience. The interface is read-mostly: it renders watch and
// event data out of state.Store, and its only write path is the on-demand
// locate request sent through the FiLIP client.
//
// # Package Structure
//
// The package is organized into focused modules:
//
//   - app.go: Model definition, Update loop, messages, commands, and the main Run function
//   - devices.go: Device table, detail pane, and titled box rendering
//   - events.go: Event log viewport rendering and scrolling
//   - header.go: Status header, command bar, and connection error display
//   - help.go: Keyboard shortcut overlay
//   - keys.go: Key binding definitions
//   - theme.go: Theme definitions and style construction
//   - style_helpers.go: Background-safe text rendering helpers
//
// # View Types
//
// Two main views are available:
//
//   - Devices View: Split layout with a watch table (ID, name, battery,
//     presence) and a detail pane (status, last GPS fix, recent events)
//   - Event Log View: Scrollable viewport of account notifications, newest
//     first, color coded by event type
//
// # Key Features
//
//   - Real-time updates: A UI tick re-reads state.Store once per second,
//     independent of the poller's fetch cadence
//   - Locate on demand: "r" asks the service to refresh the selected watch's
//     GPS fix; the new position arrives through a later poll
//   - Connection awareness: The header switches to a retry banner with a
//     classified error and the log file path when the service is unreachable
//   - Color coding: k9s-inspired themes (Dracula, Slate) with per-status and
//     per-event-type colors; "T" cycles themes and persists the choice
//
// # Event Flow
//
//  1. Run() builds the Model and starts the Bubble Tea program in the
//     alternate screen
//  2. tickMsg fires once per tick and schedules a snapshot read
//  3. snapshotMsg carries the latest state.Snapshot into the Model, which
//     re-renders the device table and event viewport
//  4. Key input mutates selection, focus, view, or theme
//  5. Context cancellation or a quit key cleanly shuts down the program
//
// # External Dependencies
//
//   - state.Store: Provides watch and event snapshots from the poller
//   - gabb.Client: Sends locate requests
//   - config: Persists theme preference between runs
//
// # Usage Example
//
//	opts := ui.Options{
//		Context:   ctx,
//		Client:    client,
//		Store:     store,
//		ThemeName: prefs.Theme,
//		PrefsPath: prefsPath,
//		LogPath:   cfg.LogPath,
//	}
//	if err := ui.Run(opts); err != nil {
//		log.Fatal(err)
//	}
//
// # Key Bindings
//
//   - d: Devices view
//   - l: Event log view
//   - Tab / Shift+Tab: Cycle focus (table, detail, event log)
//   - j/k: Move selection or scroll
//   - g/G: Jump to top/bottom
//   - Ctrl+d / Ctrl+u: Half page down/up (event log)
//   - r: Request a locate for the selected watch
//   - T: Cycle theme
//   - h or ?: Toggle help overlay
//   - ESC: Return to devices view
//   - e or Ctrl+C: Exit
//
// # Design Principles
//
//   - Store-driven rendering: The UI never fetches account data itself; the
//     poller owns the API session and the UI reads snapshots
//   - Stale over blank: The last good snapshot stays on screen during
//     outages, with the header carrying the error state
//   - Single operator: No multi-user or in-app authentication support
package ui
