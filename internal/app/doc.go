// Package app provides the orchestration layer for the gabbwatch application.
//
// # Overview
//
// This package wires together configuration, the FiLIP API client, polling,
// state management, and the UI to create the complete gabbwatch TUI
// experience. It serves as the composition root where all dependencies are
// initialized and connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Load configuration from ~/.config/gabbwatch/config.toml and the
//     GABB_* environment variables
//  2. Open the log file and build the application logger
//  3. Initialize the gabb client for FiLIP API communication
//  4. Authenticate once up front so bad credentials fail fast
//  5. Create shared state.Store for UI and poller coordination
//  6. Populate the store, then launch the background poller goroutine
//  7. Start the TUI and block until user exits or context cancels
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      Read config file + env credentials
//	       ├─────> gabb.New()         Create FiLIP API client
//	       ├─────> Authenticate()     Pre-flight credential exchange
//	       ├─────> state.Store{}      Shared state container
//	       ├─────> refresh()          Populate store before first frame
//	       ├─────> StartPoller()      Launch background updates
//	       └─────> ui.Run()           Start TUI (blocks)
//
//	Background Poller Loop:
//	┌─────────────────────────────────────────┐
//	│ StartPoller() goroutine                 │
//	│  ├─> Map()                              │
//	│  ├─> Events()                           │
//	│  └─> store.Update()  (atomic)           │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// The poller runs continuously in the background at a configurable interval
// (default: 30 seconds). On each tick:
//
//   - Fetches the device map from the FiLIP API
//   - Fetches the event log from the FiLIP API
//   - Updates the shared state.Store atomically
//   - Logs errors but continues polling on failure
//
// While polls keep failing the interval doubles per consecutive failure, up
// to a five minute cap, so a dead service is not hammered at full cadence.
// The UI reads snapshots from the store at its own refresh rate (one second),
// which keeps it responsive even during slow API calls.
//
// # Session Recovery
//
// The gabb client never renews its session on its own: once the service stops
// honoring the access token, resource calls fail with
// *gabb.SessionExpiredError until someone acts. The poller is that someone.
// On an expired session it:
//
//  1. Calls RefreshSession to trade the refresh token for a new session
//  2. Falls back to Authenticate when the refresh token is rejected too
//  3. Retries the fetch once after a successful recovery
//
// When both recovery steps fail the error lands in the store like any other
// poll failure and the next cycle tries again, backed off.
//
// # Error Handling
//
// The app package distinguishes between fatal and recoverable errors:
//
// Fatal errors (returned from Run):
//   - Configuration file invalid or credentials missing
//   - Client initialization failure
//   - Initial credential exchange rejected
//
// Recoverable errors (logged, polling continues):
//   - Periodic map or event fetch failures
//   - Expired or revoked sessions
//   - Network timeouts during polling
//
// This ensures gabbwatch survives temporary service outages and session
// expiry while refusing to start against credentials that can never work.
//
// # Configuration
//
// The Options struct allows callers to customize:
//
//   - ConfigPath: Path to config.toml (default: ~/.config/gabbwatch/config.toml)
//   - PrefsPath: Path to prefs.toml (default: ~/.config/gabbwatch/prefs.toml)
//   - PollEvery: Polling interval in seconds (default: 30 seconds)
//
// # Usage Example
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	opts := app.Options{
//		ConfigPath: "", // Use default
//		PollEvery:  30, // 30 second polling
//	}
//
//	if err := app.Run(ctx, opts); err != nil {
//		log.Fatalf("gabbwatch failed: %v", err)
//	}
//
// # Dependencies
//
//   - config: Loads configuration files, credentials and theme preferences
//   - gabb: Typed client for the FiLIP REST service
//   - state: Thread-safe state container for device and event data
//   - ui: Terminal user interface (TUI) implementation
//
// # Design Rationale
//
// This package intentionally keeps orchestration logic minimal and focused.
// Business logic lives in the gabb client and the domain packages (config,
// state, ui). The app package simply connects these pieces with sensible
// defaults for the single-account monitoring use case.
package app
