// Package config handles loading gabbwatch configuration and preferences.
//
// # Overview
//
// Configuration is split across three sources with different trust levels:
//
//   - The TOML config file carries connection and behavior settings
//     (base URL, poll interval, log path).
//   - The environment carries the account credentials (GABB_USERNAME,
//     GABB_PASSWORD, optional GABB_APP_BUILD). Credentials never live in a
//     file this package reads.
//   - The preferences file carries UI choices the app rewrites on its own
//     (currently the theme).
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/gabbwatch/config.toml
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// Credentials have no fallback: a missing GABB_USERNAME or GABB_PASSWORD is
// a hard error, because the dashboard cannot authenticate without them.
//
// # Default Values
//
//   - Config file: ~/.config/gabbwatch/config.toml
//   - Poll interval: 30s (the service is a remote API, not a local daemon)
//   - Log file: ~/.local/share/gabbwatch/gabbwatch.log
//   - Base URL: empty (the client library applies its production default)
//   - Preferences file: ~/.config/gabbwatch/prefs.toml
//
// # TOML Format
//
// Example config.toml:
//
//	base_url = "https://api.myfilip.com/"
//	poll_interval = "30s"
//	log_path = "~/.local/share/gabbwatch/gabbwatch.log"
//
// All fields are optional. poll_interval takes any time.ParseDuration string
// and must be positive. Tilde expansion is performed on paths.
//
// # Preferences
//
// LoadPrefs and SavePrefs manage the small rewritable preferences file.
// Unlike Load, LoadPrefs never fails: a missing or corrupt prefs file
// degrades to defaults so a bad write can never keep the dashboard from
// starting.
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML parse failures, bad poll
// intervals, and missing credentials. A missing config file is NOT an error;
// defaults are used instead so gabbwatch works with nothing but two
// environment variables set.
package config
