// Package gabb provides a typed HTTP client for the FiLIP REST service that
// backs Gabb smartwatches.
//
// # Overview
//
// Gabb sells watches and phones for children; the devices themselves are
// managed through Smartcom's FiLIP service, which is what this package talks
// to. The client authenticates with a parent account, holds the resulting
// token pair, and exposes the service's resources as typed methods: contacts,
// device profiles and settings, the location map, the event log, lock mode
// schedules, todos, text presets and safe zones.
//
// # Client Usage
//
// Build a client from credentials, authenticate, then call resource methods:
//
//	client, err := gabb.New(gabb.Config{
//		Username: "parent@example.com",
//		Password: "password",
//	})
//	if err != nil {
//		log.Fatalf("configure client: %v", err)
//	}
//	if _, err := client.Authenticate(ctx); err != nil {
//		log.Fatalf("authenticate: %v", err)
//	}
//
//	snapshot, err := client.Map(ctx)
//	if err != nil {
//		log.Printf("map fetch failed: %v", err)
//	}
//
// # Session Lifecycle
//
// Authenticate exchanges the credentials for an access token, a refresh token
// and an expiry. Resource methods attach the access token as a bearer header
// and never renew it behind the caller's back: when the token has lapsed, or
// the service rejects it, the method fails with *SessionExpiredError and the
// caller decides what happens next. The usual recovery is:
//
//	if _, err := client.RefreshSession(ctx); err != nil {
//		_, err = client.Authenticate(ctx)
//	}
//
// Keeping renewal explicit means no resource call ever turns into a surprise
// credential exchange, and callers control where and when tokens move.
//
// # Error Handling
//
// Failures are typed and usable with errors.As:
//
//   - *AuthenticationError: rejected credentials, transport failures during
//     the token exchange, or resource calls before Authenticate
//   - *SessionExpiredError: the access token has lapsed or was rejected
//   - *RequestError: the service answered a resource call with a non-2xx
//     status; carries method, path, status and the service's error body
//   - *ParseError: a response body that cannot be decoded or is missing the
//     shape the endpoint is documented to return
//   - *ValidationError: request parameters rejected before any request left
//     the process
//
// # Service Quirks
//
// The FiLIP API carries some history, and the client absorbs it rather than
// leaking it to callers:
//
//   - Nearly everything lives under /v2 and wraps responses in a {"data": ...}
//     envelope; the safe zone endpoints predate that surface, live on the bare
//     base URL, mutate through POST only and speak TitleCase JSON.
//   - Lock mode schedules ride on the service's alarm API. Writes use
//     TitleCase keys and pin a few alarm-only fields the watch never uses.
//   - Timestamps arrive as epoch milliseconds (Millis), schedule times as
//     seconds since midnight (DaySeconds), tracking windows as "HH:MM"
//     strings (ClockTime), and safe zone radii sometimes as quoted numbers
//     (FloatString).
//   - Every request needs a set of static headers, including a FiLIP-iOS
//     user agent; requests without them are rejected.
//
// # Thread Safety
//
// A Client is safe for concurrent use. The session is guarded by a mutex and
// Session returns a copy, never shared state.
//
// # Testing
//
// The gabbtest subpackage runs a fake FiLIP service on httptest for exercising
// code built on this client, including token issue, expiry and the safe zone
// quirks. The package's own tests show the intended usage.
package gabb
