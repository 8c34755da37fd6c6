package gabb

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// AuthenticationError reports a failure to establish a session. It covers
// rejected credentials, transport failures during the token exchange, and
// calls made before Authenticate has ever succeeded. StatusCode is zero when
// the failure happened before a response arrived.
type AuthenticationError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AuthenticationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "authentication failed"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// SessionExpiredError indicates the held access token is no longer usable.
// The caller decides how to recover, normally by calling RefreshSession and
// falling back to Authenticate if the refresh token is also stale. ExpiredAt
// is zero when the service rejected a token that had not yet reached its
// local expiry.
type SessionExpiredError struct {
	ExpiredAt time.Time
}

func (e *SessionExpiredError) Error() string {
	if e.ExpiredAt.IsZero() {
		return "session expired: access token rejected by the service"
	}
	return fmt.Sprintf("session expired at %s", e.ExpiredAt.UTC().Format(time.RFC3339))
}

// RequestError is returned when the service answers a resource call with a
// non-2xx status. Code and Message carry the service's own error body when
// one was present.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
}

func (e *RequestError) Error() string {
	s := fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}

// ParseError is returned when a response body cannot be decoded or does not
// carry the shape the endpoint is documented to return.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports request parameters rejected before any request was
// sent. Fields maps the JSON name of each offending field to a readable
// message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid parameters"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		msgs = append(msgs, e.Fields[field])
	}
	return "invalid parameters: " + strings.Join(msgs, "; ")
}
