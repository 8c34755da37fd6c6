package gabb

import (
	"errors"
	"testing"
	"time"
)

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			"auth with status",
			&AuthenticationError{StatusCode: 401, Message: "invalid username or password"},
			"invalid username or password (status 401)",
		},
		{
			"auth local",
			&AuthenticationError{Message: "not authenticated, call Authenticate first"},
			"not authenticated, call Authenticate first",
		},
		{
			"auth wrapped",
			&AuthenticationError{Message: "token exchange failed", Err: errors.New("dial tcp: connection refused")},
			"token exchange failed: dial tcp: connection refused",
		},
		{
			"session expired locally",
			&SessionExpiredError{ExpiredAt: expiry},
			"session expired at 2026-09-01T10:00:00Z",
		},
		{
			"session rejected remotely",
			&SessionExpiredError{},
			"session expired: access token rejected by the service",
		},
		{
			"request error with body",
			&RequestError{Method: "GET", Path: "/v2/map", StatusCode: 500, Message: "upstream timeout"},
			"api GET /v2/map returned status 500: upstream timeout",
		},
		{
			"request error bare",
			&RequestError{Method: "DELETE", Path: "/v2/contact/5", StatusCode: 404},
			"api DELETE /v2/contact/5 returned status 404",
		},
		{
			"parse error",
			&ParseError{Path: "/v2/map", Err: errors.New("unexpected end of JSON input")},
			"decode response from /v2/map: unexpected end of JSON input",
		},
		{
			"validation sorted fields",
			&ValidationError{Fields: map[string]string{
				"phone":     "phone is a required field",
				"firstName": "firstName is a required field",
			}},
			"invalid parameters: firstName is a required field; phone is a required field",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	if !errors.Is(&AuthenticationError{Err: inner}, inner) {
		t.Fatalf("AuthenticationError does not unwrap to its cause")
	}
	if !errors.Is(&ParseError{Err: inner}, inner) {
		t.Fatalf("ParseError does not unwrap to its cause")
	}
}
