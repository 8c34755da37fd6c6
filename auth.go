package gabb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Session holds the token pair returned by a credential exchange. A Session
// is a snapshot; the Client keeps its own copy internally.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token has passed its expiry.
func (s Session) Expired() bool {
	return !s.ExpiresAt.After(time.Now())
}

// Active reports whether the session holds a usable access token.
func (s Session) Active() bool {
	return s.AccessToken != "" && !s.Expired()
}

type authRequest struct {
	AppBuild string `json:"appBuild"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpDate      string `json:"expDate"`
}

// Authenticate exchanges the configured credentials for a fresh session and
// stores it on the client. It returns an *AuthenticationError when the
// service rejects the credentials or the exchange cannot be completed.
func (c *Client) Authenticate(ctx context.Context) (Session, error) {
	return c.exchangeToken(ctx, "sso/gabb", authRequest{
		AppBuild: c.appBuild,
		Username: c.username,
		Password: c.password,
	})
}

// RefreshSession trades the held refresh token for a new session. The client
// never refreshes on its own: a caller that sees *SessionExpiredError decides
// when to call this, and falls back to Authenticate when the refresh token
// itself has gone stale.
func (c *Client) RefreshSession(ctx context.Context) (Session, error) {
	c.mu.Lock()
	refreshToken := c.session.RefreshToken
	c.mu.Unlock()
	if refreshToken == "" {
		return Session{}, &AuthenticationError{Message: "no session to refresh, call Authenticate first"}
	}
	return c.exchangeToken(ctx, "token/refresh", refreshRequest{RefreshToken: refreshToken})
}

// Session returns a copy of the current session. The zero Session means
// Authenticate has not succeeded yet.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Authenticated reports whether the client holds an unexpired session.
func (c *Client) Authenticated() bool {
	return c.Session().Active()
}

// sessionToken gates every resource call: no request leaves the client
// without a live token.
func (c *Client) sessionToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.AccessToken == "" {
		return "", &AuthenticationError{Message: "not authenticated, call Authenticate first"}
	}
	if !c.session.ExpiresAt.After(time.Now()) {
		return "", &SessionExpiredError{ExpiredAt: c.session.ExpiresAt}
	}
	return c.session.AccessToken, nil
}

func (c *Client) exchangeToken(ctx context.Context, path string, payload any) (Session, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := c.newRequest(ctx, http.MethodPost, u, payload)
	if err != nil {
		return Session{}, &AuthenticationError{Message: "build token request", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", u.Path).Debug("token exchange failed")
		return Session{}, &AuthenticationError{Message: "token exchange failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		werr := parseAPIErrorBody(resp)
		msg := werr.Message
		if msg == "" {
			msg = "credentials rejected"
		}
		c.log.WithFields(logrus.Fields{
			"path":   u.Path,
			"status": resp.StatusCode,
		}).Debug("token exchange rejected")
		return Session{}, &AuthenticationError{
			StatusCode: resp.StatusCode,
			Code:       werr.Code,
			Message:    msg,
		}
	}

	var env envelope[sessionPayload]
	if err := decodeBody(resp, &env); err != nil {
		return Session{}, &ParseError{Path: u.Path, Err: err}
	}
	if env.Data.AccessToken == "" {
		return Session{}, &ParseError{Path: u.Path, Err: errors.New("missing accessToken in response")}
	}
	expiresAt, err := parseExpDate(env.Data.ExpDate)
	if err != nil {
		return Session{}, &ParseError{Path: u.Path, Err: err}
	}

	session := Session{
		AccessToken:  env.Data.AccessToken,
		RefreshToken: env.Data.RefreshToken,
		ExpiresAt:    expiresAt,
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.log.WithField("expires_at", session.ExpiresAt.UTC().Format(time.RFC3339)).Debug("session established")
	return session, nil
}

// parseExpDate handles the handful of timestamp layouts the service has been
// seen returning for expDate.
func parseExpDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("empty expDate")
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expDate %q", trimmed)
}
