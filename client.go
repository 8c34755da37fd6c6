package gabb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the production FiLIP service endpoint. The base is
	// kept without the v2 segment because the safe zone endpoints live
	// outside it.
	DefaultBaseURL = "https://api.myfilip.com/"

	// DefaultAppBuild is the app build string the service expects in the
	// credential exchange. It mirrors the official app and should only be
	// overridden for a specific reason.
	DefaultAppBuild = "1.28 (966)"

	defaultTimeout = 15 * time.Second
)

// requiredHeaders are static headers the service rejects requests without.
var requiredHeaders = map[string]string{
	"X-Accept-Language": "en-US",
	"X-Accept-Offset":   "-5.000000",
	"Accept-Version":    "1.0",
	"User-Agent":        "FiLIP-iOS",
	"X-Accept-Version":  "1.0",
	"Content-Type":      "application/json",
}

// Config carries the settings for a Client. Username and Password are
// required; everything else falls back to a sensible default.
type Config struct {
	// Username is the parent account login, normally an email address.
	Username string
	// Password is the parent account password.
	Password string
	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL string
	// AppBuild overrides DefaultAppBuild.
	AppBuild string
	// Timeout applies to the internally built HTTP client. Ignored when
	// HTTPClient is set.
	Timeout time.Duration
	// HTTPClient replaces the internally built HTTP client.
	HTTPClient *http.Client
	// Logger receives per-request debug logging. Discarded when nil.
	Logger *logrus.Logger
}

// Client talks to the FiLIP REST service behind Gabb devices. Methods are
// safe for concurrent use. Construct one with New, then call Authenticate
// before any resource method.
type Client struct {
	baseURL    *url.URL // primary base, carries the v2 segment
	altBaseURL *url.URL // bare base used by the safe zone endpoints
	appBuild   string
	username   string
	password   string
	http       *http.Client
	log        *logrus.Logger

	mu      sync.Mutex
	session Session
}

// New builds a Client from cfg. No network traffic happens until
// Authenticate is called.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, fmt.Errorf("username required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("password required")
	}
	alt, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	appBuild := strings.TrimSpace(cfg.AppBuild)
	if appBuild == "" {
		appBuild = DefaultAppBuild
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Client{
		baseURL:    alt.ResolveReference(&url.URL{Path: "v2/"}),
		altBaseURL: alt,
		appBuild:   appBuild,
		username:   cfg.Username,
		password:   cfg.Password,
		http:       httpClient,
		log:        logger,
	}, nil
}

// parseBaseURL normalizes raw into a base the relative endpoint paths can be
// resolved against. The path keeps a trailing slash so resolution appends
// instead of replacing.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// envelope is the wrapper nearly every v2 response arrives in.
type envelope[T any] struct {
	Data T `json:"data"`
}

// apiError is the error body shape the service uses.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func parseAPIError(raw []byte) apiError {
	var werr apiError
	_ = json.Unmarshal(raw, &werr)
	return werr
}

func parseAPIErrorBody(resp *http.Response) apiError {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiError{}
	}
	return parseAPIError(raw)
}

func decodeBody(resp *http.Response, dest any) error {
	return json.NewDecoder(resp.Body).Decode(dest)
}

// do performs an authenticated request against the primary v2 base.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	token, err := c.sessionToken()
	if err != nil {
		return err
	}
	return c.send(ctx, c.baseURL, method, path, query, body, dest, token)
}

// doAlt performs an authenticated request against the bare base URL, which
// the safe zone endpoints require.
func (c *Client) doAlt(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	token, err := c.sessionToken()
	if err != nil {
		return err
	}
	return c.send(ctx, c.altBaseURL, method, path, query, body, dest, token)
}

func (c *Client) newRequest(ctx context.Context, method string, u *url.URL, body any) (*http.Request, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for name, value := range requiredHeaders {
		req.Header.Set(name, value)
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, base *url.URL, method, path string, query url.Values, body, dest any, token string) error {
	rel := &url.URL{Path: path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	u := base.ResolveReference(rel)

	req, err := c.newRequest(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   u.Path,
		}).Debug("filip request failed")
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    u.Path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("filip request")

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized {
			// The service no longer accepts the token even though it has
			// not reached its local expiry.
			return &SessionExpiredError{}
		}
		werr := parseAPIError(raw)
		return &RequestError{
			Method:     method,
			Path:       u.Path,
			StatusCode: resp.StatusCode,
			Code:       werr.Code,
			Message:    werr.Message,
		}
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &ParseError{Path: u.Path, Err: err}
	}
	return nil
}
