package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gabbwatch/gabb"
	"github.com/gabbwatch/gabb/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second

	// maxBackoff caps how far the poll interval stretches while the service
	// keeps failing.
	maxBackoff = 5 * time.Minute
)

// apiClient is the slice of the gabb client the poller needs. Production code
// passes *gabb.Client; tests drop in a fake.
type apiClient interface {
	Map(ctx context.Context) (*gabb.MapSnapshot, error)
	Events(ctx context.Context) ([]gabb.Event, error)
	RefreshSession(ctx context.Context) (gabb.Session, error)
	Authenticate(ctx context.Context) (gabb.Session, error)
}

var _ apiClient = (*gabb.Client)(nil)

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, stretching the interval while polls keep failing. It returns
// immediately; the caller is expected to have populated the store once
// already.
func StartPoller(ctx context.Context, store *state.Store, client apiClient, log *logrus.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		for {
			wait := interval
			if failures := store.Snapshot().ConsecutiveFailures; failures > 0 {
				wait = calculateBackoff(failures, interval)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}

			refresh(ctx, store, client, log)
		}
	}()
}

// refresh pulls the device map and event log into the store. When the service
// has stopped honoring the access token it recovers the session and retries
// the fetch once.
func refresh(ctx context.Context, store *state.Store, client apiClient, log *logrus.Logger) {
	devices, events, err := fetchAll(ctx, client)

	var expired *gabb.SessionExpiredError
	if errors.As(err, &expired) {
		if rerr := recoverSession(ctx, client, log); rerr != nil {
			store.Update(nil, nil, rerr)
			return
		}
		devices, events, err = fetchAll(ctx, client)
	}

	if err != nil {
		log.WithError(err).Warn("poll failed")
		store.Update(nil, nil, err)
		return
	}
	store.Update(devices, events, nil)
}

func fetchAll(ctx context.Context, client apiClient) ([]gabb.MapDevice, []gabb.Event, error) {
	snapshot, err := client.Map(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch map: %w", err)
	}
	events, err := client.Events(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch events: %w", err)
	}
	return snapshot.Devices, events, nil
}

// recoverSession restores a usable session after the service rejects the
// access token. The refresh token is tried first; once that is rejected too,
// only a full credential exchange helps.
func recoverSession(ctx context.Context, client apiClient, log *logrus.Logger) error {
	_, err := client.RefreshSession(ctx)
	if err == nil {
		log.Debug("session refreshed")
		return nil
	}
	log.WithError(err).Debug("session refresh rejected, re-authenticating")

	if _, err := client.Authenticate(ctx); err != nil {
		log.WithError(err).Warn("re-authentication failed")
		return fmt.Errorf("re-authenticate: %w", err)
	}
	log.Debug("session re-established")
	return nil
}

// calculateBackoff returns the wait before the next poll after a run of
// consecutive failures. The interval doubles per failure up to maxBackoff.
func calculateBackoff(failures int, baseInterval time.Duration) time.Duration {
	if failures <= 0 {
		return baseInterval
	}
	backoff := baseInterval
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
