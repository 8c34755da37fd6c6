package gabb

import (
	"context"
	"net/http"
)

// Event is one entry in the account's event log: SOS triggers, zone
// crossings, lock mode changes and the like.
type Event struct {
	ID        int64  `json:"id"`
	DeviceID  int64  `json:"deviceId"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	CreatedAt Millis `json:"createdAt"`
}

type eventCount struct {
	Count int `json:"count"`
}

// Events returns the entries currently in the event log.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var env envelope[[]Event]
	if err := c.do(ctx, http.MethodGet, "eventlogs", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// DeleteEvents clears the event log. Every entry is removed; the service has
// no per-entry delete.
func (c *Client) DeleteEvents(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "eventlogs", nil, nil, nil)
}

// EventCount returns the number of entries in the event log.
func (c *Client) EventCount(ctx context.Context) (int, error) {
	var env envelope[eventCount]
	if err := c.do(ctx, http.MethodGet, "eventlogs/count", nil, nil, &env); err != nil {
		return 0, err
	}
	return env.Data.Count, nil
}
