package gabb

import (
	"context"
	"fmt"
	"net/http"
)

// MapSnapshot is the account-wide device overview behind the app's map view.
type MapSnapshot struct {
	Devices []MapDevice `json:"devices"`
}

// MapDevice combines general device state with its last reported location.
type MapDevice struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Battery  int       `json:"battery"`
	Charging bool      `json:"charging"`
	Online   bool      `json:"online"`
	LastSeen Millis    `json:"lastSeen"`
	Location *Location `json:"location"`
}

// Location is a reported device position. Accuracy is in meters.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp Millis  `json:"timestamp"`
}

// Map fetches location and general status for every device on the account.
func (c *Client) Map(ctx context.Context) (*MapSnapshot, error) {
	var env envelope[MapSnapshot]
	if err := c.do(ctx, http.MethodGet, "map", nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// RefreshMap asks a device to report a fresh location. The updated position
// arrives through a later Map call once the device has answered.
func (c *Client) RefreshMap(ctx context.Context, deviceID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("map/refresh/%d", deviceID), nil, nil, nil)
}
