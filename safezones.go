package gabb

import (
	"context"
	"net/http"
	"net/url"
)

// SafeZone is a geofenced area devices report entering and leaving. The safe
// zone API predates the v2 surface: it lives on the bare base URL, mutates
// through POST only and speaks TitleCase JSON.
type SafeZone struct {
	ID        string      `json:"ZoneId"`
	Name      string      `json:"Name"`
	Latitude  float64     `json:"Latitude"`
	Longitude float64     `json:"Longitude"`
	Radius    FloatString `json:"Radius"`
	Enabled   bool        `json:"Enabled"`
	Devices   []int64     `json:"Devices"`
}

// SafeZoneParams describes a zone to create or replace. Radius is roughly in
// feet; the app refuses values much below 150.
type SafeZoneParams struct {
	Name      string      `json:"Name" validate:"required"`
	Latitude  float64     `json:"Latitude" validate:"gte=-90,lte=90"`
	Longitude float64     `json:"Longitude" validate:"gte=-180,lte=180"`
	Radius    FloatString `json:"Radius" validate:"gte=0"`
	Enabled   bool        `json:"Enabled"`
	Devices   []int64     `json:"Devices" validate:"required,min=1"`
}

type safeZoneList struct {
	Zones []SafeZone `json:"Zones"`
}

// SafeZones returns the account's safe zones.
func (c *Client) SafeZones(ctx context.Context) ([]SafeZone, error) {
	var list safeZoneList
	if err := c.doAlt(ctx, http.MethodGet, "safezone/list", nil, nil, &list); err != nil {
		return nil, err
	}
	return list.Zones, nil
}

// AddSafeZone creates a safe zone.
func (c *Client) AddSafeZone(ctx context.Context, params SafeZoneParams) error {
	if err := validateParams(params); err != nil {
		return err
	}
	return c.doAlt(ctx, http.MethodPost, "safezone/add", nil, params, nil)
}

// UpdateSafeZone replaces an existing safe zone. The zone id travels as a
// query parameter, not in the body.
func (c *Client) UpdateSafeZone(ctx context.Context, zoneID string, params SafeZoneParams) error {
	if zoneID == "" {
		return &ValidationError{Fields: map[string]string{"zoneId": "zoneId is required"}}
	}
	if err := validateParams(params); err != nil {
		return err
	}
	query := url.Values{"zoneId": []string{zoneID}}
	return c.doAlt(ctx, http.MethodPost, "safezone/edit", query, params, nil)
}

// DeleteSafeZone removes a safe zone.
func (c *Client) DeleteSafeZone(ctx context.Context, zoneID string) error {
	if zoneID == "" {
		return &ValidationError{Fields: map[string]string{"zoneId": "zoneId is required"}}
	}
	query := url.Values{"zoneId": []string{zoneID}}
	return c.doAlt(ctx, http.MethodPost, "safezone/delete", query, nil, nil)
}
