package gabb

import (
	"context"
	"fmt"
	"net/http"
)

// TextPreset is a canned message selectable on the watch keyboard.
type TextPreset struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// TextPresets returns the canned messages configured for a device.
func (c *Client) TextPresets(ctx context.Context, deviceID int64) ([]TextPreset, error) {
	var env envelope[[]TextPreset]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("tokk/device/%d/preset", deviceID), nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// AddTextPreset creates a canned message and returns the stored copy. The
// device id rides in the body as well as the path; the service wants both.
func (c *Client) AddTextPreset(ctx context.Context, deviceID int64, message string) (*TextPreset, error) {
	payload := struct {
		DeviceID int64  `json:"deviceId"`
		Message  string `json:"message"`
	}{DeviceID: deviceID, Message: message}
	var env envelope[TextPreset]
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("tokk/device/%d/preset", deviceID), nil, payload, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateTextPreset replaces the text of an existing canned message.
func (c *Client) UpdateTextPreset(ctx context.Context, deviceID, presetID int64, message string) error {
	payload := struct {
		DeviceID int64  `json:"deviceId"`
		PresetID int64  `json:"presetId"`
		Message  string `json:"message"`
	}{DeviceID: deviceID, PresetID: presetID, Message: message}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("tokk/device/%d/preset/%d", deviceID, presetID), nil, payload, nil)
}

// DeleteTextPreset removes a canned message from a device.
func (c *Client) DeleteTextPreset(ctx context.Context, deviceID, presetID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("tokk/device/%d/preset/%d", deviceID, presetID), nil, nil, nil)
}
