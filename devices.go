package gabb

import (
	"context"
	"fmt"
	"net/http"
)

// DeviceProfile describes the child a device belongs to.
type DeviceProfile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    int    `json:"gender"`
	BirthDate Millis `json:"birthDate"`
	Phone     string `json:"phone"`
}

// UpdateDeviceProfileParams carries a partial profile update. Nil fields are
// left unchanged on the service.
type UpdateDeviceProfileParams struct {
	Gender    *int    `json:"gender,omitempty" validate:"omitempty,oneof=1 2"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	BirthDate *Millis `json:"birthDate,omitempty"`
}

// DeviceSettings mirrors the tracking and sound settings for one device.
// Durations and intervals are in seconds.
type DeviceSettings struct {
	ActiveTrackingEnable    bool      `json:"activeTrackingEnable"`
	ActiveTrackingDuration  int       `json:"activeTrackingDuration"`
	ActiveTrackingFrequency int       `json:"activeTrackingFrequency"`
	BatteryPowerSavingMode  bool      `json:"batteryPowerSavingMode"`
	TrackingEnabled         bool      `json:"trackingEnabled"`
	TrackingStartTime       ClockTime `json:"trackingStartTime"`
	TrackingEndTime         ClockTime `json:"trackingEndTime"`
	TrackingInterval        int       `json:"trackingInterval"`
	SilentMode              bool      `json:"silentMode"`
}

// UpdateDeviceSettingsParams carries a partial settings update. Nil fields
// are left unchanged on the service.
type UpdateDeviceSettingsParams struct {
	ActiveTrackingEnable    *bool      `json:"activeTrackingEnable,omitempty"`
	ActiveTrackingDuration  *int       `json:"activeTrackingDuration,omitempty"`
	ActiveTrackingFrequency *int       `json:"activeTrackingFrequency,omitempty"`
	BatteryPowerSavingMode  *bool      `json:"batteryPowerSavingMode,omitempty"`
	TrackingEnabled         *bool      `json:"trackingEnabled,omitempty"`
	TrackingStartTime       *ClockTime `json:"trackingStartTime,omitempty"`
	TrackingEndTime         *ClockTime `json:"trackingEndTime,omitempty"`
	TrackingInterval        *int       `json:"trackingInterval,omitempty"`
	SilentMode              *bool      `json:"silentMode,omitempty"`
}

// Goals carries the activity goals for a device. The step goal is the only
// one the watch surfaces.
type Goals struct {
	StepGoal int `json:"stepGoal"`
	Steps    int `json:"steps"`
}

// DeviceProfile fetches the child profile attached to a device.
func (c *Client) DeviceProfile(ctx context.Context, deviceID int64) (*DeviceProfile, error) {
	var env envelope[DeviceProfile]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("device/profile/%d", deviceID), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateDeviceProfile applies a partial update to a device's child profile.
func (c *Client) UpdateDeviceProfile(ctx context.Context, deviceID int64, params UpdateDeviceProfileParams) error {
	if err := validateParams(params); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("device/update-profile/%d", deviceID), nil, params, nil)
}

// DeviceSettings fetches the current settings for a device.
func (c *Client) DeviceSettings(ctx context.Context, deviceID int64) (*DeviceSettings, error) {
	var env envelope[DeviceSettings]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("settings/%d", deviceID), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateDeviceSettings applies a partial update to a device's settings.
func (c *Client) UpdateDeviceSettings(ctx context.Context, deviceID int64, params UpdateDeviceSettingsParams) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("settings/%d", deviceID), nil, params, nil)
}

// Goals fetches the activity goals for a device.
func (c *Client) Goals(ctx context.Context, deviceID int64) (*Goals, error) {
	var env envelope[Goals]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("device/goals/%d", deviceID), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// SetStepGoal sets the daily step goal for a device. Only the step goal is
// exposed; the service tracks other goals the watch never uses.
func (c *Client) SetStepGoal(ctx context.Context, deviceID int64, stepGoal int) error {
	payload := struct {
		StepGoal int `json:"stepGoal"`
	}{StepGoal: stepGoal}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("device/goals/%d", deviceID), nil, payload, nil)
}
