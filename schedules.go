package gabb

import (
	"context"
	"fmt"
	"net/http"
)

// LockModeSchedule is a recurring window during which a device locks itself
// down to emergency calls only. The service models these on its alarms API,
// which is why writes carry TitleCase keys and a few alarm-only fields.
type LockModeSchedule struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	WeekDays   WeekDays   `json:"weekDays"`
	Devices    []int64    `json:"devices"`
	Time       DaySeconds `json:"time"`
	EndTime    DaySeconds `json:"endTime"`
	Enabled    bool       `json:"enabled"`
	SilentMode bool       `json:"silentMode"`
	Type       int        `json:"type"`
	SchoolMode bool       `json:"schoolMode"`
	FocusMode  bool       `json:"focusMode"`
}

// LockModeScheduleParams describes a schedule to create or replace.
type LockModeScheduleParams struct {
	Name     string     `json:"Name" validate:"required"`
	WeekDays WeekDays   `json:"WeekDays"`
	Devices  []int64    `json:"Devices" validate:"required,min=1"`
	Time     DaySeconds `json:"Time"`
	EndTime  DaySeconds `json:"EndTime"`
	Enabled  bool       `json:"Enabled"`
}

// lockModeScheduleWire adds the alarm fields the app pins on every schedule
// write: type 4 marks a lock mode entry, school mode rides along enabled,
// silent and focus mode stay off.
type lockModeScheduleWire struct {
	LockModeScheduleParams
	SilentMode bool `json:"SilentMode"`
	Type       int  `json:"Type"`
	SchoolMode bool `json:"SchoolMode"`
	FocusMode  bool `json:"FocusMode"`
}

func scheduleWire(params LockModeScheduleParams) lockModeScheduleWire {
	return lockModeScheduleWire{
		LockModeScheduleParams: params,
		Type:                   4,
		SchoolMode:             true,
	}
}

// LockModeSchedules returns the account's lock mode schedules.
func (c *Client) LockModeSchedules(ctx context.Context) ([]LockModeSchedule, error) {
	var env envelope[[]LockModeSchedule]
	if err := c.do(ctx, http.MethodGet, "alarms", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateLockModeSchedule creates a schedule and returns the stored copy.
func (c *Client) CreateLockModeSchedule(ctx context.Context, params LockModeScheduleParams) (*LockModeSchedule, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	var env envelope[LockModeSchedule]
	if err := c.do(ctx, http.MethodPost, "alarms", nil, scheduleWire(params), &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateLockModeSchedule replaces an existing schedule.
func (c *Client) UpdateLockModeSchedule(ctx context.Context, scheduleID int64, params LockModeScheduleParams) error {
	if err := validateParams(params); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("alarms/%d", scheduleID), nil, scheduleWire(params), nil)
}

// DeleteLockModeSchedule removes a schedule.
func (c *Client) DeleteLockModeSchedule(ctx context.Context, scheduleID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("alarms/%d", scheduleID), nil, nil, nil)
}
