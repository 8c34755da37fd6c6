package gabb

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Genders accepted by the device profile endpoints.
const (
	GenderMale   = 1
	GenderFemale = 2
)

// Millis is a timestamp carried as epoch milliseconds on the wire. The zero
// value marshals as null.
type Millis struct {
	time.Time
}

// NewMillis wraps t for use in request parameters.
func NewMillis(t time.Time) *Millis {
	return &Millis{Time: t}
}

func (m Millis) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(m.UnixMilli(), 10)), nil
}

func (m *Millis) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		m.Time = time.Time{}
		return nil
	}
	ms, err := strconv.ParseInt(strings.Trim(raw, `"`), 10, 64)
	if err != nil {
		return fmt.Errorf("parse millisecond timestamp %s: %w", raw, err)
	}
	m.Time = time.UnixMilli(ms).UTC()
	return nil
}

// DaySeconds is a time of day expressed as seconds since midnight, the
// encoding the schedule endpoints use.
type DaySeconds int

// NewDaySeconds converts a clock time into seconds since midnight.
func NewDaySeconds(hour, minute, second int) DaySeconds {
	return DaySeconds(hour*3600 + minute*60 + second)
}

// Clock splits the value back into hour, minute and second components.
func (d DaySeconds) Clock() (hour, minute, second int) {
	return int(d) / 3600, int(d) % 3600 / 60, int(d) % 60
}

func (d DaySeconds) String() string {
	hour, minute, second := d.Clock()
	return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second)
}

// ClockTime is a time of day carried as an "HH:MM" string, used by the
// tracking window fields in device settings. Incoming values may carry a
// seconds component, which is dropped.
type ClockTime struct {
	Hour   int
	Minute int
}

// NewClockTime builds a pointer for use in request parameters.
func NewClockTime(hour, minute int) *ClockTime {
	return &ClockTime{Hour: hour, Minute: minute}
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*t = ClockTime{}
		return nil
	}
	raw = strings.Trim(raw, `"`)
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return fmt.Errorf("parse clock time %q: want HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("parse clock time %q: %w", raw, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("parse clock time %q: %w", raw, err)
	}
	t.Hour, t.Minute = hour, minute
	return nil
}

// WeekDays marks the active days for a schedule, Monday first. The service
// carries it as a seven element JSON array of booleans.
type WeekDays [7]bool

// On reports whether the given weekday is active.
func (w WeekDays) On(day time.Weekday) bool {
	return w[(int(day)+6)%7]
}

// Set marks the given weekday active or inactive.
func (w *WeekDays) Set(day time.Weekday, active bool) {
	w[(int(day)+6)%7] = active
}

// FloatString is a float the service sometimes delivers as a quoted string,
// seen on safe zone radius values. It always marshals as a plain number.
type FloatString float64

func (f FloatString) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

func (f *FloatString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*f = 0
		return nil
	}
	value, err := strconv.ParseFloat(strings.Trim(raw, `"`), 64)
	if err != nil {
		return fmt.Errorf("parse float %s: %w", raw, err)
	}
	*f = FloatString(value)
	return nil
}

// Bool returns a pointer to v for optional request fields.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v for optional request fields.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v for optional request fields.
func Int64(v int64) *int64 { return &v }

// String returns a pointer to v for optional request fields.
func String(v string) *string { return &v }
