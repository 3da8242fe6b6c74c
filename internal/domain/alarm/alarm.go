package alarm

import (
	"fmt"
	"strconv"
	"strings"
)

// AlarmTime is the wall-clock minute an alarm is armed for.
//
//nolint:revive // alarm.AlarmTime reads better than alarm.Time next to TimeOfDay.
type AlarmTime struct {
	// Hours is in the range 0-23.
	Hours int `json:"hours"`
	// Minutes is in the range 0-59.
	Minutes int `json:"minutes"`
}

// NewAlarmTime validates the hours and minutes and returns the alarm time.
func NewAlarmTime(hours, minutes int) (AlarmTime, error) {
	if hours < 0 || hours >= hoursPerDay {
		return AlarmTime{}, fmt.Errorf("hours %d out of range 0-23: %w", hours, ErrInvalidArgument)
	}

	if minutes < 0 || minutes >= minutesPerHour {
		return AlarmTime{}, fmt.Errorf("minutes %d out of range 0-59: %w", minutes, ErrInvalidArgument)
	}

	return AlarmTime{
		Hours:   hours,
		Minutes: minutes,
	}, nil
}

// ParseAlarmTime parses an "HH:MM" string such as "07:05".
// A single-digit hour ("7:05") is accepted; anything else is rejected.
func ParseAlarmTime(s string) (AlarmTime, error) {
	hoursPart, minutesPart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return AlarmTime{}, fmt.Errorf("alarm time %q is not in HH:MM form: %w", s, ErrInvalidArgument)
	}

	hours, err := parseField(hoursPart)
	if err != nil {
		return AlarmTime{}, fmt.Errorf("alarm time %q has bad hours: %w", s, err)
	}

	if len(minutesPart) != 2 { //nolint:mnd // Minutes are always two digits.
		return AlarmTime{}, fmt.Errorf("alarm time %q needs two-digit minutes: %w", s, ErrInvalidArgument)
	}

	minutes, err := parseField(minutesPart)
	if err != nil {
		return AlarmTime{}, fmt.Errorf("alarm time %q has bad minutes: %w", s, err)
	}

	return NewAlarmTime(hours, minutes)
}

// parseField converts one or two ASCII digits to a number.
func parseField(s string) (int, error) {
	if s == "" || len(s) > 2 {
		return 0, ErrInvalidArgument
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidArgument
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return n, nil
}

// Next returns the same minute one hour later, wrapping past midnight.
func (a AlarmTime) Next() AlarmTime {
	return AlarmTime{
		Hours:   (a.Hours + 1) % hoursPerDay,
		Minutes: a.Minutes,
	}
}

// String renders the alarm as zero-padded HH:MM.
func (a AlarmTime) String() string {
	return pad(a.Hours) + ":" + pad(a.Minutes)
}

// Clone returns a copy of the alarm time, or nil for a nil receiver.
func (a *AlarmTime) Clone() *AlarmTime {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}
