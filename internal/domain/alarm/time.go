package alarm

import (
	"fmt"
	"time"
)

const (
	// hoursPerDay bounds TimeOfDay.Hours and AlarmTime.Hours.
	hoursPerDay = 24
	// minutesPerHour bounds the minutes fields.
	minutesPerHour = 60
	// noon is the first PM hour.
	noon = 12
)

const (
	// MeridiemAM is reported for hours 0-11.
	MeridiemAM = "AM"
	// MeridiemPM is reported for hours 12-23.
	MeridiemPM = "PM"
)

// TimeOfDay is a wall-clock snapshot in some time zone.
type TimeOfDay struct {
	// Hours is in the range 0-23.
	Hours int `json:"hours"`
	// Minutes is in the range 0-59.
	Minutes int `json:"minutes"`
	// Seconds is in the range 0-59.
	Seconds int `json:"seconds"`
}

// SnapshotOf extracts the time of day from t in t's own location.
func SnapshotOf(t time.Time) TimeOfDay {
	hours, minutes, seconds := t.Clock()

	return TimeOfDay{
		Hours:   hours,
		Minutes: minutes,
		Seconds: seconds,
	}
}

// Meridiem returns "AM" for hours 0-11 and "PM" for hours 12-23.
func (t TimeOfDay) Meridiem() string {
	if t.Hours >= noon {
		return MeridiemPM
	}

	return MeridiemAM
}

// Matches reports whether the snapshot is exactly at the start of the alarm minute.
func (t TimeOfDay) Matches(a AlarmTime) bool {
	return t.Seconds == 0 && t.Hours == a.Hours && t.Minutes == a.Minutes
}

// FormattedTime is the display form of a TimeOfDay.
type FormattedTime struct {
	// Hours is two digits, 00-23 or 01-12 depending on the mode.
	Hours string `json:"hours"`
	// Minutes is two digits.
	Minutes string `json:"minutes"`
	// Seconds is two digits.
	Seconds string `json:"seconds"`
	// Meridiem is "AM" or "PM" in 12-hour mode and empty in 24-hour mode.
	Meridiem string `json:"meridiem"`
}

// Format renders t in 24-hour or 12-hour mode. It has no side effects.
func Format(t TimeOfDay, use24Hour bool) FormattedTime {
	if use24Hour {
		return FormattedTime{
			Hours:   pad(t.Hours),
			Minutes: pad(t.Minutes),
			Seconds: pad(t.Seconds),
		}
	}

	return FormattedTime{
		Hours:    pad(To12Hour(t.Hours)),
		Minutes:  pad(t.Minutes),
		Seconds:  pad(t.Seconds),
		Meridiem: t.Meridiem(),
	}
}

// To12Hour maps 0 to 12, 13-23 to 1-11 and leaves 1-12 unchanged.
func To12Hour(hours int) int {
	if h := hours % noon; h != 0 {
		return h
	}

	return noon
}

// Clock returns the HH:MM:SS part without the meridiem.
func (f FormattedTime) Clock() string {
	return f.Hours + ":" + f.Minutes + ":" + f.Seconds
}

// String returns HH:MM:SS, followed by the meridiem in 12-hour mode.
func (f FormattedTime) String() string {
	if f.Meridiem == "" {
		return f.Clock()
	}

	return f.Clock() + " " + f.Meridiem
}

// pad zero-pads a non-negative number to two digits.
func pad(n int) string {
	return fmt.Sprintf("%02d", n)
}
