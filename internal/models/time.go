package models

import "time"

// TimeLayout is the canonical wall-clock format carried on every
// reading. Merged samples join on exact string equality of this form,
// so it is second-resolution by contract.
const TimeLayout = "2006-01-02 15:04:05"

// Now returns the current local time in canonical form.
func Now() string {
	return time.Now().Format(TimeLayout)
}

// FormatTime renders t in canonical form.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTime parses a canonical timestamp in the local location.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.Local)
}

// NormalizeTimestamp returns s unchanged when it is a valid canonical
// timestamp and the current time otherwise. Stations without a usable
// clock publish empty timestamps.
func NormalizeTimestamp(s string) string {
	if s == "" {
		return Now()
	}
	if _, err := ParseTime(s); err != nil {
		return Now()
	}
	return s
}
