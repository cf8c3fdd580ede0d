package model

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as "N ms" below one second and as
// "Hh Mm Ss" otherwise. Hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Round(time.Millisecond).Milliseconds())
	}
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// TimeStyle selects how timestamps are shown in the report.
type TimeStyle string

// TimeStyle constants.
const (
	TimeOnly    TimeStyle = "time"
	DateAndTime TimeStyle = "datetime"
	TimeAmPm    TimeStyle = "ampm"
)

// Layout returns the time layout for the style.
func (s TimeStyle) Layout() string {
	switch s {
	case TimeOnly:
		return "15:04:05"
	case DateAndTime:
		return "2006-01-02 15:04:05"
	default:
		return "03:04:05 PM"
	}
}

// Format renders t in the style.
func (s TimeStyle) Format(t time.Time) string {
	return t.Format(s.Layout())
}

// Valid reports whether s is a known style.
func (s TimeStyle) Valid() bool {
	switch s {
	case TimeOnly, DateAndTime, TimeAmPm:
		return true
	}
	return false
}

// ParseTimeStyle parses a style name.
func ParseTimeStyle(in string) (TimeStyle, error) {
	s := TimeStyle(strings.ToLower(strings.TrimSpace(in)))
	if !s.Valid() {
		return "", Errorf(ErrCodeConfig, "unknown time style %q", in)
	}
	return s, nil
}

// LogTimestamp formats log entry timestamps as "hh:mm:ss AM".
func LogTimestamp(t time.Time) string {
	return t.Format("03:04:05 PM")
}
