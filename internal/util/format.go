package util

import (
	"fmt"
	"time"
)

// FormatNumber formats an int64 with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatAccuracy formats a percentage with one decimal place.
// Nil (no trials yet) renders as "-".
func FormatAccuracy(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *p)
}

// FormatConfidence formats a confidence score in [0,100] with one decimal place.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.1f%%", c)
}

// FormatDateTime formats a timestamp in local date-time format (2006-01-02 15:04).
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// FormatDuration renders the elapsed time between start and end, or until
// now when end is nil, truncated to seconds.
func FormatDuration(start time.Time, end *time.Time) string {
	stop := time.Now()
	if end != nil {
		stop = *end
	}
	return stop.Sub(start).Truncate(time.Second).String()
}
