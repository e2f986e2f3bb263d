// Package timeutil provides time formatting helpers for user-facing output.
package timeutil

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration for display, rounded to the nearest
// second. Durations under a minute show as "45s", under an hour as
// "1m 23s", and longer ones as "2h 5m 0s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	seconds := (d % time.Minute) / time.Second

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
