package timeutil

import (
	"fmt"
	"time"
)

// FormatAge renders a creation timestamp the way kubectl does: seconds up to
// two minutes, then the two most significant units.
func FormatAge(t time.Time) string {
	return FormatAgeAt(t, time.Now())
}

// FormatAgeAt is FormatAge against an explicit reference instant, used by
// transforms and tests that need deterministic output.
func FormatAgeAt(t, now time.Time) string {
	if t.IsZero() {
		return "0s"
	}

	elapsed := now.Sub(t)
	if elapsed < 0 {
		elapsed = 0
	}

	seconds := int(elapsed.Seconds())
	if seconds < 120 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd%dh", days, hours%24)
	}
	if days < 30 {
		return fmt.Sprintf("%dd", days)
	}

	months := days / 30
	if months < 12 {
		return fmt.Sprintf("%dmo", months)
	}

	years := months / 12
	if months%12 == 0 {
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dy%dmo", years, months%12)
}
