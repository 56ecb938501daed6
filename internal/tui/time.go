package tui

import (
	"fmt"
	"time"

	"github.com/mrz1836/notionflow/internal/clock"
)

// DefaultClock is the clock RelativeTime measures against.
//
//nolint:gochecknoglobals // Package-level default for dependency injection
var DefaultClock clock.Clock = clock.RealClock{}

// RelativeTime formats t relative to now, e.g. "just now" or "3 days ago".
func RelativeTime(t time.Time) string {
	return RelativeTimeWith(t, DefaultClock)
}

// RelativeTimeWith formats t relative to c.Now().
func RelativeTimeWith(t time.Time, c clock.Clock) string {
	diff := c.Now().Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	default:
		return plural(int(diff.Hours()/24/7), "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
