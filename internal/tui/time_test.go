package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/notionflow/internal/clock"
)

func TestRelativeTimeWith(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)
	c := clock.NewFixed(now)

	tests := []struct {
		ago      time.Duration
		expected string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{2 * time.Hour, "2 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{7 * 24 * time.Hour, "1 week ago"},
		{14 * 24 * time.Hour, "2 weeks ago"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, RelativeTimeWith(now.Add(-tc.ago), c))
		})
	}
}
