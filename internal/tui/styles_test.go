package tui

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/notionflow/internal/constants"
)

func TestTaskStatusStyling(t *testing.T) {
	t.Parallel()

	colors := TaskStatusColors()
	icons := map[string]bool{}
	for _, s := range constants.ValidTaskStatuses() {
		_, ok := colors[s]
		assert.True(t, ok, "color for %s", s)
		icon := TaskStatusIcon(s)
		assert.NotEqual(t, "?", icon)
		icons[icon] = true
		assert.Contains(t, FormatStatus(s), string(s))
	}
	assert.Len(t, icons, len(constants.ValidTaskStatuses()), "icons are distinct")

	assert.Equal(t, "?", TaskStatusIcon("Archived"))
	assert.Equal(t, "? Archived", FormatStatus("Archived"))
}

func TestPriorityColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ColorError, PriorityColor(constants.PriorityCritical))
	assert.Equal(t, ColorWarning, PriorityColor(constants.PriorityHigh))
	assert.Equal(t, ColorPrimary, PriorityColor(constants.PriorityMedium))
	assert.Equal(t, ColorMuted, PriorityColor(constants.PriorityLow))
	assert.Equal(t, ColorMuted, PriorityColor(""))
}

func TestHasColorSupport(t *testing.T) {
	tests := []struct {
		name    string
		noColor *string
		term    string
		want    bool
	}{
		{name: "default", term: "xterm-256color", want: true},
		{name: "NO_COLOR set", noColor: ptr("1"), term: "xterm", want: false},
		{name: "NO_COLOR empty still disables", noColor: ptr(""), term: "xterm", want: false},
		{name: "dumb terminal", term: "dumb", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TERM", tt.term)
			if tt.noColor != nil {
				t.Setenv("NO_COLOR", *tt.noColor)
			} else {
				t.Setenv("NO_COLOR", "")
				_ = os.Unsetenv("NO_COLOR")
			}
			assert.Equal(t, tt.want, HasColorSupport())
		})
	}
}

func ptr(s string) *string { return &s }
