package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/notionflow/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states and identifiers.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for success states and completed items.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for items that need attention.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for errors and blocked items.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
	}
}

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// CheckNoColor disables styling when HasColorSupport reports false.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false if NO_COLOR is set (any value, including
// empty) or TERM=dumb.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// TaskStatusColors returns the color for each task status.
func TaskStatusColors() map[constants.TaskStatus]lipgloss.AdaptiveColor {
	return map[constants.TaskStatus]lipgloss.AdaptiveColor{
		constants.TaskStatusBacklog:    ColorMuted,
		constants.TaskStatusClaimed:    ColorWarning,
		constants.TaskStatusInProgress: ColorPrimary,
		constants.TaskStatusCompleted:  ColorSuccess,
	}
}

// TaskStatusIcon returns the symbol shown next to a task status. Unknown
// statuses get "?".
func TaskStatusIcon(status constants.TaskStatus) string {
	switch status {
	case constants.TaskStatusBacklog:
		return "○"
	case constants.TaskStatusClaimed:
		return "◐"
	case constants.TaskStatusInProgress:
		return "●"
	case constants.TaskStatusCompleted:
		return "✓"
	default:
		return "?"
	}
}

// FormatStatus renders a status as icon plus text in the status color, so
// the state stays readable without color.
func FormatStatus(status constants.TaskStatus) string {
	label := TaskStatusIcon(status) + " " + string(status)
	color, ok := TaskStatusColors()[status]
	if !ok {
		return label
	}
	return lipgloss.NewStyle().Foreground(color).Render(label)
}

// PriorityColor returns the color used for a priority label.
func PriorityColor(p constants.Priority) lipgloss.AdaptiveColor {
	switch p {
	case constants.PriorityCritical:
		return ColorError
	case constants.PriorityHigh:
		return ColorWarning
	case constants.PriorityMedium:
		return ColorPrimary
	default:
		return ColorMuted
	}
}
