package widgets

import "github.com/charmbracelet/lipgloss"

// StatusLevel represents the state of a status indicator.
type StatusLevel int

const (
	// StatusOK indicates a healthy state.
	StatusOK StatusLevel = iota
	// StatusWarning indicates a degraded state.
	StatusWarning
	// StatusCritical indicates an error state.
	StatusCritical
	// StatusUnknown indicates an indeterminate state.
	StatusUnknown
)

// statusIcons maps each level to its indicator glyph.
var statusIcons = map[StatusLevel]string{
	StatusOK:       "●", // ● filled dot
	StatusWarning:  "●",
	StatusCritical: "●",
	StatusUnknown:  "○", // ○ outline
}

// statusColors maps each level to its display color.
var statusColors = map[StatusLevel]lipgloss.Color{
	StatusOK:       lipgloss.Color("#22C55E"),
	StatusWarning:  lipgloss.Color("#EAB308"),
	StatusCritical: lipgloss.Color("#EF4444"),
	StatusUnknown:  lipgloss.Color("#6B7280"),
}

// RenderStatusDot renders the colored indicator glyph for the given level.
func RenderStatusDot(level StatusLevel) string {
	return lipgloss.NewStyle().Foreground(statusColors[level]).Render(statusIcons[level])
}

// RenderStatus renders a colored indicator dot followed by the given text.
func RenderStatus(level StatusLevel, text string) string {
	if text == "" {
		return RenderStatusDot(level)
	}
	return RenderStatusDot(level) + " " + text
}
