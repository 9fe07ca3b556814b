package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
)

var (
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorGray)

	// KeyStyle renders issue and project keys in listings.
	KeyStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)

	// HeaderStyle renders column headers in listings.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// StatusStyle returns a color-coded style for a Jira status name. Jira
// workflows are configurable, so unknown names fall back to gray.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch strings.ToLower(status) {
	case "open", "to do", "backlog", "new":
		return base.Foreground(ColorBlue)
	case "in progress", "in development":
		return base.Foreground(ColorYellow)
	case "in review", "code review", "review":
		return base.Foreground(ColorMagenta)
	case "done", "closed", "resolved":
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for a Jira priority name.
func PriorityStyle(priority string) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch strings.ToLower(priority) {
	case "highest", "blocker", "critical":
		return base.Bold(true).Foreground(ColorRed)
	case "high", "major":
		return base.Foreground(ColorOrange)
	case "medium":
		return base.Foreground(ColorYellow)
	case "low", "minor":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
