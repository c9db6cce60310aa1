package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorRed       = lipgloss.Color("#E06C75")
	ColorGreen     = lipgloss.Color("#98C379")
	ColorYellow    = lipgloss.Color("#E5C07B")
	ColorBlue      = lipgloss.Color("#61AFEF")
	ColorBorder    = lipgloss.Color("#3F4451")
)

var (
	ClockStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary).
			Bold(true)

	EntryStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary).
			PaddingLeft(2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

func stateStyle(running, paused bool) lipgloss.Style {
	switch {
	case running:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case paused:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	default:
		return lipgloss.NewStyle().Foreground(ColorFgMuted)
	}
}
