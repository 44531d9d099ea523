package session

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/ui"
	"github.com/muurk/wsclient/internal/version"
)

// AppName is shown in the container header
const AppName = "WSCLIENT"

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60 // Minimum supported terminal width
	MinViewportRows  = 3  // Smallest frame log height
	chromeRows       = 8  // Header, input, footer and borders
)

// Color palette
var (
	PrimaryColor   = ui.PrimaryColor
	SecondaryColor = ui.SuccessColor
	WarningColor   = ui.WarningColor
	ErrorColor     = ui.ErrorColor
	TextColor      = ui.TextColor
	SubtleColor    = ui.MutedColor
	BorderColor    = ui.PrimaryColor
	HighlightColor = ui.SuccessColor
)

// Common styles
var (
	// Title style
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// Prompt style for the message input
	PromptStyle = lipgloss.NewStyle().
			Foreground(HighlightColor).
			Bold(true)

	// Error line style
	ErrorLineStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)
)

// stateStyle returns the badge style for a connection state
func stateStyle(s client.State) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch s {
	case client.Connected:
		return base.Foreground(SecondaryColor)
	case client.Connecting:
		return base.Foreground(WarningColor)
	default:
		return base.Foreground(ErrorColor)
	}
}

// buildHeaderContent creates header content with app name, URL and state
func buildHeaderContent(url string, state client.State) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " " + version.Version)

	middle := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(url)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", middle, " ", stateStyle(state).Render(state.String()))
}

// renderContainer wraps a screen with a bordered header and footer sized to
// the terminal.
func renderContainer(header, content, footer string, width, height int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(width-4). // Leave room for outer border
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(width-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(header),
		lipgloss.NewStyle().Width(width-4).Render(content),
		footerStyle.Render(lipgloss.NewStyle().Foreground(SubtleColor).Render(footer)),
	)

	border := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(width - 2)
	if height > 2 {
		border = border.Height(height - 2).AlignVertical(lipgloss.Top)
	}
	return border.Render(inner)
}
