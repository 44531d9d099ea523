package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/wsclient/internal/client"
	"github.com/muurk/wsclient/internal/protocol"
	"github.com/muurk/wsclient/internal/urls"
)

// Outcome selects the marker, label and border color of a result box
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeWarning
)

type outcomeStyle struct {
	marker string
	label  string
	color  lipgloss.Color
}

var outcomeStyles = map[Outcome]outcomeStyle{
	OutcomeSuccess: {SuccessMarker, "SUCCESS", SuccessColor},
	OutcomeFailure: {FailureMarker, "FAILED", ErrorColor},
	OutcomeWarning: {"⚠", "WARNING", WarningColor},
}

// Result is the box a command prints when it finishes.
// A zero Width renders at MinTerminalWidth.
type Result struct {
	Outcome Outcome
	Title   string
	Details map[string]string
	Err     error
	Hints   []string
	Width   int
}

// NewSuccessResult creates a success box
func NewSuccessResult(title string, details map[string]string) *Result {
	return &Result{Outcome: OutcomeSuccess, Title: title, Details: details}
}

// NewFailureResult creates a failure box with optional hints
func NewFailureResult(title string, err error, hints []string) *Result {
	return &Result{Outcome: OutcomeFailure, Title: title, Err: err, Hints: hints}
}

// NewWarningResult creates a warning box
func NewWarningResult(title string, details map[string]string) *Result {
	return &Result{Outcome: OutcomeWarning, Title: title, Details: details}
}

// NewConnectFailure reports a connection attempt that ended in result.
func NewConnectFailure(url string, result client.ConnectResult) *Result {
	return &Result{
		Outcome: OutcomeFailure,
		Title:   "Connection failed",
		Details: map[string]string{
			"URL":    url,
			"Result": result.String(),
		},
		Hints: ConnectHints(result),
	}
}

// ConnectHints returns troubleshooting steps for a failed connect result.
func ConnectHints(result client.ConnectResult) []string {
	switch result {
	case client.Success:
		return nil
	case client.Reject:
		return []string{
			"The server answered but did not switch protocols",
			"Check the path and any required headers (--header)",
			"Run with --log-level debug to see the response",
			"Handshake details: " + urls.OpeningHandshake,
		}
	default:
		return []string{
			"Check the host and port are reachable",
			"Increase --timeout for slow networks",
			"wss:// is not supported; use a plain ws:// endpoint",
		}
	}
}

// FrameStats counts the frames seen during one session
type FrameStats struct {
	Sent     int
	Received int
	Control  int
	Bytes    int
}

// Add counts one frame
func (s *FrameStats) Add(direction string, op protocol.FrameType, size int) {
	if direction == client.DirectionSend {
		s.Sent++
	} else {
		s.Received++
	}
	if op.IsControl() {
		s.Control++
	}
	s.Bytes += size
}

// NewSessionSummary reports what was exchanged with url. A non-nil err means
// the session did not end cleanly.
func NewSessionSummary(url string, stats FrameStats, err error) *Result {
	r := &Result{
		Outcome: OutcomeSuccess,
		Title:   "Session closed",
		Details: map[string]string{
			"URL":     url,
			"Frames":  fmt.Sprintf("%d sent, %d received", stats.Sent, stats.Received),
			"Control": fmt.Sprintf("%d", stats.Control),
			"Payload": fmt.Sprintf("%d bytes", stats.Bytes),
		},
	}
	if err != nil {
		r.Outcome = OutcomeWarning
		r.Title = "Session ended"
		r.Err = err
	}
	return r
}

// Render returns the styled box
func (r *Result) Render() string {
	style, ok := outcomeStyles[r.Outcome]
	if !ok {
		style = outcomeStyles[OutcomeSuccess]
	}
	width := max(r.Width, MinTerminalWidth)

	title := lipgloss.NewStyle().
		Foreground(style.color).
		Bold(true).
		Render(fmt.Sprintf("   %s  %s  ─  %s", style.marker, style.label, r.Title))
	lines := []string{"", title, ""}

	if len(r.Details) > 0 {
		for _, key := range sortedKeys(r.Details) {
			keyStyled := ResultKeyStyle.Render(fmt.Sprintf("   %s:", key))
			lines = append(lines, keyStyled+" "+ResultValueStyle.Render(r.Details[key]))
		}
		lines = append(lines, "")
	}

	if r.Err != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Err.Error()), "")
	}

	if len(r.Hints) > 0 {
		lines = append(lines, renderHints(r.Hints, width), "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(style.color).
		Width(width - 2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// renderHints renders the inner troubleshooting box
func renderHints(hints []string, width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, hint := range hints {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+hint))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(max(width-12, 40)).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
