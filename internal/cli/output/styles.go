package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Key       lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
}

// NewStyles builds styles bound to w. Without color every style renders
// plain text.
func NewStyles(w io.Writer, color bool) *Styles {
	lr := lipgloss.NewRenderer(w)
	if !color {
		lr.SetColorProfile(termenv.Ascii)
	}

	green := lipgloss.Color("42")
	yellow := lipgloss.Color("214")
	red := lipgloss.Color("196")
	gray := lipgloss.Color("245")

	return &Styles{
		Header:    lr.NewStyle().Bold(true).Underline(true),
		Subheader: lr.NewStyle().Bold(true),
		Key:       lr.NewStyle().Bold(true),
		Success:   lr.NewStyle().Foreground(green),
		Warning:   lr.NewStyle().Foreground(yellow),
		Error:     lr.NewStyle().Foreground(red),
		Muted:     lr.NewStyle().Foreground(gray),

		StatusSuccess: lr.NewStyle().Foreground(green).SetString("✓"),
		StatusWarning: lr.NewStyle().Foreground(yellow).SetString("!"),
		StatusError:   lr.NewStyle().Foreground(red).SetString("✗"),
	}
}
