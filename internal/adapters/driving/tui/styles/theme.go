// Package styles provides the colour palette and lipgloss styles of the
// docmind session.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme names the colours by the role they play in a Q&A session.
type Theme struct {
	Accent   lipgloss.Color // titles, selection
	Question lipgloss.Color // the user's side of the transcript
	Text     lipgloss.Color // answers and passages
	Subdued  lipgloss.Color // sources, hints, help
	Answered lipgloss.Color
	Caution  lipgloss.Color
	Failure  lipgloss.Color
	Frame    lipgloss.Color // borders around the transcript and input
	Surface  lipgloss.Color // status bar background
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:   lipgloss.Color("#2DD4BF"),
		Question: lipgloss.Color("#FBBF24"),
		Text:     lipgloss.Color("#E2E8F0"),
		Subdued:  lipgloss.Color("#94A3B8"),
		Answered: lipgloss.Color("#4ADE80"),
		Caution:  lipgloss.Color("#FB923C"),
		Failure:  lipgloss.Color("#F87171"),
		Frame:    lipgloss.Color("#334155"),
		Surface:  lipgloss.Color("#0F172A"),
	}
}

// Styles are the lipgloss styles the views render with.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style

	// Border frames the transcript viewport.
	Border lipgloss.Style

	// Question marks the user's turns in the transcript.
	Question lipgloss.Style

	// Source renders a passage cited under an answer, indented below it.
	Source lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme means DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Frame)

	return &Styles{
		theme: theme,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Subtitle: lipgloss.NewStyle().Foreground(theme.Accent),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Subdued),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Surface).
			Background(theme.Accent),

		Error:   lipgloss.NewStyle().Foreground(theme.Failure),
		Success: lipgloss.NewStyle().Foreground(theme.Answered),
		Warning: lipgloss.NewStyle().Foreground(theme.Caution),

		InputField: framed.Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Subdued).
			Background(theme.Surface).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(theme.Subdued),

		Border: framed,

		Question: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Question),
		Source: lipgloss.NewStyle().
			Foreground(theme.Subdued).
			Italic(true).
			PaddingLeft(2),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
