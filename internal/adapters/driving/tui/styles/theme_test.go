package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme_RolesAreDistinct(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	roles := map[string]lipgloss.Color{
		"accent":   theme.Accent,
		"question": theme.Question,
		"text":     theme.Text,
		"subdued":  theme.Subdued,
		"answered": theme.Answered,
		"caution":  theme.Caution,
		"failure":  theme.Failure,
		"frame":    theme.Frame,
		"surface":  theme.Surface,
	}

	seen := make(map[lipgloss.Color]string)
	for role, c := range roles {
		require.NotEmpty(t, string(c), role)
		other, dup := seen[c]
		assert.False(t, dup, "%s and %s share %s", role, other, c)
		seen[c] = role
	}
}

func TestNewStyles(t *testing.T) {
	theme := DefaultTheme()
	assert.Same(t, theme, NewStyles(theme).Theme())
	assert.NotNil(t, NewStyles(nil).Theme())
	assert.NotNil(t, DefaultStyles().Theme())
}

func TestStyles_UseThemeRoles(t *testing.T) {
	theme := DefaultTheme()
	s := NewStyles(theme)

	assert.Equal(t, lipgloss.TerminalColor(theme.Question), s.Question.GetForeground())
	assert.True(t, s.Question.GetBold())
	assert.Equal(t, lipgloss.TerminalColor(theme.Answered), s.Success.GetForeground())
	assert.Equal(t, lipgloss.TerminalColor(theme.Caution), s.Warning.GetForeground())
	assert.Equal(t, lipgloss.TerminalColor(theme.Failure), s.Error.GetForeground())
	assert.Equal(t, lipgloss.TerminalColor(theme.Surface), s.StatusBar.GetBackground())
	assert.Equal(t, lipgloss.TerminalColor(theme.Frame), s.Border.GetBorderTopForeground())
	assert.Equal(t, lipgloss.TerminalColor(theme.Frame), s.InputField.GetBorderTopForeground())
}

func TestStyles_SourceIsIndented(t *testing.T) {
	styles := DefaultStyles()

	assert.Equal(t, 2, styles.Source.GetPaddingLeft())
	assert.True(t, styles.Source.GetItalic())
	assert.Contains(t, styles.Source.Render("[0] Cats purr."), "  [0] Cats purr.")
}

func TestStyles_InputFieldIsPadded(t *testing.T) {
	styles := DefaultStyles()

	assert.Equal(t, 1, styles.InputField.GetPaddingLeft())
	assert.Equal(t, 0, styles.Border.GetPaddingLeft())
}
