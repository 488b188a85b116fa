// Package tui provides terminal user interface components.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Background lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
}

// DefaultTheme returns the default shoplist theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:    lipgloss.AdaptiveColor{Light: "#0b7a5a", Dark: "#6fdcb5"},
		Secondary:  lipgloss.AdaptiveColor{Light: "#5f6368", Dark: "#9aa0a6"},
		Success:    lipgloss.AdaptiveColor{Light: "#1e8e3e", Dark: "#81c995"},
		Warning:    lipgloss.AdaptiveColor{Light: "#f9ab00", Dark: "#fdd663"},
		Error:      lipgloss.AdaptiveColor{Light: "#d93025", Dark: "#f28b82"},
		Muted:      lipgloss.AdaptiveColor{Light: "#80868b", Dark: "#6e7681"},
		Background: lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1f1f1f"},
		Foreground: lipgloss.AdaptiveColor{Light: "#202124", Dark: "#e8eaed"},
		Border:     lipgloss.AdaptiveColor{Light: "#dadce0", Dark: "#3c4043"},
	}
}

// Styles holds the styled components for the TUI.
type Styles struct {
	theme Theme

	// Text styles
	Title   lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style

	// Inputs
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	InputInvalid lipgloss.Style

	// Rows
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Done     lipgloss.Style
	Pending  lipgloss.Style
}

// NewStyles creates a new Styles with the default theme.
func NewStyles() *Styles {
	return NewStylesWithTheme(DefaultTheme())
}

// NewStylesWithTheme creates a new Styles with a custom theme.
func NewStylesWithTheme(theme Theme) *Styles {
	s := &Styles{}
	s.apply(theme)
	return s
}

func (s *Styles) apply(theme Theme) {
	s.theme = theme

	s.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary)

	s.Body = lipgloss.NewStyle().
		Foreground(theme.Foreground)

	s.Muted = lipgloss.NewStyle().
		Foreground(theme.Muted)

	s.Bold = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Foreground)

	s.Success = lipgloss.NewStyle().
		Foreground(theme.Success)

	s.Error = lipgloss.NewStyle().
		Foreground(theme.Error)

	// The three input styles share a border so switching between them
	// does not shift the layout.
	s.Input = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	s.InputFocused = s.Input.
		BorderForeground(theme.Primary)

	s.InputInvalid = s.Input.
		BorderForeground(theme.Error)

	s.Cursor = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	s.Selected = lipgloss.NewStyle().
		Foreground(theme.Primary)

	s.Done = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Strikethrough(true)

	s.Pending = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Italic(true)
}

// Theme returns the current theme.
func (s *Styles) Theme() Theme {
	return s.theme
}

// UpdateTheme swaps the palette in place; holders of s see it on next render.
func (s *Styles) UpdateTheme(theme Theme) {
	s.apply(theme)
}

// RenderStatus renders a status message with appropriate styling.
func (s *Styles) RenderStatus(ok bool, message string) string {
	if ok {
		return s.Success.Render("✓ " + message)
	}
	return s.Error.Render("✗ " + message)
}

// RenderCheckbox renders a checkbox mark.
func (s *Styles) RenderCheckbox(checked bool) string {
	if checked {
		return s.Success.Render("[✓]")
	}
	return s.Body.Render("[ ]")
}
