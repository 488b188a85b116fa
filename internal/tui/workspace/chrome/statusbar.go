// Package chrome provides always-visible shell components for the workspace.
package chrome

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/shoplist/shoplist-cli/internal/tui"
)

// StatusBar renders the bottom line: key hints on the left, the store
// address on the right.
type StatusBar struct {
	styles   *tui.Styles
	width    int
	endpoint string
	keyHints []key.Binding
}

// NewStatusBar creates a new status bar.
func NewStatusBar(styles *tui.Styles) StatusBar {
	return StatusBar{styles: styles}
}

// SetEndpoint sets the store address shown on the right.
func (s *StatusBar) SetEndpoint(url string) {
	s.endpoint = url
}

// SetKeyHints sets the key bindings shown as hints.
func (s *StatusBar) SetKeyHints(hints []key.Binding) {
	s.keyHints = hints
}

// SetWidth sets the available width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// View renders the status bar.
func (s StatusBar) View() string {
	if s.width <= 0 {
		return ""
	}

	theme := s.styles.Theme()
	keyStyle := lipgloss.NewStyle().Foreground(theme.Primary)
	descStyle := lipgloss.NewStyle().Foreground(theme.Muted)

	var hints []string
	for _, k := range s.keyHints {
		if !k.Enabled() {
			continue
		}
		help := k.Help()
		hints = append(hints, keyStyle.Render(help.Key)+descStyle.Render(" "+help.Desc))
	}
	left := strings.Join(hints, "  ")

	var right string
	if s.endpoint != "" {
		right = descStyle.Render(s.endpoint)
	}

	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return lipgloss.NewStyle().
		MaxWidth(s.width).
		Render(left + strings.Repeat(" ", gap) + right)
}
