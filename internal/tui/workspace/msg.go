// Package workspace is the full-screen shell around the shopping list:
// header, status bar, toast and help overlay.
package workspace

import (
	tea "github.com/charmbracelet/bubbletea"
)

// StatusMsg shows a transient message in the toast line.
type StatusMsg struct {
	Text    string
	IsError bool
}

// SetStatus returns a Cmd that shows text in the toast line.
func SetStatus(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text, IsError: isError}
	}
}

// ReportError returns a Cmd that shows err in the toast line.
func ReportError(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return SetStatus(err.Error(), true)
}
