package workspace

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface the workspace's screen implements.
type View interface {
	tea.Model

	// Title is shown in the header.
	Title() string

	// ShortHelp returns key bindings shown in the status bar.
	ShortHelp() []key.Binding

	// FullHelp returns all key bindings for the help overlay.
	FullHelp() [][]key.Binding

	// SetSize updates the view's available dimensions.
	SetSize(width, height int)
}

// InputCapturer is implemented by views with text inputs. While
// InputActive is true, the workspace forwards single-key bindings
// (q, ?) to the view instead of acting on them.
type InputCapturer interface {
	InputActive() bool
}
