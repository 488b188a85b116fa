package chrome

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shoplist/shoplist-cli/internal/tui"
)

// ToastDuration is how long a toast remains visible.
const ToastDuration = 3 * time.Second

// toastTickMsg dismisses the toast shown at generation.
type toastTickMsg struct {
	generation uint64
}

// Toast renders ephemeral status messages. A newer toast is never
// dismissed by an older toast's timer.
type Toast struct {
	styles     *tui.Styles
	width      int
	message    string
	isError    bool
	visible    bool
	generation uint64
}

// NewToast creates a new toast component.
func NewToast(styles *tui.Styles) Toast {
	return Toast{styles: styles}
}

// Show displays a toast message and returns its dismiss timer.
func (t *Toast) Show(message string, isError bool) tea.Cmd {
	t.generation++
	gen := t.generation
	t.message = message
	t.isError = isError
	t.visible = true
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastTickMsg{generation: gen}
	})
}

// SetWidth sets the available width.
func (t *Toast) SetWidth(w int) {
	t.width = w
}

// Visible returns whether the toast is currently displayed.
func (t *Toast) Visible() bool {
	return t.visible
}

// Update handles toast tick messages. Reports whether msg was consumed.
func (t *Toast) Update(msg tea.Msg) bool {
	tick, ok := msg.(toastTickMsg)
	if !ok {
		return false
	}
	if tick.generation == t.generation {
		t.visible = false
		t.message = ""
	}
	return true
}

// View renders the toast.
func (t Toast) View() string {
	if !t.visible || t.message == "" {
		return ""
	}

	theme := t.styles.Theme()
	fg := theme.Success
	if t.isError {
		fg = theme.Error
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Width(t.width).
		Render(t.message)
}
