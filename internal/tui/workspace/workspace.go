package workspace

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shoplist/shoplist-cli/internal/tui"
	"github.com/shoplist/shoplist-cli/internal/tui/workspace/chrome"
)

// chromeHeight is the vertical space reserved for title + divider + toast + status bar.
const chromeHeight = 4

// Workspace is the root tea.Model for the full-screen list.
type Workspace struct {
	session *Session
	view    View
	styles  *tui.Styles
	keys    GlobalKeyMap

	statusBar chrome.StatusBar
	toast     chrome.Toast
	help      help.Model

	showHelp bool
	quitting bool

	width, height int
}

// ViewFactory builds the workspace's screen.
type ViewFactory func(session *Session) View

// New creates a new Workspace model.
func New(session *Session, factory ViewFactory) *Workspace {
	styles := session.Styles()
	w := &Workspace{
		session:   session,
		styles:    styles,
		keys:      DefaultGlobalKeyMap(),
		statusBar: chrome.NewStatusBar(styles),
		toast:     chrome.NewToast(styles),
		help:      help.New(),
	}
	w.help.ShowAll = true
	w.view = factory(session)
	if app := session.App(); app != nil && app.Config != nil {
		w.statusBar.SetEndpoint(app.Config.BaseURL)
	}
	w.syncChrome()
	return w
}

// Init implements tea.Model.
func (w *Workspace) Init() tea.Cmd {
	return tea.Batch(w.view.Init(), chrome.SetTerminalTitle("shoplist"))
}

// Update implements tea.Model.
func (w *Workspace) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		w.relayout()
		return w, nil

	case tea.KeyMsg:
		return w, w.handleKey(msg)

	case StatusMsg:
		return w, w.toast.Show(msg.Text, msg.IsError)
	}

	if w.toast.Update(msg) {
		return w, nil
	}

	return w, w.forward(msg)
}

func (w *Workspace) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, w.keys.ForceQuit) {
		return w.quit()
	}

	// Help overlay consumes the next key.
	if w.showHelp {
		w.showHelp = false
		return nil
	}

	// While a text input has focus, single-key globals belong to the view.
	if ic, ok := w.view.(InputCapturer); ok && ic.InputActive() {
		return w.forward(msg)
	}

	switch {
	case key.Matches(msg, w.keys.Quit):
		return w.quit()
	case key.Matches(msg, w.keys.Help):
		w.showHelp = true
		return nil
	}
	return w.forward(msg)
}

func (w *Workspace) forward(msg tea.Msg) tea.Cmd {
	updated, cmd := w.view.Update(msg)
	if v, ok := updated.(View); ok {
		w.view = v
	}
	// Hints depend on focus, which may have changed.
	w.statusBar.SetKeyHints(w.hints())
	return cmd
}

func (w *Workspace) quit() tea.Cmd {
	w.quitting = true
	w.session.Shutdown()
	return tea.Quit
}

func (w *Workspace) hints() []key.Binding {
	return append(w.view.ShortHelp(), w.keys.ShortHelp()...)
}

func (w *Workspace) syncChrome() {
	w.statusBar.SetKeyHints(w.hints())
}

func (w *Workspace) relayout() {
	w.statusBar.SetWidth(w.width)
	w.toast.SetWidth(w.width)
	w.help.Width = w.width
	w.view.SetSize(w.width, w.viewHeight())
}

func (w *Workspace) viewHeight() int {
	return max(w.height-chromeHeight, 1)
}

// Quitting reports whether the user asked to leave.
func (w *Workspace) Quitting() bool { return w.quitting }

// HelpVisible reports whether the help overlay is showing.
func (w *Workspace) HelpVisible() bool { return w.showHelp }

// CurrentView returns the workspace's screen.
func (w *Workspace) CurrentView() View { return w.view }

// View implements tea.Model.
func (w *Workspace) View() string {
	if w.quitting {
		return ""
	}

	theme := w.styles.Theme()
	sections := []string{w.styles.Title.Render(w.view.Title())}

	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Border).
		Render(strings.Repeat("─", w.width)))

	if w.showHelp {
		groups := append(w.view.FullHelp(), w.keys.FullHelp()...)
		sections = append(sections, w.help.FullHelpView(groups))
	} else {
		sections = append(sections, w.view.View())
	}

	if w.toast.Visible() {
		sections = append(sections, w.toast.View())
	}
	sections = append(sections, w.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
