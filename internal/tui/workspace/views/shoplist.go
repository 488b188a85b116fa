// Package views holds the workspace screens.
package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/shoplist/shoplist-cli/internal/itemlist"
	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/tui"
	"github.com/shoplist/shoplist-cli/internal/tui/workspace"
	"github.com/shoplist/shoplist-cli/internal/tui/workspace/data"
)

// formHeight is the new-item box, its hint and a blank line.
const formHeight = 5

// shoppingListKeyMap defines the list screen's keybindings.
type shoppingListKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Edit    key.Binding
	Delete  key.Binding
	New     key.Binding
	Refresh key.Binding
	Save    key.Binding
	Submit  key.Binding
	Leave   key.Binding
	Cancel  key.Binding
}

func defaultShoppingListKeyMap() shoppingListKeyMap {
	return shoppingListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		New: key.NewBinding(
			key.WithKeys("a", "tab"),
			key.WithHelp("a", "add"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Leave: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "back to list"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// timerFiredMsg delivers a deferred blur.
type timerFiredMsg struct {
	token itemlist.Token
}

// TickFunc schedules a message after a delay. tea.Tick in production.
type TickFunc func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

// ShoppingList is the list screen: the new-item form above the rows.
// Interaction state lives in an itemlist.State; this model translates keys
// into its events and runs the effects it returns.
type ShoppingList struct {
	session *workspace.Session
	styles  *tui.Styles
	keys    shoppingListKeyMap
	rules   itemlist.Rules
	pool    *data.MutatingPool[[]items.Item]
	logger  zerolog.Logger
	tick    TickFunc

	state itemlist.State

	newInput  textinput.Model
	editInput textinput.Model
	spinner   spinner.Model

	list       []items.Item
	selectedID items.ID
	cursor     int
	offset     int

	// pendingCreate is the create in flight, matched against mutation
	// results so only its outcome settles the form.
	pendingCreate *data.CreateItemMutation

	width, height int
}

// NewShoppingList creates the list screen.
func NewShoppingList(session *workspace.Session) *ShoppingList {
	styles := session.Styles()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Theme().Primary)

	return &ShoppingList{
		session:   session,
		styles:    styles,
		keys:      defaultShoppingListKeyMap(),
		rules:     session.Rules(),
		pool:      session.Hub().Items(),
		logger:    session.Logger().With().Str("view", "shoplist").Logger(),
		tick:      tea.Tick,
		newInput:  newTextInput("Add an item…"),
		editInput: newTextInput(""),
		spinner:   s,
	}
}

func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Prompt = ""
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// SetTick replaces the timer scheduler.
func (v *ShoppingList) SetTick(fn TickFunc) { v.tick = fn }

// State returns the current interaction state.
func (v *ShoppingList) State() itemlist.State { return v.state }

// Items returns the rows as currently shown.
func (v *ShoppingList) Items() []items.Item { return v.list }

// Selected returns the row under the cursor.
func (v *ShoppingList) Selected() (items.Item, bool) {
	if v.cursor < 0 || v.cursor >= len(v.list) {
		return items.Item{}, false
	}
	return v.list[v.cursor], true
}

// Title implements workspace.View.
func (v *ShoppingList) Title() string { return "Shopping List" }

// InputActive implements workspace.InputCapturer.
func (v *ShoppingList) InputActive() bool {
	return v.state.Focus != itemlist.FocusList
}

// ShortHelp implements workspace.View.
func (v *ShoppingList) ShortHelp() []key.Binding {
	switch v.state.Focus {
	case itemlist.FocusNewItem:
		return []key.Binding{v.keys.Submit, v.keys.Leave}
	case itemlist.FocusEdit:
		return []key.Binding{v.keys.Submit, v.keys.Cancel, v.keys.Leave}
	default:
		return []key.Binding{v.keys.Toggle, v.keys.Edit, v.keys.Delete, v.keys.New}
	}
}

// FullHelp implements workspace.View.
func (v *ShoppingList) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{v.keys.Up, v.keys.Down, v.keys.Toggle, v.keys.Edit, v.keys.Delete},
		{v.keys.New, v.keys.Refresh, v.keys.Save, v.keys.Cancel},
	}
}

// SetSize implements workspace.View.
func (v *ShoppingList) SetSize(width, height int) {
	v.width = width
	v.height = height
	inputWidth := max(width-4, 10)
	v.newInput.Width = inputWidth
	v.editInput.Width = max(width-rowPrefixWidth-12, 10)
	v.scrollToCursor()
}

// Init implements tea.Model.
func (v *ShoppingList) Init() tea.Cmd {
	v.syncList()
	return tea.Batch(v.pool.FetchIfStale(v.session.Context()), v.spinner.Tick)
}

// Update implements tea.Model.
func (v *ShoppingList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case data.PoolUpdatedMsg:
		if msg.Key == data.ItemsKey {
			v.syncList()
		}
		return v, nil

	case data.MutationDoneMsg:
		if msg.Key != data.ItemsKey {
			return v, nil
		}
		var cmd tea.Cmd
		if v.isPendingCreate(msg.Mutation) {
			if it, ok := v.pendingCreate.Created(); ok {
				v.logger.Debug().Str("item_id", it.ID.String()).Msg("item created")
			}
			v.pendingCreate = nil
			cmd = v.dispatch(itemlist.CreateSettled{})
		}
		v.logger.Debug().Int("pending", v.pool.Pending()).Msg("item mutation done")
		v.syncList()
		return v, cmd

	case data.MutationErrorMsg:
		if msg.Key != data.ItemsKey {
			return v, nil
		}
		if v.isPendingCreate(msg.Mutation) {
			v.pendingCreate = nil
			cmd := v.dispatch(itemlist.CreateSettled{Err: msg.Err})
			v.syncList()
			return v, cmd
		}
		v.logger.Error().Err(msg.Err).Msg("item mutation failed")
		v.pool.Fail(msg.Err)
		v.syncList()
		// Keys go back to the rows, where r retries.
		return v, v.dispatch(itemlist.FocusRows{})

	case tea.FocusMsg:
		return v, v.pool.FetchIfStale(v.session.Context())

	case timerFiredMsg:
		return v, v.dispatch(itemlist.TimerFired{Token: msg.token})

	case spinner.TickMsg:
		if !v.showSpinner() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *ShoppingList) isPendingCreate(m any) bool {
	c, ok := m.(*data.CreateItemMutation)
	return ok && v.pendingCreate != nil && c == v.pendingCreate
}

func (v *ShoppingList) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Rows are hidden behind the error screen; only a retry acts.
	if v.pool.Get().Failed() && v.state.Focus != itemlist.FocusNewItem {
		if key.Matches(msg, v.keys.Refresh) {
			return v.refresh()
		}
		return nil
	}

	// The save chord works from any focus, so it can race a pending blur.
	if key.Matches(msg, v.keys.Save) {
		return v.dispatch(itemlist.SaveEdit{})
	}

	switch v.state.Focus {
	case itemlist.FocusNewItem:
		return v.handleNewItemKey(msg)
	case itemlist.FocusEdit:
		return v.handleEditKey(msg)
	default:
		return v.handleListKey(msg)
	}
}

func (v *ShoppingList) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.moveCursor(-1)
		return nil
	case key.Matches(msg, v.keys.Down):
		v.moveCursor(1)
		return nil
	case key.Matches(msg, v.keys.New):
		return v.dispatch(itemlist.NewItemFocused{})
	case key.Matches(msg, v.keys.Refresh):
		return v.refresh()
	case key.Matches(msg, v.keys.Cancel):
		if v.state.Editing != nil {
			return v.dispatch(itemlist.CancelEdit{})
		}
		return nil
	}

	item, ok := v.Selected()
	// Placeholders for creates in flight have no store id yet.
	if !ok || item.ID.IsTemp() {
		return nil
	}

	switch {
	case key.Matches(msg, v.keys.Toggle):
		return v.dispatch(itemlist.ToggleItem{Item: item})
	case key.Matches(msg, v.keys.Edit):
		if v.state.IsEditing(item.ID) {
			return v.dispatch(itemlist.EditFocused{})
		}
		return v.dispatch(itemlist.BeginEdit{Item: item})
	case key.Matches(msg, v.keys.Delete):
		return v.dispatch(itemlist.DeleteItem{Item: item})
	}
	return nil
}

// refresh marks the list stale and refetches it.
func (v *ShoppingList) refresh() tea.Cmd {
	v.session.Hub().Invalidate(data.ItemsKey)
	return tea.Batch(v.pool.FetchIfStale(v.session.Context()), v.spinner.Tick)
}

func (v *ShoppingList) handleNewItemKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Submit):
		return v.dispatch(itemlist.SubmitNewItem{})
	case key.Matches(msg, v.keys.Leave), key.Matches(msg, v.keys.Cancel):
		return v.dispatch(itemlist.NewItemBlurred{})
	}

	var cmd tea.Cmd
	v.newInput, cmd = v.newInput.Update(msg)
	if text := v.newInput.Value(); text != v.state.NewItemText {
		return tea.Batch(cmd, v.dispatch(itemlist.NewItemChanged{Text: text}))
	}
	return cmd
}

func (v *ShoppingList) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Submit):
		return v.dispatch(itemlist.SaveEdit{})
	case key.Matches(msg, v.keys.Cancel):
		return v.dispatch(itemlist.CancelEdit{})
	case key.Matches(msg, v.keys.Leave):
		return v.dispatch(itemlist.EditBlurred{})
	}

	var cmd tea.Cmd
	v.editInput, cmd = v.editInput.Update(msg)
	if e := v.state.Editing; e != nil && v.editInput.Value() != e.Text {
		return tea.Batch(cmd, v.dispatch(itemlist.EditChanged{Text: v.editInput.Value()}))
	}
	return cmd
}

// dispatch feeds ev to the reducer, syncs the inputs to the new state and
// runs the resulting effects.
func (v *ShoppingList) dispatch(ev itemlist.Event) tea.Cmd {
	prevEdit := v.state.Editing
	next, effects := v.rules.Reduce(v.state, ev)
	v.state = next
	v.syncInputs(prevEdit)

	cmds := make([]tea.Cmd, 0, len(effects))
	for _, eff := range effects {
		if cmd := v.run(eff); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

func (v *ShoppingList) run(eff itemlist.Effect) tea.Cmd {
	ctx := v.session.Context()
	store := v.session.Hub().Store()

	switch eff := eff.(type) {
	case itemlist.CreateItem:
		m := &data.CreateItemMutation{Draft: eff.Draft, Store: store}
		v.pendingCreate = m
		cmd := v.pool.Apply(ctx, m)
		v.syncList()
		return cmd

	case itemlist.UpdateItem:
		cmd := v.pool.Apply(ctx, &data.UpdateItemMutation{Update: eff.Update, Store: store})
		v.syncList()
		return cmd

	case itemlist.RemoveItem:
		cmd := v.pool.Apply(ctx, &data.DeleteItemMutation{Ref: eff.Ref, Store: store})
		v.syncList()
		return cmd

	case itemlist.StartTimer:
		tok := eff.Token
		return v.tick(eff.Delay, func(time.Time) tea.Msg {
			return timerFiredMsg{token: tok}
		})

	case itemlist.FocusField:
		v.focusInputs(eff.Focus)
		return nil

	case itemlist.ReportError:
		v.logger.Error().Err(eff.Err).Str("op", eff.Op).Msg("item " + eff.Op + " failed")
		return nil
	}
	return nil
}

// syncInputs brings the text inputs in line with state.
func (v *ShoppingList) syncInputs(prevEdit *itemlist.Edit) {
	if v.newInput.Value() != v.state.NewItemText {
		v.newInput.SetValue(v.state.NewItemText)
	}

	if e := v.state.Editing; e != nil {
		if prevEdit == nil || prevEdit.ID != e.ID {
			v.editInput.SetValue(e.Text)
			v.editInput.CursorEnd()
		}
	} else {
		v.editInput.SetValue("")
	}

	v.focusInputs(v.state.Focus)
}

func (v *ShoppingList) focusInputs(f itemlist.Focus) {
	if f == itemlist.FocusNewItem {
		_ = v.newInput.Focus()
	} else {
		v.newInput.Blur()
	}
	if f == itemlist.FocusEdit {
		_ = v.editInput.Focus()
	} else {
		v.editInput.Blur()
	}
}

// syncList copies the pool's rows and keeps the cursor on the same item.
func (v *ShoppingList) syncList() {
	snap := v.pool.Get()
	if snap.Usable() {
		v.list = snap.Data
	}

	if v.selectedID != "" {
		for i, it := range v.list {
			if it.ID == v.selectedID {
				v.cursor = i
				v.scrollToCursor()
				return
			}
		}
	}
	v.cursor = min(max(v.cursor, 0), max(len(v.list)-1, 0))
	if it, ok := v.Selected(); ok {
		v.selectedID = it.ID
	}
	v.scrollToCursor()
}

func (v *ShoppingList) moveCursor(delta int) {
	if len(v.list) == 0 {
		return
	}
	v.cursor = min(max(v.cursor+delta, 0), len(v.list)-1)
	v.selectedID = v.list[v.cursor].ID
	v.scrollToCursor()
}

func (v *ShoppingList) visibleRows() int {
	if v.height <= 0 {
		return len(v.list)
	}
	return max(v.height-formHeight, 1)
}

func (v *ShoppingList) scrollToCursor() {
	rows := v.visibleRows()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+rows {
		v.offset = v.cursor - rows + 1
	}
	v.offset = max(min(v.offset, len(v.list)-rows), 0)
}

func (v *ShoppingList) showSpinner() bool {
	snap := v.pool.Get()
	return !snap.Usable() && !snap.Failed()
}

// View implements tea.Model.
func (v *ShoppingList) View() string {
	var b strings.Builder
	b.WriteString(RenderNewItemForm(v.styles, FormProps{
		InputView:  v.newInput.View(),
		Focused:    v.state.NewItemFocused,
		Invalid:    v.state.ShowNewItemError(),
		Submitting: v.state.IsSubmitting,
		Width:      v.width,
	}))
	b.WriteString("\n\n")
	b.WriteString(v.renderBody())
	return b.String()
}

func (v *ShoppingList) renderBody() string {
	snap := v.pool.Get()

	switch {
	case snap.Failed():
		msg := "Error"
		if snap.Err != nil {
			msg = "Error: " + snap.Err.Error()
		}
		return v.styles.Error.Render(msg) + "\n" + v.styles.Muted.Render("press r to retry")
	case !snap.Usable():
		return v.spinner.View() + " " + v.styles.Muted.Render("Loading…")
	case len(v.list) == 0:
		return v.styles.Muted.Render("Nothing on the list. Press a to add an item.")
	}

	end := min(v.offset+v.visibleRows(), len(v.list))
	lines := make([]string, 0, end-v.offset)
	for i := v.offset; i < end; i++ {
		it := v.list[i]
		editing := v.state.IsEditing(it.ID)
		props := RowProps{
			Item:     it,
			Selected: i == v.cursor && v.state.Focus == itemlist.FocusList,
			Editing:  editing,
			Pending:  it.ID.IsTemp(),
			Width:    v.width,
		}
		if editing {
			props.EditView = v.editInput.View()
			props.EditInvalid = !v.state.Editing.Valid()
		}
		lines = append(lines, RenderItemRow(v.styles, props))
	}
	return strings.Join(lines, "\n")
}
