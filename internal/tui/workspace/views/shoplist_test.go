package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist/shoplist-cli/internal/itemlist"
	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/items/itemstest"
	"github.com/shoplist/shoplist-cli/internal/output"
	"github.com/shoplist/shoplist-cli/internal/tui/workspace"
	"github.com/shoplist/shoplist-cli/internal/tui/workspace/data"
)

func sampleItems() []items.Item {
	return []items.Item{
		{ID: "1", Name: "Milk", OwnerID: 1, CreatedAt: 100},
		{ID: "2", Name: "Bread", OwnerID: 1, CreatedAt: 200},
	}
}

// scheduledTimer is a StartTimer effect captured instead of sleeping.
type scheduledTimer struct {
	delay time.Duration
	msg   tea.Msg
}

type listHarness struct {
	t      *testing.T
	view   *ShoppingList
	store  *itemstest.Store
	timers []scheduledTimer
}

// newListHarness builds a loaded list screen over an in-memory store.
func newListHarness(t *testing.T, list ...items.Item) *listHarness {
	t.Helper()
	store := itemstest.New(list...)
	session := workspace.NewTestSession(store)
	t.Cleanup(session.Shutdown)

	h := &listHarness{t: t, store: store}
	h.view = NewShoppingList(session)
	h.view.SetTick(func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
		h.timers = append(h.timers, scheduledTimer{delay: d, msg: fn(time.Time{})})
		return nil
	})
	h.view.SetSize(60, 20)
	h.drain(h.view.Init())
	return h
}

// drain runs cmd and every command its messages produce, synchronously.
// Spinner ticks are dropped so the loop terminates.
func (h *listHarness) drain(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			h.drain(c)
		}
	default:
		_, next := h.view.Update(msg)
		h.drain(next)
	}
}

func (h *listHarness) send(msgs ...tea.KeyMsg) {
	h.t.Helper()
	for _, m := range msgs {
		_, cmd := h.view.Update(m)
		h.drain(cmd)
	}
}

// sendNoDrain delivers a key and returns its command unexecuted.
func (h *listHarness) sendNoDrain(m tea.KeyMsg) tea.Cmd {
	_, cmd := h.view.Update(m)
	return cmd
}

func (h *listHarness) fireTimer(i int) {
	h.t.Helper()
	require.Less(h.t, i, len(h.timers))
	_, cmd := h.view.Update(h.timers[i].msg)
	h.drain(cmd)
}

func (h *listHarness) names() []string {
	var out []string
	for _, it := range h.view.Items() {
		out = append(out, it.Name)
	}
	return out
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter     = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc       = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab       = tea.KeyMsg{Type: tea.KeyTab}
	keySpace     = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyBackspace = tea.KeyMsg{Type: tea.KeyBackspace}
	keyCtrlS     = tea.KeyMsg{Type: tea.KeyCtrlS}
)

// --- Loading ---

func TestShoppingList_Loading_ShowsSpinnerUntilFetched(t *testing.T) {
	store := itemstest.New(sampleItems()...)
	session := workspace.NewTestSession(store)
	defer session.Shutdown()

	v := NewShoppingList(session)
	assert.Contains(t, v.View(), "Loading…")

	msg := session.Hub().Items().Fetch(session.Context())()
	v.Update(msg)

	assert.NotContains(t, v.View(), "Loading…")
	assert.Contains(t, v.View(), "Bread")
}

func TestShoppingList_Loaded_NewestFirst(t *testing.T) {
	h := newListHarness(t, sampleItems()...)
	assert.Equal(t, []string{"Bread", "Milk"}, h.names())

	sel, ok := h.view.Selected()
	require.True(t, ok)
	assert.Equal(t, "Bread", sel.Name)
}

func TestShoppingList_Empty_ShowsHint(t *testing.T) {
	h := newListHarness(t)
	assert.Contains(t, h.view.View(), "Nothing on the list")
}

func TestShoppingList_ListError_ReplacesRowsAndRetries(t *testing.T) {
	store := itemstest.New(sampleItems()...)
	store.ListErr = errors.New("connection refused")
	session := workspace.NewTestSession(store)
	defer session.Shutdown()

	h := &listHarness{t: t, store: store, view: NewShoppingList(session)}
	h.drain(h.view.Init())

	out := h.view.View()
	assert.Contains(t, out, "Error: connection refused")
	assert.Contains(t, out, "press r to retry")

	store.ListErr = nil
	h.send(keyRunes("r"))
	assert.Equal(t, []string{"Bread", "Milk"}, h.names())
	assert.NotContains(t, h.view.View(), "Error")
}

// --- Navigation ---

func TestShoppingList_Cursor_MovesAndClamps(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("j"), keyRunes("j"))
	sel, _ := h.view.Selected()
	assert.Equal(t, "Milk", sel.Name)

	h.send(keyRunes("k"), keyRunes("k"))
	sel, _ = h.view.Selected()
	assert.Equal(t, "Bread", sel.Name)
}

// --- New item ---

func TestShoppingList_NewItem_SubmitCreates(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("a"))
	assert.True(t, h.view.InputActive())
	assert.Equal(t, itemlist.FocusNewItem, h.view.State().Focus)

	h.send(keyRunes("Eggs"))
	assert.Equal(t, "Eggs", h.view.State().NewItemText)

	cmd := h.sendNoDrain(keyEnter)
	require.NotNil(t, cmd)
	assert.True(t, h.view.State().IsSubmitting)
	assert.Contains(t, h.view.View(), "adding…")
	assert.True(t, h.view.Items()[0].ID.IsTemp(), "placeholder shown before the store answers")

	h.drain(cmd)

	mutations := h.store.Mutations()
	require.Len(t, mutations, 1)
	assert.Equal(t, "Create", mutations[0].Op)
	assert.Equal(t, items.Draft{Name: "Eggs", Completed: false, OwnerID: 1}, mutations[0].Draft)

	st := h.view.State()
	assert.False(t, st.IsSubmitting)
	assert.Empty(t, st.NewItemText)
	assert.Contains(t, h.names(), "Eggs")
	for _, it := range h.view.Items() {
		assert.False(t, it.ID.IsTemp())
	}
}

func TestShoppingList_NewItem_TooShortDoesNotSubmit(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("a"), keyRunes("E"), keyEnter)

	assert.Empty(t, h.store.Mutations())
	assert.Equal(t, itemlist.FocusNewItem, h.view.State().Focus)
	assert.Contains(t, h.view.View(), "at least 2 characters")
}

func TestShoppingList_NewItem_EnterWhileSubmittingIgnored(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("a"), keyRunes("Eggs"))
	first := h.sendNoDrain(keyEnter)
	second := h.sendNoDrain(keyEnter)
	assert.Nil(t, second)

	h.drain(first)
	assert.Len(t, h.store.Mutations(), 1)
}

func TestShoppingList_NewItem_CreateFailureKeepsText(t *testing.T) {
	h := newListHarness(t, sampleItems()...)
	h.store.CreateErr = errors.New("boom")

	h.send(keyRunes("a"), keyRunes("Eggs"), keyEnter)

	st := h.view.State()
	assert.False(t, st.IsSubmitting)
	assert.Equal(t, "Eggs", st.NewItemText)
	assert.Equal(t, []string{"Bread", "Milk"}, h.names(), "placeholder rolled back")
	assert.NotContains(t, h.view.View(), "Error", "create failures are not shown")
}

func TestShoppingList_NewItem_BlurIsDeferred(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("a"), keyEsc)
	assert.False(t, h.view.InputActive())
	assert.True(t, h.view.State().NewItemFocused)
	require.Len(t, h.timers, 1)
	assert.Equal(t, itemlist.DefaultNewItemBlurDelay, h.timers[0].delay)

	h.fireTimer(0)
	assert.False(t, h.view.State().NewItemFocused)
}

func TestShoppingList_TempRow_IgnoresKeys(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("a"), keyRunes("Eggs"))
	pending := h.sendNoDrain(keyEnter)
	require.NotNil(t, pending)

	h.send(keyEsc, keyRunes("k"))
	sel, ok := h.view.Selected()
	require.True(t, ok)
	require.True(t, sel.ID.IsTemp())

	h.send(keyRunes("d"), keySpace, keyRunes("e"))
	assert.Empty(t, h.store.Mutations())
	assert.Nil(t, h.view.State().Editing)
}

// --- Toggle and delete ---

func TestShoppingList_Toggle_SendsFullPayload(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keySpace)

	mutations := h.store.Mutations()
	require.Len(t, mutations, 1)
	u := mutations[0].Update
	assert.Equal(t, items.ID("2"), u.ID)
	require.NotNil(t, u.Completed)
	assert.True(t, *u.Completed)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Bread", *u.Name)
	assert.True(t, h.view.Items()[0].Completed)
}

func TestShoppingList_Delete_RemovesRow(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	cmd := h.sendNoDrain(keyRunes("d"))
	assert.Equal(t, []string{"Milk"}, h.names(), "removed before the store answers")

	h.drain(cmd)
	mutations := h.store.Mutations()
	require.Len(t, mutations, 1)
	assert.Equal(t, "Delete", mutations[0].Op)
	assert.Equal(t, []string{"Milk"}, h.names())
}

func TestShoppingList_UpdateFailure_ShowsError(t *testing.T) {
	h := newListHarness(t, sampleItems()...)
	h.store.UpdateErr = output.ErrNotFound("Item", "2")

	h.send(keySpace)

	out := h.view.View()
	assert.Contains(t, out, "Item not found: 2")
	assert.Contains(t, out, "press r to retry")

	h.store.UpdateErr = nil
	h.send(keyRunes("r"))
	assert.NotContains(t, h.view.View(), "not found")
	assert.False(t, h.view.Items()[0].Completed, "optimistic toggle rolled back")
}

func TestShoppingList_Failed_OnlyRetryActs(t *testing.T) {
	h := newListHarness(t, sampleItems()...)
	h.store.UpdateErr = errors.New("server error")
	h.send(keySpace)
	require.Len(t, h.store.Mutations(), 1)

	h.send(keySpace, keyRunes("e"), keyRunes("d"), keyRunes("a"))
	assert.Len(t, h.store.Mutations(), 1, "hidden rows are not acted on")
	assert.Nil(t, h.view.State().Editing)
	assert.Equal(t, itemlist.FocusList, h.view.State().Focus)

	h.store.UpdateErr = nil
	h.send(keyRunes("r"))
	assert.False(t, h.view.pool.Get().Failed())

	h.send(keyRunes("d"))
	assert.Len(t, h.store.Mutations(), 2)
}

func TestShoppingList_FailureWhileEditing_ReturnsFocusToRows(t *testing.T) {
	h := newListHarness(t, sampleItems()...)
	h.send(keyRunes("e"))
	require.True(t, h.view.InputActive())

	_, cmd := h.view.Update(data.MutationErrorMsg{
		Key:      data.ItemsKey,
		Mutation: &data.UpdateItemMutation{},
		Err:      errors.New("server error"),
	})
	h.drain(cmd)

	assert.Equal(t, itemlist.FocusList, h.view.State().Focus)
	assert.False(t, h.view.InputActive())
	assert.Contains(t, h.view.View(), "press r to retry")
}

func TestShoppingList_Refresh_RefetchesFreshList(t *testing.T) {
	h := newListHarness(t, sampleItems()...)
	_, err := h.store.Create(context.Background(), items.Draft{Name: "Eggs", CreatedAt: 300})
	require.NoError(t, err)

	h.send(keyRunes("r"))
	assert.Equal(t, []string{"Eggs", "Bread", "Milk"}, h.names())
}

func TestShoppingList_Focus_RefetchesOnlyWhenStale(t *testing.T) {
	h := newListHarness(t, sampleItems()...)
	_, err := h.store.Create(context.Background(), items.Draft{Name: "Eggs", CreatedAt: 300})
	require.NoError(t, err)

	_, cmd := h.view.Update(tea.FocusMsg{})
	assert.Nil(t, cmd, "fresh list is not refetched")

	h.view.session.Hub().Invalidate(data.ItemsKey)
	_, cmd = h.view.Update(tea.FocusMsg{})
	h.drain(cmd)
	assert.Equal(t, []string{"Eggs", "Bread", "Milk"}, h.names())
}

// --- Rename ---

func TestShoppingList_Rename_EnterSaves(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("e"))
	require.NotNil(t, h.view.State().Editing)
	assert.Equal(t, itemlist.FocusEdit, h.view.State().Focus)
	assert.True(t, h.view.InputActive())

	h.send(keyRunes("s"), keyEnter)

	mutations := h.store.Mutations()
	require.Len(t, mutations, 1)
	u := mutations[0].Update
	require.NotNil(t, u.Name)
	assert.Equal(t, "Breads", *u.Name)
	assert.Nil(t, u.Completed, "rename is a partial update")
	assert.Nil(t, h.view.State().Editing)
	assert.Equal(t, "Breads", h.view.Items()[0].Name)
}

func TestShoppingList_Rename_TooShortStaysEditing(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("e"), keyBackspace, keyBackspace, keyBackspace, keyBackspace, keyEnter)

	assert.Empty(t, h.store.Mutations())
	require.NotNil(t, h.view.State().Editing)
	assert.Equal(t, "B", h.view.State().Editing.Text)
	assert.Contains(t, h.view.View(), "too short")
}

func TestShoppingList_Rename_EscCancels(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("e"), keyRunes("xx"), keyEsc)

	assert.Nil(t, h.view.State().Editing)
	assert.Empty(t, h.store.Mutations())
	assert.Contains(t, h.view.View(), "Bread")
}

func TestShoppingList_Rename_BlurRevertsAfterDelay(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("e"), keyRunes("xx"), keyTab)
	require.NotNil(t, h.view.State().Editing, "blur is deferred")
	require.Len(t, h.timers, 1)
	assert.Equal(t, itemlist.DefaultEditBlurDelay, h.timers[0].delay)

	h.fireTimer(0)
	assert.Nil(t, h.view.State().Editing)
	assert.Empty(t, h.store.Mutations())
	assert.NotContains(t, h.view.View(), "Breadxx")
}

func TestShoppingList_Rename_SaveBeatsPendingBlur(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("e"), keyRunes("s"), keyTab, keyCtrlS)
	require.Len(t, h.store.Mutations(), 1)

	h.fireTimer(0)
	assert.Len(t, h.store.Mutations(), 1)
	assert.Equal(t, "Breads", h.view.Items()[0].Name)
}

func TestShoppingList_Rename_RefocusCancelsBlur(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("e"), keyTab, keyRunes("e"))
	assert.Equal(t, itemlist.FocusEdit, h.view.State().Focus)

	h.fireTimer(0)
	assert.NotNil(t, h.view.State().Editing, "stale blur ignored")
}

func TestShoppingList_Rename_OneRowAtATime(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("e"), keyTab, keyRunes("j"), keyRunes("e"))

	e := h.view.State().Editing
	require.NotNil(t, e)
	assert.Equal(t, items.ID("1"), e.ID)
	assert.Equal(t, "Milk", e.Text)
}

func TestShoppingList_DeleteEditedRow_EndsEdit(t *testing.T) {
	h := newListHarness(t, sampleItems()...)

	h.send(keyRunes("e"), keyTab, keyRunes("d"))

	assert.Nil(t, h.view.State().Editing)
	assert.Equal(t, []string{"Milk"}, h.names())
}

// --- Help ---

func TestShoppingList_ShortHelp_FollowsFocus(t *testing.T) {
	h := newListHarness(t, sampleItems()...)
	assert.Len(t, h.view.ShortHelp(), 4)

	h.send(keyRunes("a"))
	assert.Len(t, h.view.ShortHelp(), 2)

	h.send(keyTab, keyRunes("e"))
	assert.Len(t, h.view.ShortHelp(), 3)
}

func TestShoppingList_Title(t *testing.T) {
	h := newListHarness(t)
	assert.Equal(t, "Shopping List", h.view.Title())
}
