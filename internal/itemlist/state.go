// Package itemlist holds the shopping list's interaction state and the
// rules that move it: the new-item form, the single inline edit, and the
// deferred blur transitions between them.
//
// Reduce is pure. It never performs I/O; it returns effects for the
// caller to run and feeds their outcomes back in as events.
package itemlist

import "github.com/shoplist/shoplist-cli/internal/items"

// Focus names the control that owns keyboard input.
type Focus int

const (
	FocusList Focus = iota
	FocusNewItem
	FocusEdit
)

func (f Focus) String() string {
	switch f {
	case FocusList:
		return "list"
	case FocusNewItem:
		return "new-item"
	case FocusEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Token identifies a deferred transition. Zero means none.
type Token uint64

// Edit is an in-progress rename of one row.
type Edit struct {
	ID       items.ID
	Text     string
	Original string
}

// Valid reports whether Text would be accepted on save.
func (e Edit) Valid() bool { return items.ValidEditName(e.Text) }

// State is everything the list screen needs besides the items themselves.
// At most one row is edited at a time.
type State struct {
	NewItemText    string
	NewItemFocused bool
	IsSubmitting   bool
	Editing        *Edit
	Focus          Focus

	newItemBlur Token
	editBlur    Token
	lastToken   Token
}

// NewItemValid reports whether the new-item text is long enough to submit.
func (s State) NewItemValid() bool { return items.ValidName(s.NewItemText) }

// ShowNewItemError reports whether the new-item field should be outlined
// as invalid: only while it has focus.
func (s State) ShowNewItemError() bool { return s.NewItemFocused && !s.NewItemValid() }

// IsEditing reports whether id is the row being edited.
func (s State) IsEditing(id items.ID) bool { return s.Editing != nil && s.Editing.ID == id }

func (s *State) nextToken() Token {
	s.lastToken++
	return s.lastToken
}

func (s *State) endEdit() {
	s.Editing = nil
	s.editBlur = 0
	if s.Focus == FocusEdit {
		s.Focus = FocusList
	}
}
