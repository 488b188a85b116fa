package itemlist

import (
	"time"

	"github.com/shoplist/shoplist-cli/internal/items"
)

// Default blur delays. A blur is deferred so a click or key that
// caused it (save, submit) lands first.
const (
	DefaultEditBlurDelay    = 200 * time.Millisecond
	DefaultNewItemBlurDelay = 150 * time.Millisecond
)

// Rules parameterize Reduce.
type Rules struct {
	OwnerID          int64
	EditBlurDelay    time.Duration
	NewItemBlurDelay time.Duration
}

// DefaultRules returns Rules with the default delays.
func DefaultRules(ownerID int64) Rules {
	return Rules{
		OwnerID:          ownerID,
		EditBlurDelay:    DefaultEditBlurDelay,
		NewItemBlurDelay: DefaultNewItemBlurDelay,
	}
}

// Reduce applies ev to s.
func (r Rules) Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case NewItemChanged:
		s.NewItemText = ev.Text
		return s, nil

	case NewItemFocused:
		s.NewItemFocused = true
		s.Focus = FocusNewItem
		s.newItemBlur = 0
		return s, nil

	case NewItemBlurred:
		if s.Focus == FocusNewItem {
			s.Focus = FocusList
		}
		tok := s.nextToken()
		s.newItemBlur = tok
		return s, []Effect{StartTimer{Token: tok, Delay: r.NewItemBlurDelay}}

	case SubmitNewItem:
		return r.submit(s)

	case CreateSettled:
		s.IsSubmitting = false
		if ev.Err != nil {
			return s, []Effect{ReportError{Op: "create", Err: ev.Err}}
		}
		s.NewItemText = ""
		return s, nil

	case BeginEdit:
		s.editBlur = 0
		s.Editing = &Edit{ID: ev.Item.ID, Text: ev.Item.Name, Original: ev.Item.Name}
		s.Focus = FocusEdit
		return s, []Effect{FocusField{Focus: FocusEdit}}

	case EditChanged:
		if s.Editing != nil {
			e := *s.Editing
			e.Text = ev.Text
			s.Editing = &e
		}
		return s, nil

	case EditFocused:
		if s.Editing != nil {
			s.editBlur = 0
			s.Focus = FocusEdit
		}
		return s, nil

	case EditBlurred:
		if s.Editing == nil {
			return s, nil
		}
		if s.Focus == FocusEdit {
			s.Focus = FocusList
		}
		tok := s.nextToken()
		s.editBlur = tok
		return s, []Effect{StartTimer{Token: tok, Delay: r.EditBlurDelay}}

	case SaveEdit:
		return r.save(s)

	case CancelEdit:
		s.endEdit()
		return s, nil

	case TimerFired:
		return r.fire(s, ev.Token)

	case ToggleItem:
		return s, []Effect{UpdateItem{Update: items.Toggle(ev.Item)}}

	case DeleteItem:
		if s.IsEditing(ev.Item.ID) {
			s.endEdit()
		}
		return s, []Effect{RemoveItem{Ref: items.Ref{ID: ev.Item.ID}}}

	case FocusRows:
		s.Focus = FocusList
		return s, nil
	}
	return s, nil
}

func (r Rules) submit(s State) (State, []Effect) {
	if s.IsSubmitting {
		return s, nil
	}
	if !s.NewItemValid() {
		s.newItemBlur = 0
		s.NewItemFocused = true
		s.Focus = FocusNewItem
		return s, []Effect{FocusField{Focus: FocusNewItem}}
	}
	s.IsSubmitting = true
	return s, []Effect{CreateItem{Draft: items.Draft{
		Name:      s.NewItemText,
		Completed: false,
		OwnerID:   r.OwnerID,
	}}}
}

func (r Rules) save(s State) (State, []Effect) {
	if s.Editing == nil {
		return s, nil
	}
	s.editBlur = 0
	if !s.Editing.Valid() {
		s.Focus = FocusEdit
		return s, []Effect{FocusField{Focus: FocusEdit}}
	}
	id, name := s.Editing.ID, s.Editing.Text
	s.endEdit()
	return s, []Effect{UpdateItem{Update: items.Rename(id, name)}}
}

// fire runs the deferred transition for tok. Tokens that were superseded
// or cancelled are ignored.
func (r Rules) fire(s State, tok Token) (State, []Effect) {
	switch {
	case tok == 0:
	case tok == s.editBlur:
		// Blur abandons the edit whatever the text; the row shows the
		// item's current name again.
		s.endEdit()
	case tok == s.newItemBlur:
		s.newItemBlur = 0
		s.NewItemFocused = false
	}
	return s, nil
}
