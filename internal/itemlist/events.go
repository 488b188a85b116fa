package itemlist

import (
	"time"

	"github.com/shoplist/shoplist-cli/internal/items"
)

// Event is an input to Reduce.
type Event interface{ event() }

type (
	// NewItemChanged carries the new-item field's text after an edit.
	NewItemChanged struct{ Text string }
	// NewItemFocused is sent when the new-item field gains focus.
	NewItemFocused struct{}
	// NewItemBlurred is sent when the new-item field loses focus.
	NewItemBlurred struct{}
	// SubmitNewItem asks to create an item from the field's text.
	SubmitNewItem struct{}
	// CreateSettled reports the outcome of a CreateItem effect.
	CreateSettled struct{ Err error }

	// BeginEdit starts renaming Item.
	BeginEdit struct{ Item items.Item }
	// EditChanged carries the edit field's text after an edit.
	EditChanged struct{ Text string }
	// EditFocused is sent when the edit field regains focus.
	EditFocused struct{}
	// EditBlurred is sent when the edit field loses focus.
	EditBlurred struct{}
	// SaveEdit asks to commit the edit.
	SaveEdit struct{}
	// CancelEdit abandons the edit without saving.
	CancelEdit struct{}

	// TimerFired delivers a StartTimer effect's token after its delay.
	TimerFired struct{ Token Token }

	ToggleItem struct{ Item items.Item }
	DeleteItem struct{ Item items.Item }

	// FocusRows moves keyboard focus back to the rows.
	FocusRows struct{}
)

func (NewItemChanged) event() {}
func (NewItemFocused) event() {}
func (NewItemBlurred) event() {}
func (SubmitNewItem) event()  {}
func (CreateSettled) event()  {}
func (BeginEdit) event()      {}
func (EditChanged) event()    {}
func (EditFocused) event()    {}
func (EditBlurred) event()    {}
func (SaveEdit) event()       {}
func (CancelEdit) event()     {}
func (TimerFired) event()     {}
func (ToggleItem) event()     {}
func (DeleteItem) event()     {}
func (FocusRows) event()      {}

// Effect is an output of Reduce for the caller to perform.
type Effect interface{ effect() }

type (
	// CreateItem posts Draft to the store. Answer with CreateSettled.
	CreateItem struct{ Draft items.Draft }
	// UpdateItem patches an item in the store.
	UpdateItem struct{ Update items.Update }
	// RemoveItem deletes an item from the store.
	RemoveItem struct{ Ref items.Ref }
	// StartTimer asks for TimerFired{Token} after Delay.
	StartTimer struct {
		Token Token
		Delay time.Duration
	}
	// FocusField moves input focus to a control.
	FocusField struct{ Focus Focus }
	// ReportError surfaces a failure that changes no state.
	ReportError struct {
		Op  string
		Err error
	}
)

func (CreateItem) effect()  {}
func (UpdateItem) effect()  {}
func (RemoveItem) effect()  {}
func (StartTimer) effect()  {}
func (FocusField) effect()  {}
func (ReportError) effect() {}
