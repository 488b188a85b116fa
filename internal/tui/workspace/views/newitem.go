package views

import (
	"fmt"
	"strings"

	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/tui"
)

// FormProps is what RenderNewItemForm needs from the screen.
type FormProps struct {
	InputView  string
	Focused    bool
	Invalid    bool
	Submitting bool
	Width      int
}

// RenderNewItemForm draws the add-item input with its hint line.
func RenderNewItemForm(styles *tui.Styles, p FormProps) string {
	box := styles.Input
	switch {
	case p.Invalid:
		box = styles.InputInvalid
	case p.Focused:
		box = styles.InputFocused
	}
	if p.Width > 2 {
		// Width excludes the border.
		box = box.Width(p.Width - 2)
	}

	var hint string
	switch {
	case p.Submitting:
		hint = styles.Pending.Render("adding…")
	case p.Invalid:
		hint = styles.Error.Render(fmt.Sprintf("name must be at least %d characters", items.MinNameLength))
	case p.Focused:
		hint = styles.Muted.Render("enter to add · esc to leave")
	default:
		hint = styles.Muted.Render("a to add an item")
	}

	var b strings.Builder
	b.WriteString(box.Render(p.InputView))
	b.WriteString("\n")
	b.WriteString(hint)
	return b.String()
}
