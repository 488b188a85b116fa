package views

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/tui"
)

// rowPrefixWidth is the marker, checkbox and separating spaces.
const rowPrefixWidth = 6

// RowProps is what RenderItemRow needs from the screen.
type RowProps struct {
	Item        items.Item
	Selected    bool
	Editing     bool
	EditView    string
	EditInvalid bool
	Pending     bool
	Width       int
}

// RenderItemRow draws one line of the list: marker, checkbox and the name,
// or the edit input while the row is being renamed.
func RenderItemRow(styles *tui.Styles, p RowProps) string {
	marker := "  "
	if p.Selected {
		marker = styles.Cursor.Render("›") + " "
	}
	prefix := marker + styles.RenderCheckbox(p.Item.Completed) + " "

	if p.Editing {
		edit := p.EditView
		if p.EditInvalid {
			edit += " " + styles.Error.Render("too short")
		}
		return prefix + edit
	}

	name := p.Item.Name
	if p.Width > rowPrefixWidth {
		name = ansi.Truncate(name, p.Width-rowPrefixWidth, "…")
	}

	var style lipgloss.Style
	switch {
	case p.Pending:
		style = styles.Pending
	case p.Item.Completed:
		style = styles.Done
	case p.Selected:
		style = styles.Selected
	default:
		style = styles.Body
	}
	return prefix + style.Render(name)
}
