// Package commands implements the shoplist subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/shoplist/shoplist-cli/internal/appctx"
	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/names"
	"github.com/shoplist/shoplist-cli/internal/output"
	"github.com/shoplist/shoplist-cli/internal/tui"
)

// requireApp returns the app stored on the command context by the root
// command's pre-run.
func requireApp(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

// resolveItem finds the item args[0] names, by id or part of its name.
// With no argument it lets the user pick one when a terminal is attached.
func resolveItem(ctx context.Context, app *appctx.App, args []string, prompt string) (items.Item, error) {
	if len(args) == 0 && !app.IsInteractive() {
		return items.Item{}, output.ErrUsageHint("Item ID or name required", "Run `shoplist items` to see item IDs")
	}

	list, err := app.Items.List(ctx)
	if err != nil {
		return items.Item{}, err
	}

	var id items.ID
	if len(args) > 0 {
		id, err = names.ResolveItem(list, args[0])
	} else {
		id, err = pickItem(items.SortNewestFirst(list), prompt)
	}
	if err != nil {
		return items.Item{}, err
	}

	item, ok := items.Find(list, id)
	if !ok {
		return items.Item{}, output.ErrNotFound("Item", id.String())
	}
	return item, nil
}

func pickItem(list []items.Item, prompt string) (items.ID, error) {
	if len(list) == 0 {
		return "", output.ErrUsageHint("The list is empty", "Add one with `shoplist items add <name>`")
	}
	options := make([]tui.SelectOption, len(list))
	for i, it := range list {
		mark := "[ ]"
		if it.Completed {
			mark = "[x]"
		}
		options[i] = tui.SelectOption{
			Value: it.ID.String(),
			Label: fmt.Sprintf("%s %s (#%s)", mark, it.Name, it.ID),
		}
	}
	value, err := tui.Select(prompt, options)
	if err != nil {
		return "", promptError(err)
	}
	return items.ID(value), nil
}

// promptError maps an aborted prompt to a cancellation.
func promptError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return output.ErrCanceled()
	}
	return err
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
