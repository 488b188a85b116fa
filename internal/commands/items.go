package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shoplist/shoplist-cli/internal/appctx"
	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/output"
	"github.com/shoplist/shoplist-cli/internal/tui"
)

// NewItemsCmd creates the items command group.
func NewItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item", "ls"},
		Short:   "List and change shopping list items",
		Long:    "List the shopping list newest first, or add, rename, check off and remove items.",
		Args:    cobra.NoArgs,
		RunE:    RunItemsList,
	}

	cmd.AddCommand(
		newItemsListCmd(),
		newItemsAddCmd(),
		newItemsRenameCmd(),
		newItemsCompleteCmd("done", "Mark an item as bought", true),
		newItemsCompleteCmd("undone", "Mark an item as not bought", false),
		newItemsRemoveCmd(),
	)
	return cmd
}

func newItemsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items, newest first",
		Args:  cobra.NoArgs,
		RunE:  RunItemsList,
	}
}

// RunItemsList prints the list newest first. The root command falls back
// to it when no terminal is attached.
func RunItemsList(cmd *cobra.Command, _ []string) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	list, err := app.Items.List(cmd.Context())
	if err != nil {
		return err
	}
	list = items.SortNewestFirst(list)

	open := 0
	for _, it := range list {
		if !it.Completed {
			open++
		}
	}

	return app.OK(list,
		output.WithSummary(fmt.Sprintf("%s, %d to buy", pluralize(len(list), "item", "items"), open)),
		output.WithBreadcrumbs(
			output.Breadcrumb{Action: "add", Cmd: "shoplist items add <name>", Description: "Add an item"},
			output.Breadcrumb{Action: "done", Cmd: "shoplist items done <id>", Description: "Check an item off"},
		),
	)
}

func newItemsAddCmd() *cobra.Command {
	var completed bool

	cmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Add an item",
		Long:  "Add an item to the list. Without a name, prompts for one when a terminal is attached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			if len(args) == 0 {
				if name, err = promptItemName(app); err != nil {
					return err
				}
			}
			if !items.ValidName(name) {
				return nameTooShort(name)
			}

			item, err := app.Items.Create(cmd.Context(), items.Draft{
				Name:      name,
				Completed: completed,
				OwnerID:   app.Config.OwnerID,
			})
			if err != nil {
				return err
			}

			return app.OK(item,
				output.WithSummary(fmt.Sprintf("Added %s", item.Name)),
				output.WithBreadcrumbs(
					output.Breadcrumb{Action: "done", Cmd: "shoplist items done " + item.ID.String(), Description: "Check it off"},
					output.Breadcrumb{Action: "rename", Cmd: "shoplist items rename " + item.ID.String() + " <name>", Description: "Rename it"},
				),
			)
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "Add the item already checked off")
	return cmd
}

func promptItemName(app *appctx.App) (string, error) {
	if !app.IsInteractive() {
		return "", output.ErrUsageHint("Item name required", "shoplist items add <name>")
	}
	name, err := tui.InputValidated("New item", "e.g. Eggs", func(s string) error {
		if !items.ValidName(s) {
			return fmt.Errorf("at least %d characters", items.MinNameLength)
		}
		return nil
	})
	if err != nil {
		return "", promptError(err)
	}
	return name, nil
}

func nameTooShort(name string) error {
	return output.ErrUsageHint(
		fmt.Sprintf("Name %q is too short", name),
		fmt.Sprintf("Names need at least %d characters", items.MinNameLength),
	)
}

func newItemsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id|name> <new name...>",
		Short: "Rename an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			name := strings.TrimSpace(strings.Join(args[1:], " "))
			if !items.ValidEditName(name) {
				return nameTooShort(name)
			}

			target, err := resolveItem(cmd.Context(), app, args[:1], "")
			if err != nil {
				return err
			}

			item, err := app.Items.Update(cmd.Context(), items.Rename(target.ID, name))
			if err != nil {
				return err
			}
			return app.OK(item, output.WithSummary(fmt.Sprintf("Renamed #%s to %s", item.ID, item.Name)))
		},
	}
}

func newItemsCompleteCmd(use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id|name]",
		Short: short,
		Long:  short + ". Items can be named by id or by part of their name. Without one, prompts when a terminal is attached.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			target, err := resolveItem(cmd.Context(), app, args, short+"?")
			if err != nil {
				return err
			}

			item, err := app.Items.Update(cmd.Context(), items.SetCompleted(target.ID, completed))
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("Checked off %s", item.Name)
			if !completed {
				summary = fmt.Sprintf("Unchecked %s", item.Name)
			}
			return app.OK(item, output.WithSummary(summary))
		},
	}
}

func newItemsRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm [id|name]",
		Aliases: []string{"delete", "remove"},
		Short:   "Remove an item",
		Long:    "Remove an item. Asks for confirmation when a terminal is attached unless --yes is given.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			item, err := resolveItem(cmd.Context(), app, args, "Remove which item?")
			if err != nil {
				return err
			}

			if !yes && app.IsInteractive() {
				ok, err := tui.ConfirmDangerous(fmt.Sprintf("Remove %q from the list?", item.Name))
				if err != nil {
					return promptError(err)
				}
				if !ok {
					return output.ErrCanceled()
				}
			}

			if _, err := app.Items.Delete(cmd.Context(), items.Ref{ID: item.ID}); err != nil {
				return err
			}
			return app.OK(map[string]any{"id": item.ID, "deleted": true},
				output.WithSummary(fmt.Sprintf("Removed %s (#%s)", item.Name, item.ID)))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
