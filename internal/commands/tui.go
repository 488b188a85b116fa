package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/shoplist/shoplist-cli/internal/appctx"
	"github.com/shoplist/shoplist-cli/internal/output"
	"github.com/shoplist/shoplist-cli/internal/tui/workspace"
	"github.com/shoplist/shoplist-cli/internal/tui/workspace/views"
)

// NewTUICmd creates the tui command for the full-screen list.
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Open the shopping list",
		Long:        "Open the full-screen shopping list. Logs go to the log file while it runs.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{OwnsTerminal: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			return RunTUI(cmd, app)
		},
	}
}

// OwnsTerminal marks commands that draw full-screen, so logs must not go
// to stderr while they run.
const OwnsTerminal = "owns-terminal"

// RunTUI runs the shopping list screen until the user quits.
func RunTUI(cmd *cobra.Command, app *appctx.App) error {
	if !app.IsInteractive() {
		return output.ErrUsageHint("The shopping list screen needs a terminal", "Use `shoplist items` to print the list")
	}

	session := workspace.NewSession(app)
	defer session.Shutdown()
	model := workspace.New(session, viewFactory)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(cmd.Context()),
	)

	_, err := p.Run()
	return err
}

func viewFactory(session *workspace.Session) workspace.View {
	return views.NewShoppingList(session)
}
