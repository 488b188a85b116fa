package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shoplist/shoplist-cli/internal/version"
)

// NewVersionCmd creates the version command. It runs without loading
// configuration so it works even when the config is broken.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			return err
		},
	}
}
