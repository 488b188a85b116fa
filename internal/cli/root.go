// Package cli wires the root command, global flags and process exit codes.
package cli

import (
	"context"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shoplist/shoplist-cli/internal/appctx"
	"github.com/shoplist/shoplist-cli/internal/commands"
	"github.com/shoplist/shoplist-cli/internal/config"
	"github.com/shoplist/shoplist-cli/internal/logging"
	"github.com/shoplist/shoplist-cli/internal/output"
	"github.com/shoplist/shoplist-cli/internal/version"
)

// NewRootCmd creates the root cobra command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

// newRootCmd returns the root command and a cleanup that closes the log
// file opened by the pre-run. appOpts are passed to every App it builds.
func newRootCmd(appOpts ...appctx.Option) (*cobra.Command, func()) {
	var flags appctx.GlobalFlags
	closeLog := func() {}

	cmd := &cobra.Command{
		Use:   "shoplist",
		Short: "Keep a shopping list",
		Long: `shoplist keeps a shared shopping list on a small JSON backend.

Run it without arguments in a terminal to open the list. When output is
piped, it prints the list instead.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		Annotations:   map[string]string{commands.OwnsTerminal: "true"},
		RunE:          runDefault,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip setup for help and version commands
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.Load(config.FlagOverrides{
				BaseURL:  flags.BaseURL,
				OwnerID:  flags.OwnerID,
				LogLevel: flags.LogLevel,
				LogFile:  flags.LogFile,
			})
			if err != nil {
				return output.ErrUsageHint(err.Error(), "Check `shoplist config show` and the SHOPLIST_* environment")
			}

			logger, closer, err := newLogger(cmd, cfg, flags)
			if err != nil {
				return output.ErrUsage(err.Error())
			}
			closeLog = closer
			logging.SetDefault(logger)

			app := appctx.NewApp(cfg, appOpts...)
			app.Flags = flags
			app.ApplyFlags()
			app.Logger.Debug().Str("cmd", cmd.CommandPath()).Str("base_url", cfg.BaseURL).Msg("starting")

			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
	}

	// Allow flags anywhere in the command line
	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	// Output format flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	pf.BoolVarP(&flags.MD, "md", "m", false, "Output as Markdown (portable)")
	pf.BoolVar(&flags.MD, "markdown", false, "Output as Markdown (portable)")
	pf.BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	pf.BoolVar(&flags.IDsOnly, "ids-only", false, "Output only IDs")
	pf.BoolVar(&flags.Count, "count", false, "Output only count")
	pf.StringVar(&flags.JQ, "jq", "", "Filter output data with a jq expression")

	// Store flags
	pf.StringVar(&flags.BaseURL, "base-url", "", "Items backend URL (default http://localhost:3500)")
	pf.Int64Var(&flags.OwnerID, "owner", 0, "Owner ID stamped on new items")

	// Behavior flags
	pf.CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for operations, -vv for requests)")
	pf.BoolVar(&flags.Stats, "stats", false, "Show session statistics")
	pf.StringVar(&flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
	pf.StringVar(&flags.LogFile, "log-file", "", "Write logs to this file instead of stderr")

	cmd.AddCommand(
		commands.NewItemsCmd(),
		commands.NewTUICmd(),
		commands.NewServeCmd(),
		commands.NewConfigCmd(),
		commands.NewVersionCmd(),
	)

	// Set after AddCommand so cobra propagates it to every subcommand.
	cmd.SetGlobalNormalizationFunc(normalizeFlagName)

	return cmd, func() { closeLog() }
}

// normalizeFlagName accepts snake_case spellings of flags (--base_url).
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// newLogger logs to stderr unless a file is configured. Commands that own
// the terminal always log to a file.
func newLogger(cmd *cobra.Command, cfg *config.Config, flags appctx.GlobalFlags) (zerolog.Logger, func(), error) {
	level := cfg.LogLevel
	if flags.Verbose >= 2 && flags.LogLevel == "" {
		level = zerolog.DebugLevel.String()
	}

	file := cfg.LogFile
	if file == "" && cmd.Annotations[commands.OwnsTerminal] == "true" {
		file = config.DefaultLogFile()
	}
	return logging.New(level, file)
}

// runDefault opens the list screen in a terminal and prints the list
// otherwise.
func runDefault(cmd *cobra.Command, args []string) error {
	if app := appctx.FromContext(cmd.Context()); app != nil && app.IsInteractive() {
		return commands.RunTUI(cmd, app)
	}
	return commands.RunItemsList(cmd, args)
}

// Execute runs the root command and exits with the mapped exit code.
func Execute() {
	cmd, cleanup := newRootCmd()
	os.Exit(execute(cmd, cleanup, os.Stdout))
}

// execute runs cmd and reports any error, through the app when setup got
// that far and through a writer built from the raw flags otherwise.
func execute(cmd *cobra.Command, cleanup func(), fallback io.Writer) int {
	defer cleanup()

	// Use ExecuteC to get the executed command (for correct context access)
	executedCmd, err := cmd.ExecuteC()
	if err == nil {
		return output.ExitOK
	}

	err = transformCobraError(err)
	apiErr := output.AsError(err)

	if app := appFrom(executedCmd); app != nil {
		_ = app.Err(err)
		return apiErr.ExitCode()
	}

	writer := output.New(output.Options{
		Format: fallbackFormat(cmd.PersistentFlags()),
		Writer: fallback,
	})
	_ = writer.Err(err)
	return apiErr.ExitCode()
}

func appFrom(cmd *cobra.Command) *appctx.App {
	if cmd == nil {
		return nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return appctx.FromContext(ctx)
}

// fallbackFormat mirrors App.ApplyFlags for errors raised before the app
// exists.
func fallbackFormat(pf *pflag.FlagSet) output.Format {
	get := func(name string) bool {
		v, _ := pf.GetBool(name)
		return v
	}
	switch {
	case get("ids-only"):
		return output.FormatIDs
	case get("count"):
		return output.FormatCount
	case get("quiet"):
		return output.FormatQuiet
	case get("json"):
		return output.FormatJSON
	case get("styled"):
		return output.FormatStyled
	case get("md"):
		return output.FormatMarkdown
	}
	return output.FormatAuto
}

var (
	shorthandFlagRE = regexp.MustCompile(`unknown shorthand flag: '.' in (-\w)`)
	unknownCmdRE    = regexp.MustCompile(`^unknown command "([^"]+)"`)
)

// transformCobraError turns cobra's parse errors into usage errors with
// consistent wording.
func transformCobraError(err error) error {
	msg := err.Error()

	// "flag needs an argument: --FLAG" → "--FLAG requires a value"
	if flag, ok := strings.CutPrefix(msg, "flag needs an argument: "); ok {
		return output.ErrUsage(flag + " requires a value")
	}

	if flag, ok := strings.CutPrefix(msg, "unknown flag: "); ok {
		return output.ErrUsage("Unknown option: " + flag)
	}

	if strings.HasPrefix(msg, "unknown shorthand flag: ") {
		if matches := shorthandFlagRE.FindStringSubmatch(msg); len(matches) > 1 {
			return output.ErrUsage("Unknown option: " + matches[1])
		}
	}

	if matches := unknownCmdRE.FindStringSubmatch(msg); len(matches) > 1 {
		return output.ErrUsageHint("Unknown command: "+matches[1], "Run `shoplist --help` for commands")
	}

	if strings.Contains(msg, "invalid argument") {
		return output.ErrUsage(msg)
	}

	// cobra.MinimumNArgs, MaximumNArgs and friends
	if strings.Contains(msg, "arg(s)") {
		return output.ErrUsage(msg)
	}

	return err
}
