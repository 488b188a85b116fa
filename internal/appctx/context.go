// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog"

	"github.com/shoplist/shoplist-cli/internal/api"
	"github.com/shoplist/shoplist-cli/internal/config"
	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/logging"
	"github.com/shoplist/shoplist-cli/internal/observability"
	"github.com/shoplist/shoplist-cli/internal/output"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config *config.Config
	API    *api.Client
	Items  items.Store
	Output *output.Writer
	Logger zerolog.Logger

	// Observability
	Collector *observability.SessionCollector
	Hooks     *observability.CLIHooks

	// Flags holds the global flag values
	Flags GlobalFlags

	stdout io.Writer
	stderr io.Writer
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON    bool
	Quiet   bool
	MD      bool // Literal Markdown syntax output
	Styled  bool // Force ANSI styled output (even when piped)
	IDsOnly bool
	Count   bool
	JQ      string

	// Store flags
	BaseURL string
	OwnerID int64

	// Behavior flags
	Verbose  int // 0=off, 1=operations, 2=operations+requests
	Stats    bool
	LogLevel string
	LogFile  string
}

// Option configures an App.
type Option func(*App)

// WithStore replaces the HTTP-backed item store.
func WithStore(s items.Store) Option {
	return func(a *App) { a.Items = s }
}

// WithWriters redirects command output and diagnostics.
func WithWriters(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// NewApp wires the store client, output writer and observability for cfg.
func NewApp(cfg *config.Config, opts ...Option) *App {
	// Collector always runs; hook level (set by ApplyFlags) only controls tracing.
	collector := observability.NewSessionCollector()
	app := &App{
		Config:    cfg,
		Collector: collector,
		Logger:    logging.Component("cli"),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	app.Hooks = observability.NewCLIHooks(0, collector, observability.NewTraceWriterTo(app.stderr))

	app.API = api.NewClient(cfg.BaseURL,
		api.WithHooks(app.Hooks),
		api.WithLogger(logging.Component("api")),
	)
	if app.Items == nil {
		app.Items = items.NewClient(app.API,
			items.WithHooks(app.Hooks),
			items.WithLogger(logging.Component("items")),
		)
	}

	app.Output = output.New(output.Options{
		Format: output.ParseFormat(cfg.Format),
		Writer: app.stdout,
	})
	return app
}

// ApplyFlags applies global flag values to output and tracing.
func (a *App) ApplyFlags() {
	format := a.Output.Format()
	// Order matters: the most specific mode wins.
	switch {
	case a.Flags.IDsOnly:
		format = output.FormatIDs
	case a.Flags.Count:
		format = output.FormatCount
	case a.Flags.Quiet:
		format = output.FormatQuiet
	case a.Flags.JSON:
		format = output.FormatJSON
	case a.Flags.Styled:
		format = output.FormatStyled
	case a.Flags.MD:
		format = output.FormatMarkdown
	}
	a.Output = output.New(output.Options{
		Format: format,
		Writer: a.stdout,
		JQ:     a.Flags.JQ,
	})

	if a.Hooks != nil {
		a.Hooks.SetLevel(a.VerboseLevel())
	}
}

// VerboseLevel combines -v flags with SHOPLIST_DEBUG ("1", "2" or "true").
func (a *App) VerboseLevel() int {
	level := a.Flags.Verbose
	if debugEnv := os.Getenv("SHOPLIST_DEBUG"); debugEnv != "" {
		if n, err := strconv.Atoi(debugEnv); err == nil {
			level = max(level, n)
		} else if debugEnv == "true" {
			level = 2
		}
	}
	return level
}

// StatsEnabled reports whether session stats should be printed.
func (a *App) StatsEnabled() bool {
	if a.Flags.Stats {
		return true
	}
	return a.Config != nil && a.Config.Stats != nil && *a.Config.Stats
}

// OK outputs a success response, including stats when enabled.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	if a.StatsEnabled() && a.Collector != nil {
		opts = append(opts, output.WithStats(a.Collector.Summary().Map()))
	}
	return a.Output.OK(data, opts...)
}

// Err outputs an error response, printing stats to stderr when enabled.
func (a *App) Err(err error) error {
	if outputErr := a.Output.Err(err); outputErr != nil {
		return outputErr
	}

	// Machine-consumable modes get nothing extra, even on stderr.
	if a.StatsEnabled() && a.Collector != nil && !a.isMachineOutput() {
		if stats := a.Collector.Summary().String(); stats != "" {
			fmt.Fprintf(a.stderr, "\nStats: %s\n", stats)
		}
	}
	return nil
}

func (a *App) isMachineOutput() bool {
	switch a.Output.Format() {
	case output.FormatQuiet, output.FormatIDs, output.FormatCount:
		return true
	}
	return false
}

// IsInteractive reports whether prompts and the TUI can run: stdin and
// stdout are terminals and no machine output mode was requested.
func (a *App) IsInteractive() bool {
	if a.Flags.JSON || a.Flags.Quiet || a.Flags.IDsOnly || a.Flags.Count || a.Flags.JQ != "" {
		return false
	}
	if a.stdout != os.Stdout {
		return false
	}
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// Stderr returns the diagnostics writer.
func (a *App) Stderr() io.Writer { return a.stderr }

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
