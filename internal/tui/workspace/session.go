package workspace

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shoplist/shoplist-cli/internal/appctx"
	"github.com/shoplist/shoplist-cli/internal/itemlist"
	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/logging"
	"github.com/shoplist/shoplist-cli/internal/tui"
	"github.com/shoplist/shoplist-cli/internal/tui/workspace/data"
)

// Session holds what every view shares: store access, list rules, styles.
type Session struct {
	app    *appctx.App
	styles *tui.Styles
	hub    *data.Hub
	rules  itemlist.Rules
	logger zerolog.Logger
}

// NewSession creates a session from the fully-initialized App.
func NewSession(app *appctx.App) *Session {
	cfg := app.Config
	return &Session{
		app:    app,
		styles: tui.NewStylesWithTheme(tui.ResolveTheme()),
		hub:    data.NewHub(context.Background(), app.Items, data.WithFreshTTL(cfg.StaleAfter)),
		rules: itemlist.Rules{
			OwnerID:          cfg.OwnerID,
			EditBlurDelay:    cfg.EditBlurDelay,
			NewItemBlurDelay: cfg.NewItemBlurDelay,
		},
		logger: logging.Component("tui"),
	}
}

// NewTestSession returns a Session over store with default rules, for
// tests in this and other packages.
func NewTestSession(store items.Store) *Session {
	return &Session{
		styles: tui.NewStylesWithTheme(tui.NoColorTheme()),
		hub:    data.NewHub(context.Background(), store),
		rules:  itemlist.DefaultRules(1),
		logger: zerolog.Nop(),
	}
}

// App returns the underlying appctx.App. Nil in test sessions.
func (s *Session) App() *appctx.App { return s.app }

// Styles returns the shared TUI styles.
func (s *Session) Styles() *tui.Styles { return s.styles }

// Hub returns the pool coordinator.
func (s *Session) Hub() *data.Hub { return s.hub }

// Rules returns the list interaction rules.
func (s *Session) Rules() itemlist.Rules { return s.rules }

// Logger returns the TUI logger.
func (s *Session) Logger() zerolog.Logger { return s.logger }

// Context returns the session context, canceled on Shutdown.
// Safe to call from Cmd goroutines.
func (s *Session) Context() context.Context { return s.hub.Context() }

// Shutdown cancels in-flight requests and clears every pool.
func (s *Session) Shutdown() { s.hub.Shutdown() }
