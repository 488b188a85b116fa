package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist/shoplist-cli/internal/appctx"
	"github.com/shoplist/shoplist-cli/internal/config"
	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/items/itemstest"
	"github.com/shoplist/shoplist-cli/internal/output"
)

type envelope struct {
	OK      bool            `json:"ok"`
	Data    json.RawMessage `json:"data"`
	Summary string          `json:"summary"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type cmdHarness struct {
	app    *appctx.App
	store  *itemstest.Store
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, seed ...items.Item) *cmdHarness {
	t.Helper()
	t.Setenv("SHOPLIST_DEBUG", "")

	h := &cmdHarness{
		store:  itemstest.New(seed...),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.app = appctx.NewApp(config.Default(),
		appctx.WithStore(h.store),
		appctx.WithWriters(h.stdout, h.stderr),
	)
	h.app.Flags.JSON = true
	h.app.ApplyFlags()
	return h
}

func (h *cmdHarness) run(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(h.stdout)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(appctx.WithApp(context.Background(), h.app))
}

func (h *cmdHarness) envelope(t *testing.T) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &env), h.stdout.String())
	return env
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, output.AsError(err).Code, err.Error())
}

func TestRequireApp_Missing(t *testing.T) {
	cmd := NewItemsCmd()
	cmd.SetArgs(nil)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app not initialized")
}

func TestResolveItem(t *testing.T) {
	h := newHarness(t, seedItems()...)
	ctx := context.Background()

	item, err := resolveItem(ctx, h.app, []string{"3"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Eggs", item.Name)

	item, err = resolveItem(ctx, h.app, []string{"bre"}, "")
	require.NoError(t, err)
	assert.Equal(t, items.ID("2"), item.ID)

	_, err = resolveItem(ctx, h.app, []string{"42"}, "")
	requireCode(t, err, output.CodeNotFound)

	_, err = resolveItem(ctx, h.app, []string{"a/b"}, "")
	requireCode(t, err, output.CodeUsage)

	_, err = resolveItem(ctx, h.app, nil, "")
	requireCode(t, err, output.CodeUsage)
}

func TestResolveItem_ListError(t *testing.T) {
	h := newHarness(t, seedItems()...)
	h.store.ListErr = output.ErrNetwork(errors.New("refused"))

	_, err := resolveItem(context.Background(), h.app, []string{"1"}, "")
	requireCode(t, err, output.CodeNetwork)
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "1 item", pluralize(1, "item", "items"))
	assert.Equal(t, "0 items", pluralize(0, "item", "items"))
	assert.Equal(t, "3 items", pluralize(3, "item", "items"))
}

func TestPromptError(t *testing.T) {
	other := errors.New("boom")
	assert.Same(t, other, promptError(other))
}
