package commands

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/output"
)

func seedItems() []items.Item {
	return []items.Item{
		{ID: "1", Name: "Milk", CreatedAt: 100},
		{ID: "2", Name: "Bread", Completed: true, CreatedAt: 300},
		{ID: "3", Name: "Eggs", CreatedAt: 200},
	}
}

func decodeItems(t *testing.T, raw json.RawMessage) []items.Item {
	t.Helper()
	var list []items.Item
	require.NoError(t, json.Unmarshal(raw, &list))
	return list
}

func decodeItem(t *testing.T, raw json.RawMessage) items.Item {
	t.Helper()
	var it items.Item
	require.NoError(t, json.Unmarshal(raw, &it))
	return it
}

func itemNames(list []items.Item) []string {
	out := make([]string, len(list))
	for i, it := range list {
		out[i] = it.Name
	}
	return out
}

func TestItemsList_NewestFirst(t *testing.T) {
	for _, args := range [][]string{nil, {"list"}} {
		h := newHarness(t, seedItems()...)
		require.NoError(t, h.run(NewItemsCmd(), args...))

		env := h.envelope(t)
		assert.True(t, env.OK)
		assert.Equal(t, []string{"Bread", "Eggs", "Milk"}, itemNames(decodeItems(t, env.Data)))
		assert.Equal(t, "3 items, 2 to buy", env.Summary)
	}
}

func TestItemsList_Empty(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(NewItemsCmd()))

	env := h.envelope(t)
	assert.Equal(t, "0 items, 0 to buy", env.Summary)
}

func TestItemsList_StoreError(t *testing.T) {
	h := newHarness(t)
	h.store.ListErr = output.ErrNetwork(errors.New("connection refused"))

	err := h.run(NewItemsCmd())
	requireCode(t, err, output.CodeNetwork)
}

func TestItemsAdd(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(NewItemsCmd(), "add", "Oat", "milk"))

	muts := h.store.Mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, "Create", muts[0].Op)
	assert.Equal(t, items.Draft{Name: "Oat milk", OwnerID: 1}, muts[0].Draft)

	env := h.envelope(t)
	assert.Equal(t, "Added Oat milk", env.Summary)
	assert.Equal(t, "Oat milk", decodeItem(t, env.Data).Name)
}

func TestItemsAdd_Completed(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(NewItemsCmd(), "add", "--completed", "Tea"))

	muts := h.store.Mutations()
	require.Len(t, muts, 1)
	assert.True(t, muts[0].Draft.Completed)
}

func TestItemsAdd_UsesConfiguredOwner(t *testing.T) {
	h := newHarness(t)
	h.app.Config.OwnerID = 7
	require.NoError(t, h.run(NewItemsCmd(), "add", "Rice"))

	assert.Equal(t, int64(7), h.store.Mutations()[0].Draft.OwnerID)
}

func TestItemsAdd_TooShort(t *testing.T) {
	h := newHarness(t)
	err := h.run(NewItemsCmd(), "add", "x")

	requireCode(t, err, output.CodeUsage)
	assert.Contains(t, err.Error(), "too short")
	assert.Empty(t, h.store.Mutations())
}

func TestItemsAdd_NoNameWithoutTerminal(t *testing.T) {
	h := newHarness(t)
	err := h.run(NewItemsCmd(), "add")

	requireCode(t, err, output.CodeUsage)
	assert.Empty(t, h.store.Mutations())
}

func TestItemsAdd_StoreError(t *testing.T) {
	h := newHarness(t)
	h.store.CreateErr = output.ErrAPI(500, "boom")

	err := h.run(NewItemsCmd(), "add", "Eggs")
	requireCode(t, err, output.CodeAPI)
}

func TestItemsRename(t *testing.T) {
	h := newHarness(t, seedItems()...)
	require.NoError(t, h.run(NewItemsCmd(), "rename", "1", " Whole", "milk "))

	muts := h.store.Mutations()
	require.Len(t, muts, 1)
	u := muts[0].Update
	assert.Equal(t, items.ID("1"), u.ID)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Whole milk", *u.Name)
	assert.Nil(t, u.Completed, "rename sends only the name")

	env := h.envelope(t)
	assert.Equal(t, "Renamed #1 to Whole milk", env.Summary)
}

func TestItemsRename_TooShortAfterTrim(t *testing.T) {
	h := newHarness(t, seedItems()...)
	err := h.run(NewItemsCmd(), "rename", "1", " a ")

	requireCode(t, err, output.CodeUsage)
	assert.Empty(t, h.store.Mutations())
}

func TestItemsRename_MissingArgs(t *testing.T) {
	h := newHarness(t, seedItems()...)
	err := h.run(NewItemsCmd(), "rename", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestItemsRename_NotFound(t *testing.T) {
	h := newHarness(t, seedItems()...)
	err := h.run(NewItemsCmd(), "rename", "99", "Butter")

	requireCode(t, err, output.CodeNotFound)
	assert.Empty(t, h.store.Mutations(), "unknown ids are caught before the write")
}

func TestItemsDoneUndone(t *testing.T) {
	tests := []struct {
		cmd       string
		completed bool
		summary   string
	}{
		{"done", true, "Checked off Milk"},
		{"undone", false, "Unchecked Milk"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			h := newHarness(t, seedItems()...)
			require.NoError(t, h.run(NewItemsCmd(), tt.cmd, "1"))

			muts := h.store.Mutations()
			require.Len(t, muts, 1)
			u := muts[0].Update
			require.NotNil(t, u.Completed)
			assert.Equal(t, tt.completed, *u.Completed)
			assert.Nil(t, u.Name, "only the flag is sent")

			env := h.envelope(t)
			assert.Equal(t, tt.summary, env.Summary)
			assert.Equal(t, tt.completed, decodeItem(t, env.Data).Completed)
		})
	}
}

func TestItemsDone_ByName(t *testing.T) {
	h := newHarness(t, seedItems()...)
	require.NoError(t, h.run(NewItemsCmd(), "done", "eggs"))

	muts := h.store.Mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, items.ID("3"), muts[0].ID)
}

func TestItemsDone_AmbiguousName(t *testing.T) {
	h := newHarness(t,
		items.Item{ID: "1", Name: "Whole milk"},
		items.Item{ID: "2", Name: "Oat milk"},
	)
	err := h.run(NewItemsCmd(), "done", "milk")

	requireCode(t, err, output.CodeAmbiguous)
	assert.Empty(t, h.store.Mutations())
}

func TestItemsRename_ByName(t *testing.T) {
	h := newHarness(t, seedItems()...)
	require.NoError(t, h.run(NewItemsCmd(), "rename", "bread", "Rye", "bread"))

	muts := h.store.Mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, items.ID("2"), muts[0].ID)
	assert.Equal(t, "Rye bread", *muts[0].Update.Name)
}

func TestItemsDone_NoIDWithoutTerminal(t *testing.T) {
	h := newHarness(t, seedItems()...)
	err := h.run(NewItemsCmd(), "done")

	requireCode(t, err, output.CodeUsage)
	assert.Empty(t, h.store.Calls(), "no lookup without a way to pick")
}

func TestItemsRm(t *testing.T) {
	for _, args := range [][]string{{"rm", "3"}, {"rm", "--yes", "3"}, {"delete", "-y", "3"}} {
		h := newHarness(t, seedItems()...)
		require.NoError(t, h.run(NewItemsCmd(), args...))

		muts := h.store.Mutations()
		require.Len(t, muts, 1)
		assert.Equal(t, "Delete", muts[0].Op)
		assert.Equal(t, items.ID("3"), muts[0].ID)
		assert.Equal(t, []string{"Milk", "Bread"}, itemNames(h.store.Items()))

		env := h.envelope(t)
		assert.Equal(t, "Removed Eggs (#3)", env.Summary)
	}
}

func TestItemsRm_NotFound(t *testing.T) {
	h := newHarness(t, seedItems()...)
	err := h.run(NewItemsCmd(), "rm", "--yes", "99")

	requireCode(t, err, output.CodeNotFound)
	assert.Len(t, h.store.Items(), 3)
}

func TestItemsRm_TooManyArgs(t *testing.T) {
	h := newHarness(t, seedItems()...)
	err := h.run(NewItemsCmd(), "rm", "1", "2")

	require.Error(t, err)
	assert.Len(t, h.store.Items(), 3)
}

func TestItemsList_QuietOutput(t *testing.T) {
	h := newHarness(t, seedItems()...)
	h.app.Flags.JSON = false
	h.app.Flags.Quiet = true
	h.app.ApplyFlags()

	require.NoError(t, h.run(NewItemsCmd()))

	assert.Equal(t, []string{"Bread", "Eggs", "Milk"}, itemNames(decodeItems(t, h.stdout.Bytes())))
}

func TestItemsList_JQ(t *testing.T) {
	h := newHarness(t, seedItems()...)
	h.app.Flags.JQ = "[.[] | select(.completed | not) | .name]"
	h.app.ApplyFlags()

	require.NoError(t, h.run(NewItemsCmd()))

	env := h.envelope(t)
	var got []string
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, []string{"Eggs", "Milk"}, got)
}
