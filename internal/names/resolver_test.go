package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/output"
)

func shoppingList() []items.Item {
	return []items.Item{
		{ID: "1", Name: "Whole milk"},
		{ID: "2", Name: "Oat milk"},
		{ID: "3", Name: "Bread"},
		{ID: "4", Name: "bread flour"},
		{ID: "5", Name: "Eggs"},
		{ID: "6", Name: "7"},
	}
}

func TestResolveItem(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  items.ID
	}{
		{"id", "3", "3"},
		{"id with spaces", " 5 ", "5"},
		{"exact name", "Bread", "3"},
		{"case insensitive", "eggs", "5"},
		{"partial", "flour", "4"},
		{"partial with case", "OAT", "2"},
		{"numeric name", "7", "6"},
		{"unknown numeric passes through", "42", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ResolveItem(shoppingList(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestResolveItem_Ambiguous(t *testing.T) {
	_, err := ResolveItem(shoppingList(), "milk")

	e := output.AsError(err)
	assert.Equal(t, output.CodeAmbiguous, e.Code)
	assert.Equal(t, output.ExitAmbiguous, e.ExitCode())
	assert.Contains(t, e.Hint, "Whole milk (#1)")
	assert.Contains(t, e.Hint, "Oat milk (#2)")
}

func TestResolveItem_NotFound(t *testing.T) {
	_, err := ResolveItem(shoppingList(), "Butter")
	e := output.AsError(err)
	assert.Equal(t, output.CodeNotFound, e.Code)
	assert.Empty(t, e.Hint)

	_, err = ResolveItem(shoppingList(), "Br")
	assert.Equal(t, output.CodeAmbiguous, output.AsError(err).Code, "two partial matches")
}

func TestResolveItem_Suggestions(t *testing.T) {
	_, err := ResolveItem(shoppingList(), "Eggplant")

	e := output.AsError(err)
	assert.Equal(t, output.CodeNotFound, e.Code)
	assert.Equal(t, "Did you mean: Eggs", e.Hint)
}

func TestResolveItem_BadInput(t *testing.T) {
	_, err := ResolveItem(shoppingList(), "a/b")
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestResolve(t *testing.T) {
	list := []string{"Marketing", "marketing", "Tea"}
	name := func(s string) string { return s }

	match, _ := resolve("Marketing", list, name)
	require.NotNil(t, match)
	assert.Equal(t, "Marketing", *match)

	match, matches := resolve("MARKETING", list, name)
	assert.Nil(t, match)
	assert.Len(t, matches, 2)

	match, matches = resolve("coffee", list, name)
	assert.Nil(t, match)
	assert.Empty(t, matches)
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("bread flour", "rye flour"))
	assert.False(t, containsWord("bread flour", "a b"))
}
