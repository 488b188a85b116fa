// Package names resolves user input to a shopping list item.
// It matches with the following priority:
// 1. Item ID
// 2. Exact name (case-sensitive)
// 3. Case-insensitive name
// 4. Partial name (contains)
package names

import (
	"strings"

	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/output"
)

// ResolveItem finds the item input refers to in list.
//
// An all-digit input that matches no id or name is passed through as an
// id so the store can report it.
func ResolveItem(list []items.Item, input string) (items.ID, error) {
	id, err := items.ParseID(input)
	if err != nil {
		return "", output.ErrUsageHint(err.Error(), "Run `shoplist items` to see item IDs")
	}
	if _, ok := items.Find(list, id); ok {
		return id, nil
	}

	input = strings.TrimSpace(input)
	match, matches := resolve(input, list, func(it items.Item) string { return it.Name })
	if match != nil {
		return match.ID, nil
	}

	if len(matches) > 1 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name + " (#" + m.ID.String() + ")"
		}
		return "", output.ErrAmbiguous("item", names)
	}

	if isDigits(input) {
		return id, nil
	}

	suggestions := suggest(input, list, func(it items.Item) string { return it.Name })
	if len(suggestions) > 0 {
		return "", output.ErrNotFoundHint("Item", input, "Did you mean: "+strings.Join(suggestions, ", "))
	}
	return "", output.ErrNotFound("Item", input)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resolve performs name resolution in priority order:
// 1. Exact match (case-sensitive)
// 2. Case-insensitive match
// 3. Partial match (contains)
// Returns the single match if unambiguous, or all matches of the first
// phase that found several.
func resolve[T any](input string, list []T, name func(T) string) (*T, []T) {
	inputLower := strings.ToLower(input)

	// Phase 1: Exact match
	for i := range list {
		if name(list[i]) == input {
			return &list[i], nil
		}
	}

	// Phase 2: Case-insensitive match
	var caseMatches []T
	for i := range list {
		if strings.ToLower(name(list[i])) == inputLower {
			caseMatches = append(caseMatches, list[i])
		}
	}
	if len(caseMatches) == 1 {
		return &caseMatches[0], nil
	}
	if len(caseMatches) > 1 {
		return nil, caseMatches
	}

	// Phase 3: Partial match (contains)
	var partialMatches []T
	for i := range list {
		if strings.Contains(strings.ToLower(name(list[i])), inputLower) {
			partialMatches = append(partialMatches, list[i])
		}
	}
	if len(partialMatches) == 1 {
		return &partialMatches[0], nil
	}
	return nil, partialMatches
}

// suggest returns up to 3 names sharing a prefix or a word with input.
func suggest[T any](input string, list []T, name func(T) string) []string {
	inputLower := strings.ToLower(input)
	var suggestions []string

	for _, it := range list {
		n := name(it)
		nameLower := strings.ToLower(n)

		commonLen := 0
		for i := 0; i < len(inputLower) && i < len(nameLower); i++ {
			if inputLower[i] != nameLower[i] {
				break
			}
			commonLen++
		}

		if commonLen >= 2 || containsWord(nameLower, inputLower) {
			suggestions = append(suggestions, n)
			if len(suggestions) >= 3 {
				break
			}
		}
	}

	return suggestions
}

// containsWord checks if haystack contains any word from needle.
func containsWord(haystack, needle string) bool {
	for _, word := range strings.Fields(needle) {
		if len(word) >= 2 && strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}
