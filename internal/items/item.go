// Package items is the client for the remote item store: the shopping-list
// data model and the four operations the store exposes.
package items

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinNameLength is the shortest valid item name, in characters.
const MinNameLength = 2

// ID identifies an item. The store assigns it; the client treats it as opaque.
type ID string

// ParseID validates a user-supplied id.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty item id")
	}
	if strings.ContainsAny(s, "/?#") {
		return "", fmt.Errorf("invalid item id %q", s)
	}
	return ID(s), nil
}

func (id ID) String() string { return string(id) }

// IsTemp reports whether id is a client-side placeholder that the store
// has not assigned yet.
func (id ID) IsTemp() bool { return strings.HasPrefix(string(id), tempPrefix) }

const tempPrefix = "tmp-"

// TempID returns a placeholder id for an optimistic entry.
func TempID(n int64) ID { return ID(tempPrefix + strconv.FormatInt(n, 10)) }

func (id ID) numeric() bool {
	if id == "" || (len(id) > 1 && id[0] == '0') {
		return false
	}
	_, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil
}

// MarshalJSON writes numeric ids as JSON numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("item id: %w", err)
		}
		*id = ID(n.String())
		return nil
	}
}

// Item is one entry on the list.
type Item struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	OwnerID   int64  `json:"ownerId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Draft is the body of a create call. CreatedAt is stamped by Client.Create.
type Draft struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	OwnerID   int64  `json:"ownerId"`
	CreatedAt int64  `json:"createdAt"`
}

// Ref names the target of a delete.
type Ref struct {
	ID ID `json:"id"`
}

// Update is a PATCH body. Nil fields are left untouched by the store.
type Update struct {
	ID        ID      `json:"id"`
	Name      *string `json:"name,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	OwnerID   *int64  `json:"ownerId,omitempty"`
	CreatedAt *int64  `json:"createdAt,omitempty"`
}

// Replace sends every field of item.
func Replace(item Item) Update {
	u := Update{
		ID:        item.ID,
		Name:      &item.Name,
		Completed: &item.Completed,
		CreatedAt: &item.CreatedAt,
	}
	if item.OwnerID != 0 {
		u.OwnerID = &item.OwnerID
	}
	return u
}

// Toggle sends the full item with completed inverted.
func Toggle(item Item) Update {
	item.Completed = !item.Completed
	return Replace(item)
}

// Rename sends only the new name.
func Rename(id ID, name string) Update {
	return Update{ID: id, Name: &name}
}

// SetCompleted sends only the completion flag.
func SetCompleted(id ID, completed bool) Update {
	return Update{ID: id, Completed: &completed}
}

// ApplyTo returns item with the non-nil fields of u applied.
func (u Update) ApplyTo(item Item) Item {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Completed != nil {
		item.Completed = *u.Completed
	}
	if u.OwnerID != nil {
		item.OwnerID = *u.OwnerID
	}
	if u.CreatedAt != nil {
		item.CreatedAt = *u.CreatedAt
	}
	return item
}

// NameLength counts characters after NFC normalization, so a name typed
// with combining marks measures the same as its precomposed form.
func NameLength(name string) int {
	return utf8.RuneCountInString(norm.NFC.String(name))
}

// ValidName reports whether a new item name is long enough.
func ValidName(name string) bool {
	return NameLength(name) >= MinNameLength
}

// ValidEditName reports whether an edited name is long enough once trimmed.
func ValidEditName(name string) bool {
	return ValidName(strings.TrimSpace(name))
}

// SortNewestFirst returns a copy of list ordered by CreatedAt descending.
// Items with equal timestamps keep their relative order.
func SortNewestFirst(list []Item) []Item {
	out := make([]Item, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// Find returns the item with id.
func Find(list []Item, id ID) (Item, bool) {
	for _, it := range list {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
