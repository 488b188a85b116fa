// Package itemstest provides an in-memory items.Store for tests.
package itemstest

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/output"
)

// Call records one store operation.
type Call struct {
	Op     string // List, Create, Update, Delete
	ID     items.ID
	Draft  items.Draft
	Update items.Update
}

// Store is an in-memory items.Store. Set the Err fields to make the next
// calls of that kind fail.
type Store struct {
	mu     sync.Mutex
	items  []items.Item
	nextID int
	calls  []Call

	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

var _ items.Store = (*Store)(nil)

// New returns a store seeded with list. Created ids continue after the
// largest numeric id.
func New(list ...items.Item) *Store {
	s := &Store{items: append([]items.Item(nil), list...), nextID: 1}
	for _, it := range list {
		if n, err := strconv.Atoi(it.ID.String()); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
	}
	return s
}

// Calls returns the recorded calls.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Mutations returns the recorded calls other than List.
func (s *Store) Mutations() []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Op != "List" {
			out = append(out, c)
		}
	}
	return out
}

// Items returns the stored items in insertion order.
func (s *Store) Items() []items.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]items.Item(nil), s.items...)
}

// SetFailures sets every error field at once.
func (s *Store) SetFailures(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListErr, s.CreateErr, s.UpdateErr, s.DeleteErr = err, err, err, err
}

func (s *Store) List(_ context.Context) ([]items.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "List"})
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return append([]items.Item{}, s.items...), nil
}

func (s *Store) Create(_ context.Context, d items.Draft) (*items.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "Create", Draft: d})
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	it := items.Item{
		ID:        items.ID(strconv.Itoa(s.nextID)),
		Name:      d.Name,
		Completed: d.Completed,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt,
	}
	s.nextID++
	s.items = append(s.items, it)
	return &it, nil
}

func (s *Store) Update(_ context.Context, u items.Update) (*items.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "Update", ID: u.ID, Update: u})
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	for i, it := range s.items {
		if it.ID == u.ID {
			s.items[i] = u.ApplyTo(it)
			out := s.items[i]
			return &out, nil
		}
	}
	return nil, output.ErrNotFound("Item", u.ID.String())
}

func (s *Store) Delete(_ context.Context, ref items.Ref) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "Delete", ID: ref.ID})
	if s.DeleteErr != nil {
		return nil, s.DeleteErr
	}
	for i, it := range s.items {
		if it.ID == ref.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return json.RawMessage(`{}`), nil
		}
	}
	return nil, output.ErrNotFound("Item", ref.ID.String())
}
