package data

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shoplist/shoplist-cli/internal/items"
)

var tempSeq atomic.Int64

// CreateItemMutation optimistically adds a new item at the top of the list.
//
// created is atomic because ApplyRemotely runs in the mutation's Cmd
// goroutine while a concurrent fetch may call IsReflectedIn under the
// pool lock.
type CreateItemMutation struct {
	Draft   items.Draft
	Store   items.Store
	Now     func() time.Time
	created atomic.Pointer[items.Item]
	tempID  items.ID
}

// ApplyLocally prepends a placeholder with a temporary id.
func (m *CreateItemMutation) ApplyLocally(list []items.Item) []items.Item {
	if m.tempID == "" {
		m.tempID = items.TempID(tempSeq.Add(1))
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	out := make([]items.Item, 0, len(list)+1)
	out = append(out, items.Item{
		ID:        m.tempID,
		Name:      m.Draft.Name,
		Completed: m.Draft.Completed,
		OwnerID:   m.Draft.OwnerID,
		CreatedAt: now().Unix(),
	})
	return append(out, list...)
}

// ApplyRemotely creates the item in the store.
func (m *CreateItemMutation) ApplyRemotely(ctx context.Context) error {
	item, err := m.Store.Create(ctx, m.Draft)
	if err != nil {
		return err
	}
	m.created.Store(item)
	return nil
}

// IsReflectedIn reports whether the created item is in the fetched list.
// False until ApplyRemotely has completed.
func (m *CreateItemMutation) IsReflectedIn(list []items.Item) bool {
	item := m.created.Load()
	if item == nil {
		return false
	}
	_, ok := items.Find(list, item.ID)
	return ok
}

// Created returns the stored item once ApplyRemotely has succeeded.
func (m *CreateItemMutation) Created() (items.Item, bool) {
	item := m.created.Load()
	if item == nil {
		return items.Item{}, false
	}
	return *item, true
}

// UpdateItemMutation patches one item: a rename, a toggle or a full replace.
type UpdateItemMutation struct {
	Update items.Update
	Store  items.Store
}

// ApplyLocally applies the update's set fields to the matching item.
func (m *UpdateItemMutation) ApplyLocally(list []items.Item) []items.Item {
	out := make([]items.Item, len(list))
	for i, it := range list {
		if it.ID == m.Update.ID {
			it = m.Update.ApplyTo(it)
		}
		out[i] = it
	}
	return out
}

// ApplyRemotely sends the patch.
func (m *UpdateItemMutation) ApplyRemotely(ctx context.Context) error {
	_, err := m.Store.Update(ctx, m.Update)
	return err
}

// IsReflectedIn reports whether the fetched item already carries the
// update, or is gone.
func (m *UpdateItemMutation) IsReflectedIn(list []items.Item) bool {
	it, ok := items.Find(list, m.Update.ID)
	if !ok {
		return true
	}
	return m.Update.ApplyTo(it) == it
}

// DeleteItemMutation optimistically removes an item.
type DeleteItemMutation struct {
	Ref   items.Ref
	Store items.Store
}

// ApplyLocally drops the item from the list.
func (m *DeleteItemMutation) ApplyLocally(list []items.Item) []items.Item {
	out := make([]items.Item, 0, len(list))
	for _, it := range list {
		if it.ID != m.Ref.ID {
			out = append(out, it)
		}
	}
	return out
}

// ApplyRemotely deletes the item in the store.
func (m *DeleteItemMutation) ApplyRemotely(ctx context.Context) error {
	_, err := m.Store.Delete(ctx, m.Ref)
	return err
}

// IsReflectedIn reports whether the item is absent from the fetched list.
func (m *DeleteItemMutation) IsReflectedIn(list []items.Item) bool {
	_, ok := items.Find(list, m.Ref.ID)
	return !ok
}
