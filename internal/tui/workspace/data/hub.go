package data

import (
	"context"
	"sync"
	"time"

	"github.com/shoplist/shoplist-cli/internal/items"
)

// ItemsKey is the pool key of the shopping list.
const ItemsKey = "items"

// Hub gives views typed, realm-scoped access to pools backed by the item
// store. Pools live in the session realm and die with it on Shutdown.
type Hub struct {
	mu       sync.RWMutex
	store    items.Store
	realm    *Realm
	freshTTL time.Duration
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithFreshTTL sets how long fetched data counts as fresh. Zero keeps it
// fresh until invalidated.
func WithFreshTTL(d time.Duration) HubOption {
	return func(h *Hub) { h.freshTTL = d }
}

// NewHub creates a Hub whose pools fetch through store.
func NewHub(parent context.Context, store items.Store, opts ...HubOption) *Hub { //nolint:revive // context-as-argument: mirrors NewRealm
	h := &Hub{
		store: store,
		realm: NewRealm("session", parent),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Realm returns the session realm.
func (h *Hub) Realm() *Realm {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.realm
}

// Context returns the session context. Canceled on Shutdown.
func (h *Hub) Context() context.Context {
	return h.Realm().Context()
}

// Store returns the underlying item store.
func (h *Hub) Store() items.Store { return h.store }

// Items returns the shopping list pool, newest first.
func (h *Hub) Items() *MutatingPool[[]items.Item] {
	return RealmPool(h.Realm(), ItemsKey, func() *MutatingPool[[]items.Item] {
		return NewMutatingPool(ItemsKey, PoolConfig{FreshTTL: h.freshTTL}, func(ctx context.Context) ([]items.Item, error) {
			list, err := h.store.List(ctx)
			if err != nil {
				return nil, err
			}
			return items.SortNewestFirst(list), nil
		})
	})
}

// Invalidate marks the pool under key stale. Reports whether the pool
// exists.
func (h *Hub) Invalidate(key string) bool {
	return h.Realm().InvalidateKey(key)
}

// Shutdown tears down the session realm, canceling in-flight requests.
func (h *Hub) Shutdown() {
	h.Realm().Teardown()
}
