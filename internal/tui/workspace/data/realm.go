package data

import (
	"context"
	"fmt"
	"sync"
)

// Realm owns a group of pools with a shared lifecycle. Teardown cancels
// the realm context, which aborts in-flight fetches and writes, and clears
// every pool.
type Realm struct {
	mu     sync.RWMutex
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	pools  map[string]Pooler
}

// NewRealm creates a realm with a cancellable context derived from parent.
func NewRealm(name string, parent context.Context) *Realm { //nolint:revive // context-as-argument: name is the primary differentiator
	ctx, cancel := context.WithCancel(parent)
	return &Realm{
		name:   name,
		ctx:    ctx,
		cancel: cancel,
		pools:  make(map[string]Pooler),
	}
}

// Context returns the realm's context. Canceled on teardown.
func (r *Realm) Context() context.Context { return r.ctx }

// Teardown cancels the realm's context and clears all pools.
// The realm must not be reused afterwards.
func (r *Realm) Teardown() {
	r.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pools {
		p.Clear()
	}
	r.pools = make(map[string]Pooler)
}

// InvalidateKey marks one pool stale. Reports whether the key exists.
func (r *Realm) InvalidateKey(key string) bool {
	r.mu.RLock()
	p, ok := r.pools[key]
	r.mu.RUnlock()
	if ok {
		p.Invalidate()
	}
	return ok
}

// RealmPool returns the pool registered under key, creating it with create
// on first use. Each key maps to exactly one concrete pool type.
func RealmPool[P Pooler](r *Realm, key string, create func() P) P {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pools[key]; ok {
		typed, ok := p.(P)
		if !ok {
			panic(fmt.Sprintf("realm %q: pool %q has type %T, want %T", r.name, key, p, *new(P)))
		}
		return typed
	}
	pool := create()
	r.pools[key] = pool
	return pool
}
