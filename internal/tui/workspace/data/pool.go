package data

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// PoolUpdatedMsg is sent when a pool's snapshot changes.
// Views match on Key, then read typed data with the pool's Get.
type PoolUpdatedMsg struct {
	Key string
}

// FetchFunc retrieves data for a pool.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// PoolConfig configures a Pool's timing behavior.
type PoolConfig struct {
	FreshTTL time.Duration // how long data stays fresh (0 = until invalidated)
}

// Pooler is the non-generic face of a pool, for Realm bookkeeping.
type Pooler interface {
	Invalidate()
	Clear()
}

// Pool is a typed cache for one logical data set with fetch capabilities.
// It does not push: views call Fetch or FetchIfStale and re-read on
// PoolUpdatedMsg.
type Pool[T any] struct {
	mu         sync.RWMutex
	key        string
	snapshot   Snapshot[T]
	config     PoolConfig
	fetchFn    FetchFunc[T]
	generation uint64 // incremented on Clear, used to discard stale fetches
	fetching   bool
}

// NewPool creates a Pool with the given key, config, and fetch function.
func NewPool[T any](key string, config PoolConfig, fetchFn FetchFunc[T]) *Pool[T] {
	return &Pool[T]{
		key:     key,
		config:  config,
		fetchFn: fetchFn,
	}
}

// Get returns the current snapshot. Never blocks on a fetch.
// Fresh data past FreshTTL is reported as stale.
func (p *Pool[T]) Get() Snapshot[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap := p.snapshot
	if snap.State == StateFresh && p.config.FreshTTL > 0 && time.Since(snap.FetchedAt) >= p.config.FreshTTL {
		snap.State = StateStale
	}
	return snap
}

// Fetch returns a Cmd that fetches fresh data and emits PoolUpdatedMsg.
// Returns nil if a fetch is already in flight.
func (p *Pool[T]) Fetch(ctx context.Context) tea.Cmd {
	gen, ok := p.beginFetch()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		data, err := p.fetchFn(ctx)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.fetching = false

		if p.generation != gen {
			return nil
		}
		if err != nil {
			p.failLocked(err)
		} else {
			p.storeLocked(data)
		}
		return PoolUpdatedMsg{Key: p.key}
	}
}

func (p *Pool[T]) beginFetch() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetching {
		return 0, false
	}
	p.fetching = true
	p.snapshot.State = StateLoading
	return p.generation, true
}

// FetchIfStale returns a Fetch Cmd unless data is fresh or a fetch is in flight.
func (p *Pool[T]) FetchIfStale(ctx context.Context) tea.Cmd {
	if p.isFreshOrFetching() {
		return nil
	}
	return p.Fetch(ctx)
}

func (p *Pool[T]) isFreshOrFetching() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.fetching {
		return true
	}
	if !p.snapshot.HasData || p.snapshot.State != StateFresh {
		return false
	}
	return p.config.FreshTTL == 0 || time.Since(p.snapshot.FetchedAt) < p.config.FreshTTL
}

// Invalidate marks current data as stale. The next FetchIfStale refetches.
func (p *Pool[T]) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot.HasData && p.snapshot.State == StateFresh {
		p.snapshot.State = StateStale
	}
}

// Fail puts the pool in the error state, keeping whatever data it holds.
func (p *Pool[T]) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failLocked(err)
}

func (p *Pool[T]) storeLocked(data T) {
	p.snapshot.Data = data
	p.snapshot.State = StateFresh
	p.snapshot.FetchedAt = time.Now()
	p.snapshot.HasData = true
	p.snapshot.Err = nil
}

func (p *Pool[T]) failLocked(err error) {
	p.snapshot.State = StateError
	p.snapshot.Err = err
}

// Clear resets the pool to its initial empty state. In-flight fetches
// started before Clear are discarded when they land.
func (p *Pool[T]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
}

func (p *Pool[T]) clearLocked() {
	p.snapshot = Snapshot[T]{}
	p.generation++
	p.fetching = false
}
