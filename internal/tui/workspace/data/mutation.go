package data

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Mutation describes a write against the store with an optimistic local patch.
type Mutation[T any] interface {
	// ApplyLocally returns current with the mutation's effect applied.
	ApplyLocally(current T) T

	// ApplyRemotely performs the store write.
	ApplyRemotely(ctx context.Context) error

	// IsReflectedIn reports whether remote already contains the effect,
	// so the pending patch can be dropped on reconcile.
	IsReflectedIn(remote T) bool
}

// MutationDoneMsg is sent after a mutation's remote write succeeded and
// the pool was refetched. Mutation is the value passed to Apply.
type MutationDoneMsg struct {
	Key      string
	Mutation any
}

// MutationErrorMsg is sent when a mutation's remote write fails. The
// optimistic patch has already been rolled back.
type MutationErrorMsg struct {
	Key      string
	Mutation any
	Err      error
}

type pendingMutation[T any] struct {
	id       uint64
	mutation Mutation[T]
}

// MutatingPool extends Pool with mutations: patch locally, write remotely,
// then invalidate and refetch the whole collection.
type MutatingPool[T any] struct {
	*Pool[T]
	pendingMutations []pendingMutation[T]
	lastRemoteData   T // last fetched state, before local patches
	hasRemoteData    bool
	mutSeq           uint64
}

// NewMutatingPool creates a MutatingPool with the given key, config, and fetch function.
func NewMutatingPool[T any](key string, config PoolConfig, fetchFn FetchFunc[T]) *MutatingPool[T] {
	return &MutatingPool[T]{
		Pool: NewPool[T](key, config, fetchFn),
	}
}

// Apply patches the snapshot synchronously and returns a Cmd that performs
// the remote write. On success the mutation stops being pending, the pool
// is refetched and the snapshot becomes the fetched data, and
// MutationDoneMsg is emitted. On failure the patch is rolled back and
// MutationErrorMsg is emitted.
//
// A failed refetch after a successful write leaves the pool in the error
// state with the optimistic data still in place.
func (mp *MutatingPool[T]) Apply(ctx context.Context, mutation Mutation[T]) tea.Cmd {
	mp.mu.Lock()
	if !mp.hasRemoteData && mp.snapshot.HasData {
		mp.lastRemoteData = mp.snapshot.Data
		mp.hasRemoteData = true
	}

	gen := mp.generation
	mp.mutSeq++
	mid := mp.mutSeq
	mp.pendingMutations = append(mp.pendingMutations, pendingMutation[T]{
		id:       mid,
		mutation: mutation,
	})
	if mp.snapshot.HasData {
		mp.snapshot.Data = mutation.ApplyLocally(mp.snapshot.Data)
	}
	key := mp.key
	fetchFn := mp.fetchFn
	mp.mu.Unlock()

	return func() tea.Msg {
		if err := mutation.ApplyRemotely(ctx); err != nil {
			mp.rollback(gen, mid)
			return MutationErrorMsg{Key: key, Mutation: mutation, Err: err}
		}

		mp.acknowledge(gen, mid)
		mp.Invalidate()
		remoteData, err := fetchFn(ctx)
		if err != nil {
			mp.mu.Lock()
			if mp.generation == gen {
				mp.failLocked(err)
			}
			mp.mu.Unlock()
			return MutationDoneMsg{Key: key, Mutation: mutation}
		}

		mp.reconcile(gen, remoteData)
		return MutationDoneMsg{Key: key, Mutation: mutation}
	}
}

// Fetch overrides Pool.Fetch to reconcile pending mutations against the
// fetched data rather than overwriting them.
func (mp *MutatingPool[T]) Fetch(ctx context.Context) tea.Cmd {
	gen, ok := mp.beginFetch()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		data, err := mp.fetchFn(ctx)

		mp.mu.Lock()
		mp.fetching = false
		if mp.generation != gen {
			mp.mu.Unlock()
			return nil
		}
		if err != nil {
			mp.failLocked(err)
			mp.mu.Unlock()
			return PoolUpdatedMsg{Key: mp.key}
		}
		mp.mu.Unlock()

		mp.reconcile(gen, data)
		return PoolUpdatedMsg{Key: mp.key}
	}
}

// FetchIfStale overrides Pool.FetchIfStale to route through MutatingPool.Fetch.
func (mp *MutatingPool[T]) FetchIfStale(ctx context.Context) tea.Cmd {
	if mp.isFreshOrFetching() {
		return nil
	}
	return mp.Fetch(ctx)
}

// Clear overrides Pool.Clear to also drop mutation state.
func (mp *MutatingPool[T]) Clear() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.clearLocked()
	var zero T
	mp.pendingMutations = nil
	mp.lastRemoteData = zero
	mp.hasRemoteData = false
}

// Pending returns the number of mutations whose remote write has not
// finished and that fetched data does not reflect yet.
func (mp *MutatingPool[T]) Pending() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return len(mp.pendingMutations)
}

// reconcile rebuilds the snapshot from remote data, re-applying pending
// mutations the store does not reflect yet.
func (mp *MutatingPool[T]) reconcile(gen uint64, remoteData T) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.generation != gen {
		return
	}

	mp.lastRemoteData = remoteData
	mp.hasRemoteData = true

	remaining := mp.pendingMutations[:0]
	for _, pm := range mp.pendingMutations {
		if !pm.mutation.IsReflectedIn(remoteData) {
			remaining = append(remaining, pm)
		}
	}
	mp.pendingMutations = remaining

	mp.storeLocked(mp.replayLocked(remoteData))
}

// acknowledge drops a mutation whose remote write succeeded. The store now
// owns its effect, so later fetches show whatever the store returns. Its
// patch is folded into the last remote state so a rollback of another
// mutation before the refetch lands does not undo it.
func (mp *MutatingPool[T]) acknowledge(gen, mutationID uint64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.generation != gen {
		return
	}

	remaining := mp.pendingMutations[:0]
	for _, pm := range mp.pendingMutations {
		if pm.id != mutationID {
			remaining = append(remaining, pm)
			continue
		}
		if mp.hasRemoteData {
			mp.lastRemoteData = pm.mutation.ApplyLocally(mp.lastRemoteData)
		}
	}
	mp.pendingMutations = remaining
}

// rollback drops a failed mutation and rebuilds from the last remote state.
func (mp *MutatingPool[T]) rollback(gen, mutationID uint64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.generation != gen {
		return
	}

	remaining := mp.pendingMutations[:0]
	for _, pm := range mp.pendingMutations {
		if pm.id != mutationID {
			remaining = append(remaining, pm)
		}
	}
	mp.pendingMutations = remaining

	if mp.hasRemoteData {
		mp.snapshot.Data = mp.replayLocked(mp.lastRemoteData)
	}
}

func (mp *MutatingPool[T]) replayLocked(data T) T {
	for _, pm := range mp.pendingMutations {
		data = pm.mutation.ApplyLocally(data)
	}
	return data
}
