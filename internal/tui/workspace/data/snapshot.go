package data

import "time"

// SnapshotState is the lifecycle state of a pool's data.
type SnapshotState int

const (
	StateEmpty   SnapshotState = iota // never fetched
	StateFresh                        // last fetch succeeded
	StateStale                        // invalidated, still usable
	StateLoading                      // fetch in flight (may hold data)
	StateError                        // last fetch or mutation failed (may hold data)
)

func (s SnapshotState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time read of a pool.
type Snapshot[T any] struct {
	Data      T
	State     SnapshotState
	Err       error
	FetchedAt time.Time
	HasData   bool // distinguishes zero-value T from "never fetched"
}

// Usable reports whether there is data to show, whatever its freshness.
func (s Snapshot[T]) Usable() bool {
	return s.HasData
}

// Failed reports whether the last fetch or mutation failed.
func (s Snapshot[T]) Failed() bool {
	return s.State == StateError
}
