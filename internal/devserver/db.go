// Package devserver serves the items resource from a JSON file, standing in
// for the backend the client talks to in production.
package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// LockTimeout bounds how long a write waits for the file lock. Past it the
// write proceeds unlocked rather than hanging the server.
const LockTimeout = 100 * time.Millisecond

// DefaultPath is the db file used when none is given.
const DefaultPath = "db.json"

var (
	// ErrNotFound is returned for ids the db does not hold.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when a create names an id already in use.
	ErrDuplicateID = errors.New("duplicate id")
)

// Record is one stored item. Fields are kept as decoded so anything a
// client sends round-trips.
type Record map[string]any

// ID returns the record's id in its string form.
func (r Record) ID() string {
	return idString(r["id"])
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case json.Number:
		return id.String()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// dbFile is the on-disk shape: {"items": [...]}.
type dbFile struct {
	Items []Record `json:"items"`
}

// DB holds the items in memory and persists every write to path.
type DB struct {
	path string

	mu    sync.RWMutex
	items []Record
}

// Open loads path, creating it with an empty list when missing.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}
	db := &DB{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := db.save(nil); err != nil {
			return nil, fmt.Errorf("creating %s: %w", path, err)
		}
	}
	if err := db.Reload(); err != nil {
		return nil, err
	}
	return db, nil
}

// Path returns the db file path.
func (db *DB) Path() string { return db.path }

// lockPath returns the lock file next to the db file.
func (db *DB) lockPath() string { return db.path + ".lock" }

// Reload replaces the in-memory items with the file's contents.
// A malformed file leaves the current items in place.
func (db *DB) Reload() error {
	data, err := os.ReadFile(db.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", db.path, err)
	}

	var f dbFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parsing %s: %w", db.path, err)
	}
	if f.Items == nil {
		f.Items = []Record{}
	}

	db.mu.Lock()
	db.items = f.Items
	db.mu.Unlock()
	return nil
}

// List returns copies of all records in file order.
func (db *DB) List() []Record {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]Record, len(db.items))
	for i, r := range db.items {
		out[i] = maps.Clone(r)
	}
	return out
}

// Get returns the record with id.
func (db *DB) Get(id string) (Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	i := db.indexLocked(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return maps.Clone(db.items[i]), nil
}

// Create stores rec. Without an id it gets one past the largest numeric id.
func (db *DB) Create(rec Record) (Record, error) {
	rec = maps.Clone(rec)
	var out Record
	err := db.update(func(items []Record) ([]Record, error) {
		if id := rec.ID(); id != "" {
			if indexOf(items, id) >= 0 {
				return nil, ErrDuplicateID
			}
		} else {
			rec["id"] = json.Number(strconv.FormatInt(nextID(items), 10))
		}
		out = maps.Clone(rec)
		return append(items, rec), nil
	})
	return out, err
}

// Patch merges fields into the record with id. The id itself never changes.
func (db *DB) Patch(id string, fields Record) (Record, error) {
	var out Record
	err := db.update(func(items []Record) ([]Record, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		merged := maps.Clone(items[i])
		for k, v := range fields {
			if k != "id" {
				merged[k] = v
			}
		}
		items[i] = merged
		out = maps.Clone(merged)
		return items, nil
	})
	return out, err
}

// Replace swaps the record with id for rec, keeping the id.
func (db *DB) Replace(id string, rec Record) (Record, error) {
	var out Record
	err := db.update(func(items []Record) ([]Record, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		next := maps.Clone(rec)
		next["id"] = items[i]["id"]
		items[i] = next
		out = maps.Clone(next)
		return items, nil
	})
	return out, err
}

// Delete removes the record with id.
func (db *DB) Delete(id string) error {
	return db.update(func(items []Record) ([]Record, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

// update applies fn to a copy of the items and persists the result. The
// in-memory list only changes once the file write succeeded.
func (db *DB) update(fn func([]Record) ([]Record, error)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	next, err := fn(append([]Record(nil), db.items...))
	if err != nil {
		return err
	}
	if err := db.save(next); err != nil {
		return err
	}
	db.items = next
	return nil
}

func (db *DB) indexLocked(id string) int { return indexOf(db.items, id) }

func indexOf(items []Record, id string) int {
	for i, r := range items {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func nextID(items []Record) int64 {
	var maxID int64
	for _, r := range items {
		if n, err := strconv.ParseInt(r.ID(), 10, 64); err == nil && n > maxID {
			maxID = n
		}
	}
	return maxID + 1
}

// save writes items atomically under the file lock.
func (db *DB) save(items []Record) error {
	if items == nil {
		items = []Record{}
	}

	if dir := filepath.Dir(db.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	lock, err := db.acquireLock()
	if err != nil {
		return err
	}
	if lock != nil {
		defer func() { _ = lock.Unlock() }()
	}

	data, err := json.MarshalIndent(dbFile{Items: items}, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	// Unique temp name so two unlocked writers never share one.
	tmpPath := fmt.Sprintf("%s.%d.%d.tmp", db.path, os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil { //nolint:gosec // G306: db file is meant to be readable
		return err
	}

	if runtime.GOOS == "windows" {
		_ = os.Remove(db.path)
	}

	if err := os.Rename(tmpPath, db.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// acquireLock takes the exclusive file lock. Returns nil without error
// when the lock stays busy past LockTimeout.
func (db *DB) acquireLock() (*flock.Flock, error) {
	fl := flock.New(db.lockPath())

	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, err
	}
	if !locked {
		return nil, nil
	}
	return fl, nil
}
