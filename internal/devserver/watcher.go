package devserver

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const debounceDelay = 50 * time.Millisecond

// Watcher reloads a DB when its file changes on disk.
type Watcher struct {
	db      *DB
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	name    string

	mu       sync.Mutex
	debounce *time.Timer
	reloads  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts watching db's file. Close stops it.
//
// The directory is watched rather than the file, since an atomic write
// replaces the file and a file watch would be lost with the old inode.
func NewWatcher(db *DB, logger zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(db.Path())
	if err != nil {
		_ = fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		db:      db,
		watcher: fw,
		logger:  logger,
		name:    filepath.Base(abs),
		reloads: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Reloads signals after each reload attempt. Signals are dropped while
// the previous one is unread.
func (w *Watcher) Reloads() <-chan struct{} { return w.reloads }

// Close stops watching.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Base(event.Name) != w.name {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}
	if err := w.db.Reload(); err != nil {
		w.logger.Warn().Err(err).Msg("reload failed, keeping previous items")
	} else {
		w.logger.Info().Str("path", w.db.Path()).Msg("reloaded db")
	}

	select {
	case w.reloads <- struct{}{}:
	default:
	}
}
