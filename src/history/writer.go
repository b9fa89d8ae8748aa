package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/luizguil99/prismium/src/storage"
)

// DefaultDebounceInterval is the quiescent window before a pending snapshot
// is persisted.
const DefaultDebounceInterval = 1000 * time.Millisecond

type writerState int

const (
	writerIdle writerState = iota
	writerPending
	writerWriting
)

// DebouncedWriter coalesces bursts of save requests for one conversation into
// infrequent upserts. Only the latest snapshot at the moment the timer fires
// is persisted; earlier pending payloads are discarded, not queued
// (last-write-wins; each snapshot is the full current state).
//
// At most one upsert is in flight at a time. A save arriving while a write is
// in flight re-arms the timer after the write completes. Failures are logged
// and the cycle resets; the next save starts fresh.
type DebouncedWriter struct {
	store    Store
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	state   writerState
	timer   *time.Timer
	pending *storage.Chat
	rearm   bool
	stopped bool

	// wmu serializes the actual upserts so Flush never races a timer fire.
	wmu sync.Mutex
}

// NewDebouncedWriter creates a writer for one conversation's save stream.
// A non-positive interval falls back to DefaultDebounceInterval.
func NewDebouncedWriter(store Store, interval time.Duration, logger *slog.Logger) *DebouncedWriter {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DebouncedWriter{
		store:    store,
		logger:   logger.With("component", "debounced_writer"),
		interval: interval,
	}
}

// Save records chat as the latest snapshot and arms (or resets) the quiescent
// timer. Never blocks on the store.
func (w *DebouncedWriter) Save(chat *storage.Chat) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.pending = chat

	switch w.state {
	case writerIdle:
		w.state = writerPending
		w.timer = time.AfterFunc(w.interval, w.fire)
	case writerPending:
		w.timer.Reset(w.interval)
	case writerWriting:
		w.rearm = true
	}
}

func (w *DebouncedWriter) fire() {
	w.mu.Lock()
	if w.stopped || w.state != writerPending || w.pending == nil {
		if w.state == writerPending {
			w.state = writerIdle
		}
		w.mu.Unlock()
		return
	}
	payload := w.pending
	w.pending = nil
	w.timer = nil
	w.state = writerWriting
	w.mu.Unlock()

	w.write(context.Background(), payload)
}

func (w *DebouncedWriter) write(ctx context.Context, payload *storage.Chat) error {
	w.wmu.Lock()
	// Stop may have won the race between the timer firing and this write
	// starting; the captured snapshot is abandoned, not persisted.
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		w.wmu.Unlock()
		w.mu.Lock()
		w.state = writerIdle
		w.rearm = false
		w.mu.Unlock()
		return nil
	}
	err := w.store.Upsert(ctx, payload)
	w.wmu.Unlock()

	if err != nil {
		// No synchronous caller awaits this result; report and reset.
		w.logger.Error("debounced save failed", "chatId", payload.ID, "error", err)
	}

	w.mu.Lock()
	if w.rearm && w.pending != nil && !w.stopped {
		w.rearm = false
		w.state = writerPending
		w.timer = time.AfterFunc(w.interval, w.fire)
	} else {
		w.rearm = false
		w.state = writerIdle
	}
	w.mu.Unlock()
	return err
}

// Flush synchronously persists the pending snapshot, if any, cancelling the
// armed timer. Used for deterministic tests and shutdown. A flush with
// nothing pending is a no-op.
func (w *DebouncedWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.pending == nil {
		if w.state == writerPending {
			w.state = writerIdle
		}
		w.mu.Unlock()
		return nil
	}
	payload := w.pending
	w.pending = nil
	w.state = writerWriting
	w.mu.Unlock()

	return w.write(ctx, payload)
}

// Idle reports whether the writer has nothing pending and no write in
// flight. Idle writers are safe to discard.
func (w *DebouncedWriter) Idle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == writerIdle && w.pending == nil && !w.rearm
}

// Stop abandons any pending timer and snapshot and waits for an in-flight
// upsert to finish. Saves after Stop are dropped.
func (w *DebouncedWriter) Stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	w.rearm = false
	if w.state == writerPending {
		w.state = writerIdle
	}
	w.mu.Unlock()

	// Taking wmu blocks until any upsert already past the pending check has
	// committed, so callers may act on the store right after Stop returns.
	w.wmu.Lock()
	w.wmu.Unlock()
}
