package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luizguil99/prismium/src/storage"
)

func snapshot(n int) *storage.Chat {
	return &storage.Chat{
		ID:          "chat-1",
		URLID:       "chat-one",
		Description: "streaming chat",
		Messages: storage.MessageList{
			{ID: fmt.Sprintf("m%d", n), Role: storage.RoleAssistant, Content: fmt.Sprintf("revision %d", n)},
		},
	}
}

func TestDebouncedWriterCoalesces(t *testing.T) {
	store := newMemStore()
	w := NewDebouncedWriter(store, 20*time.Millisecond, nil)
	defer w.Stop()

	// A burst within the quiescent window persists exactly once, with the
	// payload from the last request.
	for i := 1; i <= 5; i++ {
		w.Save(snapshot(i))
	}

	require.Eventually(t, func() bool {
		return store.upsertCount() == 1
	}, time.Second, 5*time.Millisecond)

	last := store.last()
	require.NotNil(t, last)
	assert.Equal(t, "m5", last.Messages[0].ID)

	// Quiet after the write: still exactly one upsert.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, store.upsertCount())
}

func TestDebouncedWriterFlush(t *testing.T) {
	store := newMemStore()
	w := NewDebouncedWriter(store, time.Hour, nil)
	defer w.Stop()

	// Flush with nothing pending is a no-op.
	require.NoError(t, w.Flush(context.Background()))
	assert.Equal(t, 0, store.upsertCount())

	w.Save(snapshot(1))
	w.Save(snapshot(2))
	require.NoError(t, w.Flush(context.Background()))

	assert.Equal(t, 1, store.upsertCount())
	assert.Equal(t, "m2", store.last().Messages[0].ID)

	// The flushed snapshot is gone; a second flush writes nothing.
	require.NoError(t, w.Flush(context.Background()))
	assert.Equal(t, 1, store.upsertCount())
}

func TestDebouncedWriterFailureResets(t *testing.T) {
	store := newMemStore()
	store.failUpsert = errors.New("disk full")
	w := NewDebouncedWriter(store, time.Hour, nil)
	defer w.Stop()

	w.Save(snapshot(1))
	assert.Error(t, w.Flush(context.Background()))

	// No automatic retry; the next save starts a fresh cycle that succeeds.
	store.mu.Lock()
	store.failUpsert = nil
	store.mu.Unlock()

	w.Save(snapshot(2))
	require.NoError(t, w.Flush(context.Background()))
	assert.Equal(t, 1, store.upsertCount())
	assert.Equal(t, "m2", store.last().Messages[0].ID)
}

func TestDebouncedWriterIdle(t *testing.T) {
	store := newMemStore()
	w := NewDebouncedWriter(store, time.Minute, nil)

	assert.True(t, w.Idle())

	w.Save(snapshot(1))
	assert.False(t, w.Idle(), "armed writer is not idle")

	require.NoError(t, w.Flush(context.Background()))
	assert.True(t, w.Idle(), "flushed writer is idle again")
	assert.Equal(t, 1, store.upsertCount())
}

func TestDebouncedWriterStopAbandonsPending(t *testing.T) {
	store := newMemStore()
	w := NewDebouncedWriter(store, 20*time.Millisecond, nil)

	w.Save(snapshot(1))
	w.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, store.upsertCount(), "stopped writer must not fire")

	// Saves after Stop are dropped.
	w.Save(snapshot(2))
	require.NoError(t, w.Flush(context.Background()))
	assert.Equal(t, 0, store.upsertCount())
}
