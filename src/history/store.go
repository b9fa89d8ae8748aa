// Package history implements the conversation-history workflows built on top
// of the transcript store: identifier allocation, fork/duplicate/rewind,
// transcript import/export, debounced persistence, and session binding.
package history

import (
	"context"

	"github.com/luizguil99/prismium/src/storage"
)

// Store is the transcript persistence surface the history operations need.
// *storage.ChatStore implements it; tests substitute an in-memory fake.
type Store interface {
	GetAll(ctx context.Context) ([]storage.Chat, error)
	GetByID(ctx context.Context, id string) (*storage.Chat, error)
	GetByURLID(ctx context.Context, urlID string) (*storage.Chat, error)
	Get(ctx context.Context, ref string) (*storage.Chat, error)
	Upsert(ctx context.Context, chat *storage.Chat) error
	DeleteByID(ctx context.Context, id string) error
	URLIDTaken(ctx context.Context, urlID string) (bool, error)
}
