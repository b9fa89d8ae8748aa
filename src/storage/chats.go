package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/georgysavva/scany/v2/sqlscan"
)

const chatColumns = `id, user_id, url_id, description, messages, timestamp, metadata`

// ChatStore provides owner-scoped access to persisted chats. All reads are
// restricted to the owning identity; writes require one.
type ChatStore struct {
	db     ExecQuerier
	userID string
}

// NewChatStore binds a store to the given database handle and owner identity.
// An empty userID yields a store whose writes fail with ErrUnauthorized.
func NewChatStore(db *DB, userID string) *ChatStore {
	return &ChatStore{db: db.DB(), userID: userID}
}

// UserID returns the identity the store is scoped to.
func (s *ChatStore) UserID() string {
	return s.userID
}

// GetAll returns every chat owned by the caller, most recently written first.
func (s *ChatStore) GetAll(ctx context.Context) ([]Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE user_id = ? ORDER BY timestamp DESC`
	var chats []Chat
	if err := sqlscan.Select(ctx, s.db, &chats, query, s.userID); err != nil {
		return nil, storeErr("get all", err)
	}
	return chats, nil
}

// GetByID retrieves a chat by its opaque primary identifier.
func (s *ChatStore) GetByID(ctx context.Context, id string) (*Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = ? AND user_id = ?`
	return s.getOne(ctx, query, id)
}

// GetByURLID retrieves a chat by its URL-friendly slug identifier.
func (s *ChatStore) GetByURLID(ctx context.Context, urlID string) (*Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE url_id = ? AND user_id = ?`
	return s.getOne(ctx, query, urlID)
}

// Get resolves a route parameter that may be either an id or a urlId: exact
// id lookup first, slug lookup second. No guessing beyond that two-step
// contract.
func (s *ChatStore) Get(ctx context.Context, ref string) (*Chat, error) {
	chat, err := s.GetByID(ctx, ref)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.GetByURLID(ctx, ref)
}

func (s *ChatStore) getOne(ctx context.Context, query, key string) (*Chat, error) {
	var chat Chat
	err := sqlscan.Get(ctx, s.db, &chat, query, key, s.userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeErr("get", err)
	}
	// A persisted chat with no messages is not user-visible.
	if len(chat.Messages) == 0 {
		return nil, ErrNotFound
	}
	return &chat, nil
}

// Upsert inserts or fully replaces a chat keyed by its id. The record's
// timestamp is stamped with the current time when the caller omits one and
// rejected when present but malformed. The stored owner is always the
// caller's identity; replacing another identity's record fails.
func (s *ChatStore) Upsert(ctx context.Context, chat *Chat) error {
	if s.userID == "" {
		return ErrUnauthorized
	}
	if chat == nil || chat.ID == "" {
		return ErrInvalidArgument
	}
	if chat.Timestamp == "" {
		chat.Timestamp = NowTimestamp()
	} else {
		normalized, err := NormalizeTimestamp(chat.Timestamp)
		if err != nil {
			return ErrInvalidArgument
		}
		chat.Timestamp = normalized
	}

	var owner string
	err := sqlscan.Get(ctx, s.db, &owner, `SELECT user_id FROM chats WHERE id = ?`, chat.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh insert
	case err != nil:
		return storeErr("upsert", err)
	case owner != s.userID:
		return ErrUnauthorized
	}

	chat.UserID = s.userID
	query := `
		INSERT INTO chats (id, user_id, url_id, description, messages, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url_id = excluded.url_id,
			description = excluded.description,
			messages = excluded.messages,
			timestamp = excluded.timestamp,
			metadata = excluded.metadata`
	_, err = s.db.ExecContext(ctx, query,
		chat.ID, chat.UserID, chat.URLID, chat.Description, chat.Messages, chat.Timestamp, chat.Metadata)
	if err != nil {
		return storeErr("upsert", err)
	}
	return nil
}

// DeleteByID removes a chat. Deleting an absent chat is not an error.
func (s *ChatStore) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ? AND user_id = ?`, id, s.userID); err != nil {
		return storeErr("delete", err)
	}
	return nil
}

// URLIDTaken reports whether urlID is already claimed in the caller's scope.
func (s *ChatStore) URLIDTaken(ctx context.Context, urlID string) (bool, error) {
	var n int
	query := `SELECT COUNT(1) FROM chats WHERE user_id = ? AND url_id = ?`
	if err := sqlscan.Get(ctx, s.db, &n, query, s.userID, urlID); err != nil {
		return false, storeErr("url id lookup", err)
	}
	return n > 0, nil
}
