package storage

import "time"

// Message roles. Role is polymorphic in display only; storage treats all
// three the same.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Chat is a persisted conversation transcript. ID is the opaque primary key;
// URLID is the human-friendly slug used in /chat/{urlId} routes. Timestamp is
// the last-write time as an ISO-8601 string, stamped on every upsert.
type Chat struct {
	ID          string      `json:"id" db:"id"`
	UserID      string      `json:"user_id" db:"user_id"`
	URLID       string      `json:"urlId" db:"url_id"`
	Description string      `json:"description" db:"description"`
	Messages    MessageList `json:"messages" db:"messages"`
	Timestamp   string      `json:"timestamp" db:"timestamp"`
	Metadata    Metadata    `json:"metadata,omitempty" db:"metadata"`
}

// Message is one entry in a chat transcript. Content may embed artifact
// blocks (file contents, shell commands) as an application-level convention;
// storage does not interpret them.
type Message struct {
	ID        string    `json:"id" validate:"required"`
	Role      string    `json:"role" validate:"required,oneof=user assistant system"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
