package history

import (
	"sync"

	"github.com/luizguil99/prismium/src/storage"
)

// ChatPath returns the canonical route path for a chat slug.
func ChatPath(urlID string) string {
	return "/chat/" + urlID
}

// Session binds the "current conversation" identifiers to the client-visible
// route. It replaces the ambient globals of the original design with an
// explicit object whose lifecycle is tied to entering and leaving a
// conversation. Only history operations mutate it; one conversation is
// current at a time per session.
type Session struct {
	mu          sync.Mutex
	chatID      string
	urlID       string
	description string
	metadata    storage.Metadata
	bound       bool

	// onPathChange is invoked with /chat/{urlId} the first time a slug is
	// bound for a fresh conversation (the client performs a history replace,
	// not a push, so in-flight streaming UI is undisturbed).
	onPathChange func(path string)
}

// NewSession creates an empty session. onPathChange may be nil.
func NewSession(onPathChange func(path string)) *Session {
	return &Session{onPathChange: onPathChange}
}

// Enter makes chat the current conversation, replacing any previous binding.
func (s *Session) Enter(chat *storage.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chatID = chat.ID
	s.urlID = chat.URLID
	s.description = chat.Description
	s.metadata = chat.Metadata
	s.bound = chat.URLID != ""
}

// BindURLID records the slug allocated for a brand-new conversation and
// reports the canonical path once. Rebinding an already-bound session is a
// no-op.
func (s *Session) BindURLID(urlID string) {
	s.mu.Lock()
	if s.bound || urlID == "" {
		s.mu.Unlock()
		return
	}
	s.urlID = urlID
	s.bound = true
	hook := s.onPathChange
	s.mu.Unlock()

	if hook != nil {
		hook(ChatPath(urlID))
	}
}

// SetDescription updates the current conversation's title.
func (s *Session) SetDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = description
}

// SetMetadata replaces the current conversation's metadata bag.
func (s *Session) SetMetadata(md storage.Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = md
}

// Clear resets the session when the user leaves the conversation or starts a
// new one.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chatID = ""
	s.urlID = ""
	s.description = ""
	s.metadata = nil
	s.bound = false
}

// ChatID returns the current conversation id, or "" when none is bound.
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// URLID returns the current slug, or "" when none is bound.
func (s *Session) URLID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlID
}

// Description returns the current conversation title.
func (s *Session) Description() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.description
}

// Metadata returns the current metadata bag.
func (s *Session) Metadata() storage.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}
