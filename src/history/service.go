package history

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/luizguil99/prismium/src/storage"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Transcript is the serializable snapshot produced by ExportTranscript and
// consumed by ImportTranscript. The JSON shape is the download/upload file
// format.
type Transcript struct {
	Messages    []storage.Message `json:"messages"`
	Description string            `json:"description"`
	ExportDate  time.Time         `json:"exportDate"`
}

// Service composes the transcript store and the identifier allocator into the
// user-facing history workflows. Fork, duplicate and import always produce a
// new id and urlId and never mutate their source.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a history service over the given store.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger.With("component", "history")}
}

// Fork branches a conversation at a message: the new chat carries the source's
// message prefix up to and including messageID. Returns the new urlId for
// navigation.
func (s *Service) Fork(ctx context.Context, sourceRef, messageID string) (string, error) {
	source, err := s.store.Get(ctx, sourceRef)
	if err != nil {
		return "", err
	}

	idx := indexOfMessage(source.Messages, messageID)
	if idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrMessageNotFound, messageID)
	}

	messages := slices.Clone(source.Messages[:idx+1])
	return s.createChat(ctx, source.Description+" (fork)", messages, cloneMetadata(source.Metadata))
}

// Duplicate clones a whole conversation under a new id and urlId.
func (s *Service) Duplicate(ctx context.Context, sourceRef string) (string, error) {
	source, err := s.store.Get(ctx, sourceRef)
	if err != nil {
		return "", err
	}
	messages := slices.Clone(source.Messages)
	return s.createChat(ctx, source.Description+" (copy)", messages, cloneMetadata(source.Metadata))
}

// RewindView returns the prefix of chat.Messages ending at messageID
// inclusive, or the full list when messageID is empty or not found. It is a
// read-time view; nothing is persisted and the stored record keeps its full
// message list.
func RewindView(chat *storage.Chat, messageID string) []storage.Message {
	if chat == nil {
		return nil
	}
	if messageID == "" {
		return chat.Messages
	}
	idx := indexOfMessage(chat.Messages, messageID)
	if idx < 0 {
		return chat.Messages
	}
	return chat.Messages[:idx+1]
}

// UpdateDescription persists a new title for the chat without touching its
// messages. The ref resolves as id or urlId. Empty or whitespace-only
// descriptions are rejected.
func (s *Service) UpdateDescription(ctx context.Context, ref, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("%w: description must not be empty", storage.ErrInvalidArgument)
	}

	chat, err := s.store.Get(ctx, ref)
	if err != nil {
		return err
	}
	chat.Description = description
	chat.Timestamp = ""
	return s.store.Upsert(ctx, chat)
}

// ImportTranscript creates a new chat from an externally authored transcript.
// The payload is validated before any persistence call; messages missing ids
// are assigned fresh ones so they stay addressable as fork targets.
func (s *Service) ImportTranscript(ctx context.Context, description string, messages []storage.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: messages must be a non-empty array", ErrInvalidFormat)
	}

	imported := slices.Clone(messages)
	for i := range imported {
		if imported[i].ID == "" {
			imported[i].ID = uuid.New().String()
		}
		if err := validate.Struct(imported[i]); err != nil {
			return "", fmt.Errorf("%w: message %d: %v", ErrInvalidFormat, i, err)
		}
	}

	return s.createChat(ctx, description, imported, nil)
}

// ExportTranscript produces the downloadable snapshot of a chat. Pure read.
func (s *Service) ExportTranscript(ctx context.Context, ref string) (*Transcript, error) {
	chat, err := s.store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &Transcript{
		Messages:    chat.Messages,
		Description: chat.Description,
		ExportDate:  time.Now().UTC(),
	}, nil
}

// DeleteChat removes a chat. Idempotent.
func (s *Service) DeleteChat(ctx context.Context, id string) error {
	return s.store.DeleteByID(ctx, id)
}

// createChat allocates a fresh id and urlId and persists a new record. The
// urlId seed comes from the description, falling back to the opaque id when
// the description yields no slug.
func (s *Service) createChat(ctx context.Context, description string, messages []storage.Message, metadata storage.Metadata) (string, error) {
	id := storage.NewChatID()
	seed := Slugify(description)
	if seed == "" {
		seed = id
	}

	urlID, err := AllocateURLID(ctx, s.store, seed)
	if err != nil {
		return "", err
	}

	chat := &storage.Chat{
		ID:          id,
		URLID:       urlID,
		Description: description,
		Messages:    messages,
		Metadata:    metadata,
	}
	if err := s.store.Upsert(ctx, chat); err != nil {
		return "", err
	}

	s.logger.Debug("chat created", "id", id, "urlId", urlID, "messages", len(messages))
	return urlID, nil
}

func indexOfMessage(messages []storage.Message, messageID string) int {
	for i, m := range messages {
		if m.ID == messageID {
			return i
		}
	}
	return -1
}

func cloneMetadata(md storage.Metadata) storage.Metadata {
	if md == nil {
		return nil
	}
	out := make(storage.Metadata, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
