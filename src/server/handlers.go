package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luizguil99/prismium/src/history"
	"github.com/luizguil99/prismium/src/storage"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, history.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrInvalidArgument), errors.Is(err, history.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrAllocationExhausted):
		return http.StatusConflict
	case errors.Is(err, storage.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) listChats(c *gin.Context) {
	chats, err := s.storeFor(c).GetAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// getChat resolves :ref as id or urlId. An optional rewindTo query parameter
// returns a read-time truncated view; the stored record is untouched.
func (s *Server) getChat(c *gin.Context) {
	chat, err := s.storeFor(c).Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if rewindTo := c.Query("rewindTo"); rewindTo != "" {
		view := *chat
		view.Messages = history.RewindView(chat, rewindTo)
		c.JSON(http.StatusOK, view)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// deleteChat resolves :ref as id or urlId, then stops the record's debounced
// writer before removing the row. Without the stop, a save still sitting in
// the quiescent window would land after the delete and resurrect the chat.
func (s *Server) deleteChat(c *gin.Context) {
	userID := c.GetString(identityKey)
	store := storage.NewChatStore(s.db, userID)
	ctx := c.Request.Context()
	ref := c.Param("ref")

	chat, err := store.Get(ctx, ref)
	switch {
	case err == nil:
		ref = chat.ID
	case errors.Is(err, storage.ErrNotFound):
		// Deleting an absent record stays idempotent, but a pending save
		// keyed by this id must still be cancelled below.
	default:
		s.fail(c, err)
		return
	}

	s.dropWriter(userID, ref)

	if err := store.DeleteByID(ctx, ref); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type saveRequest struct {
	ID          string              `json:"id"`
	URLID       string              `json:"urlId"`
	Description string              `json:"description"`
	Messages    storage.MessageList `json:"messages"`
	Metadata    storage.Metadata    `json:"metadata"`
}

// saveChat feeds the debounced writer with the latest full snapshot of the
// current conversation. The record is only persisted once the quiescent
// window elapses; a brand-new conversation gets its id and urlId here so the
// client can rebind its route immediately (history replace to /chat/{urlId}).
func (s *Server) saveChat(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err))
		return
	}
	if len(req.Messages) == 0 {
		s.fail(c, fmt.Errorf("%w: messages must not be empty", storage.ErrInvalidArgument))
		return
	}

	userID := c.GetString(identityKey)
	store := storage.NewChatStore(s.db, userID)
	ctx := c.Request.Context()

	if req.ID == "" {
		req.ID = storage.NewChatID()
	}
	if req.URLID == "" {
		seed := history.Slugify(req.Description)
		if seed == "" {
			seed = req.ID
		}
		urlID, err := history.AllocateURLID(ctx, store, seed)
		if err != nil {
			s.fail(c, err)
			return
		}
		req.URLID = urlID
	}

	s.writerFor(userID, req.ID).Save(&storage.Chat{
		ID:          req.ID,
		URLID:       req.URLID,
		Description: req.Description,
		Messages:    req.Messages,
		Metadata:    req.Metadata,
	})

	c.JSON(http.StatusAccepted, gin.H{
		"id":    req.ID,
		"urlId": req.URLID,
		"path":  history.ChatPath(req.URLID),
	})
}

type forkRequest struct {
	MessageID string `json:"messageId"`
}

func (s *Server) forkChat(c *gin.Context) {
	var req forkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err))
		return
	}

	urlID, err := s.serviceFor(c).Fork(c.Request.Context(), c.Param("ref"), req.MessageID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"urlId": urlID, "path": history.ChatPath(urlID)})
}

func (s *Server) duplicateChat(c *gin.Context) {
	urlID, err := s.serviceFor(c).Duplicate(c.Request.Context(), c.Param("ref"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"urlId": urlID, "path": history.ChatPath(urlID)})
}

type descriptionRequest struct {
	Description string `json:"description"`
}

func (s *Server) updateDescription(c *gin.Context) {
	var req descriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err))
		return
	}

	if err := s.serviceFor(c).UpdateDescription(c.Request.Context(), c.Param("ref"), req.Description); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type importRequest struct {
	Description string            `json:"description"`
	Messages    []storage.Message `json:"messages"`
}

func (s *Server) importChat(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", history.ErrInvalidFormat, err))
		return
	}

	urlID, err := s.serviceFor(c).ImportTranscript(c.Request.Context(), req.Description, req.Messages)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"urlId": urlID, "path": history.ChatPath(urlID)})
}

func (s *Server) exportChat(c *gin.Context) {
	transcript, err := s.serviceFor(c).ExportTranscript(c.Request.Context(), c.Param("ref"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="chat.json"`)
	c.JSON(http.StatusOK, transcript)
}
