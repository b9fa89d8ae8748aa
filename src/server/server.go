// Package server exposes the conversation-history workflows over HTTP. It is
// the backend-for-frontend surface the chat UI talks to; every route is
// scoped to the authenticated owner resolved by the JWT middleware.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/luizguil99/prismium/src/config"
	"github.com/luizguil99/prismium/src/history"
	"github.com/luizguil99/prismium/src/storage"
)

type Server struct {
	db     *storage.DB
	cfg    *config.Config
	logger *slog.Logger
	engine *gin.Engine

	mu      sync.Mutex
	writers map[string]*history.DebouncedWriter
}

// New wires the HTTP API over the given database.
func New(db *storage.DB, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		db:      db,
		cfg:     cfg,
		logger:  logger.With("component", "server"),
		writers: make(map[string]*history.DebouncedWriter),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	s.registerRoutes(engine.Group("/api", AuthRequired(cfg.Server.JWTSecret)))
	s.engine = engine
	return s
}

func (s *Server) registerRoutes(rg *gin.RouterGroup) {
	rg.GET("/chats", s.listChats)
	rg.PUT("/chats", s.saveChat)
	rg.GET("/chats/:ref", s.getChat)
	rg.DELETE("/chats/:ref", s.deleteChat)
	rg.POST("/chats/import", s.importChat)
	rg.POST("/chats/:ref/fork", s.forkChat)
	rg.POST("/chats/:ref/duplicate", s.duplicateChat)
	rg.PUT("/chats/:ref/description", s.updateDescription)
	rg.GET("/chats/:ref/export", s.exportChat)
}

// Handler returns the HTTP handler for use with http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// storeFor builds an owner-scoped store for the authenticated request.
func (s *Server) storeFor(c *gin.Context) *storage.ChatStore {
	return storage.NewChatStore(s.db, c.GetString(identityKey))
}

func (s *Server) serviceFor(c *gin.Context) *history.Service {
	return history.NewService(s.storeFor(c), s.logger)
}

// writerFor returns the debounced writer for one (owner, chat) pair, creating
// it on first use. One writer per conversation keeps at most one upsert in
// flight per record.
func (s *Server) writerFor(userID, chatID string) *history.DebouncedWriter {
	key := userID + "|" + chatID

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.writers[key]; ok {
		return w
	}
	store := storage.NewChatStore(s.db, userID)
	w := history.NewDebouncedWriter(store, s.cfg.History.DebounceInterval, s.logger)
	s.writers[key] = w
	return w
}

// dropWriter stops and discards the writer for one (owner, chat) pair, if
// any. Called when the chat is explicitly deleted so a stale debounced save
// cannot resurrect the record.
func (s *Server) dropWriter(userID, chatID string) {
	key := userID + "|" + chatID

	s.mu.Lock()
	w, ok := s.writers[key]
	if ok {
		delete(s.writers, key)
	}
	s.mu.Unlock()

	if ok {
		w.Stop()
	}
}

// Flush persists every pending snapshot and evicts writers left idle, so the
// map does not grow without bound. Called on shutdown so debounced writes are
// not lost.
func (s *Server) Flush(ctx context.Context) error {
	s.mu.Lock()
	writers := make(map[string]*history.DebouncedWriter, len(s.writers))
	for key, w := range s.writers {
		writers[key] = w
	}
	s.mu.Unlock()

	var firstErr error
	for _, w := range writers {
		if err := w.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.mu.Lock()
	for key, w := range writers {
		if s.writers[key] == w && w.Idle() {
			delete(s.writers, key)
		}
	}
	s.mu.Unlock()
	return firstErr
}

// Close flushes pending writes and stops all writers.
func (s *Server) Close(ctx context.Context) error {
	err := s.Flush(ctx)

	s.mu.Lock()
	for _, w := range s.writers {
		w.Stop()
	}
	s.writers = make(map[string]*history.DebouncedWriter)
	s.mu.Unlock()
	return err
}
