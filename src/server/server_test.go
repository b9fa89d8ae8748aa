package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luizguil99/prismium/src/config"
	"github.com/luizguil99/prismium/src/history"
	"github.com/luizguil99/prismium/src/storage"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.Open(filepath.Join(t.TempDir(), "chats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.DefaultConfig()
	cfg.Server.JWTSecret = testSecret
	// Long interval: tests persist deterministically through Flush instead
	// of waiting out the quiescent window.
	cfg.History.DebounceInterval = time.Minute

	s := New(db, cfg, nil)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s, db
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := MintToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func seedChat(t *testing.T, db *storage.DB, userID, id, urlID string, messageIDs ...string) {
	t.Helper()
	chat := &storage.Chat{ID: id, URLID: urlID, Description: "seeded chat"}
	for i, mid := range messageIDs {
		role := storage.RoleUser
		if i%2 == 1 {
			role = storage.RoleAssistant
		}
		chat.Messages = append(chat.Messages, storage.Message{ID: mid, Role: role, Content: "msg " + mid})
	}
	require.NoError(t, storage.NewChatStore(db, userID).Upsert(context.Background(), chat))
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/chats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/chats", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with a different secret is rejected.
	bad, err := MintToken("other-secret", "alice", time.Hour)
	require.NoError(t, err)
	w = doJSON(t, s, http.MethodGet, "/api/chats", bad, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaveAllocatesAndPersists(t *testing.T) {
	s, _ := newTestServer(t)
	token := tokenFor(t, "alice")

	w := doJSON(t, s, http.MethodPut, "/api/chats", token, gin.H{
		"description": "Weather App",
		"messages": []gin.H{
			{"id": "u1", "role": "user", "content": "build a weather app"},
			{"id": "a1", "role": "assistant", "content": "sure"},
		},
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		ID    string `json:"id"`
		URLID string `json:"urlId"`
		Path  string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "weather-app", resp.URLID)
	assert.Equal(t, history.ChatPath("weather-app"), resp.Path)

	// The write is debounced; flush to persist deterministically.
	require.NoError(t, s.Flush(context.Background()))

	w = doJSON(t, s, http.MethodGet, "/api/chats/weather-app", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chat storage.Chat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chat))
	assert.Equal(t, resp.ID, chat.ID)
	assert.Len(t, chat.Messages, 2)

	w = doJSON(t, s, http.MethodGet, "/api/chats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chats []storage.Chat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chats))
	assert.Len(t, chats, 1)
}

func TestSaveRejectsEmptyMessages(t *testing.T) {
	s, _ := newTestServer(t)
	token := tokenFor(t, "alice")

	w := doJSON(t, s, http.MethodPut, "/api/chats", token, gin.H{"description": "empty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRewindQuery(t *testing.T) {
	s, db := newTestServer(t)
	token := tokenFor(t, "alice")
	seedChat(t, db, "alice", "chatX", "seeded", "u1", "a1", "u2", "a2")

	w := doJSON(t, s, http.MethodGet, "/api/chats/chatX?rewindTo=a1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view storage.Chat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Len(t, view.Messages, 2)

	// The stored record is untouched.
	w = doJSON(t, s, http.MethodGet, "/api/chats/chatX", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var full storage.Chat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &full))
	assert.Len(t, full.Messages, 4)
}

func TestForkEndpoint(t *testing.T) {
	s, db := newTestServer(t)
	token := tokenFor(t, "alice")
	seedChat(t, db, "alice", "chatX", "seeded", "u1", "a1", "u2", "a2")

	w := doJSON(t, s, http.MethodPost, "/api/chats/chatX/fork", token, gin.H{"messageId": "u2"})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		URLID string `json:"urlId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, s, http.MethodGet, "/api/chats/"+resp.URLID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var forked storage.Chat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &forked))
	assert.Len(t, forked.Messages, 3)
	assert.Equal(t, "seeded chat (fork)", forked.Description)

	w = doJSON(t, s, http.MethodPost, "/api/chats/chatX/fork", token, gin.H{"messageId": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateEndpoint(t *testing.T) {
	s, db := newTestServer(t)
	token := tokenFor(t, "alice")
	seedChat(t, db, "alice", "chatX", "seeded", "u1", "a1")

	w := doJSON(t, s, http.MethodPost, "/api/chats/seeded/duplicate", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		URLID string `json:"urlId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEqual(t, "seeded", resp.URLID)
}

func TestUpdateDescriptionValidation(t *testing.T) {
	s, db := newTestServer(t)
	token := tokenFor(t, "alice")
	seedChat(t, db, "alice", "chatX", "seeded", "u1", "a1")

	w := doJSON(t, s, http.MethodPut, "/api/chats/chatX/description", token, gin.H{"description": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPut, "/api/chats/chatX/description", token, gin.H{"description": "renamed"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	// The ref also resolves as a urlId.
	w = doJSON(t, s, http.MethodPut, "/api/chats/seeded/description", token, gin.H{"description": "renamed again"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	chat, err := storage.NewChatStore(db, "alice").GetByID(context.Background(), "chatX")
	require.NoError(t, err)
	assert.Equal(t, "renamed again", chat.Description)
}

func TestImportAndExport(t *testing.T) {
	s, _ := newTestServer(t)
	token := tokenFor(t, "alice")

	w := doJSON(t, s, http.MethodPost, "/api/chats/import", token, gin.H{
		"description": "imported chat",
		"messages": []gin.H{
			{"id": "u1", "role": "user", "content": "hello"},
			{"id": "a1", "role": "assistant", "content": "hi"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		URLID string `json:"urlId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, s, http.MethodGet, "/api/chats/"+resp.URLID+"/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	var transcript history.Transcript
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &transcript))
	assert.Equal(t, "imported chat", transcript.Description)
	assert.Len(t, transcript.Messages, 2)
	assert.False(t, transcript.ExportDate.IsZero())

	// Malformed import is rejected before any persistence.
	w = doJSON(t, s, http.MethodPost, "/api/chats/import", token, gin.H{"description": "empty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOwnerIsolation(t *testing.T) {
	s, db := newTestServer(t)
	seedChat(t, db, "alice", "chatX", "seeded", "u1", "a1")

	bob := tokenFor(t, "bob")
	w := doJSON(t, s, http.MethodGet, "/api/chats/chatX", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/chats", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chats []storage.Chat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chats))
	assert.Empty(t, chats)
}

func TestDeleteIdempotent(t *testing.T) {
	s, db := newTestServer(t)
	token := tokenFor(t, "alice")
	seedChat(t, db, "alice", "chatX", "seeded", "u1", "a1")

	w := doJSON(t, s, http.MethodDelete, "/api/chats/chatX", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, s, http.MethodDelete, "/api/chats/chatX", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/chats/chatX", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBySlug(t *testing.T) {
	s, db := newTestServer(t)
	token := tokenFor(t, "alice")
	seedChat(t, db, "alice", "chatX", "seeded", "u1", "a1")

	w := doJSON(t, s, http.MethodDelete, "/api/chats/seeded", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := storage.NewChatStore(db, "alice").GetByID(context.Background(), "chatX")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// A delete must cancel the save still sitting in the quiescent window,
// otherwise the debounced upsert lands afterwards and resurrects the record.
func TestDeleteCancelsPendingSave(t *testing.T) {
	s, db := newTestServer(t)
	token := tokenFor(t, "alice")

	w := doJSON(t, s, http.MethodPut, "/api/chats", token, gin.H{
		"description": "short lived",
		"messages": []gin.H{
			{"id": "u1", "role": "user", "content": "hello"},
		},
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, s, http.MethodDelete, "/api/chats/"+resp.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Flush stands in for the timer firing; the cancelled snapshot must not
	// be written.
	require.NoError(t, s.Flush(context.Background()))

	_, err := storage.NewChatStore(db, "alice").GetByID(context.Background(), resp.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	w = doJSON(t, s, http.MethodGet, "/api/chats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chats []storage.Chat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chats))
	assert.Empty(t, chats)
}

func TestFlushEvictsIdleWriters(t *testing.T) {
	s, _ := newTestServer(t)
	token := tokenFor(t, "alice")

	w := doJSON(t, s, http.MethodPut, "/api/chats", token, gin.H{
		"description": "evicted",
		"messages": []gin.H{
			{"id": "u1", "role": "user", "content": "hello"},
		},
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	s.mu.Lock()
	live := len(s.writers)
	s.mu.Unlock()
	require.Equal(t, 1, live)

	require.NoError(t, s.Flush(context.Background()))

	s.mu.Lock()
	live = len(s.writers)
	s.mu.Unlock()
	assert.Zero(t, live)
}
