package main

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luizguil99/prismium/src/history"
	"github.com/luizguil99/prismium/src/storage"
)

func TestTranscriptFileRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	original := &history.Transcript{
		Description: "Weather app",
		ExportDate:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Messages: []storage.Message{
			{ID: "u1", Role: storage.RoleUser, Content: "build a weather app"},
			{ID: "a1", Role: storage.RoleAssistant, Content: "sure"},
		},
	}

	require.NoError(t, writeTranscript(fs, "/export/chat.json", original))

	got, err := readTranscript(fs, "/export/chat.json")
	require.NoError(t, err)
	assert.Equal(t, original.Description, got.Description)
	assert.Equal(t, original.Messages, got.Messages)
	assert.True(t, original.ExportDate.Equal(got.ExportDate))
}

func TestReadTranscriptMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte("{not json"), 0644))

	_, err := readTranscript(fs, "/bad.json")
	assert.ErrorIs(t, err, history.ErrInvalidFormat)
}

func TestReadTranscriptMissingFile(t *testing.T) {
	_, err := readTranscript(afero.NewMemMapFs(), "/absent.json")
	assert.Error(t, err)
}
