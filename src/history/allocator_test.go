package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luizguil99/prismium/src/storage"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		seed string
		want string
	}{
		{"plain", "weather", "weather"},
		{"mixed case and spaces", "My Weather App", "my-weather-app"},
		{"punctuation collapsed", "todo: list!!  (v2)", "todo-list-v2"},
		{"leading and trailing junk", "  --hello--  ", "hello"},
		{"nothing survives", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.seed))
		})
	}
}

func claim(t *testing.T, store *memStore, urlIDs ...string) {
	t.Helper()
	for i, u := range urlIDs {
		id := fmt.Sprintf("claimed-%d", i)
		require.NoError(t, store.Upsert(context.Background(), &storage.Chat{
			ID:    id,
			URLID: u,
			Messages: storage.MessageList{
				{ID: "m", Role: storage.RoleUser, Content: "x"},
			},
		}))
	}
}

func TestAllocateURLID(t *testing.T) {
	ctx := context.Background()

	t.Run("unused seed returned as is", func(t *testing.T) {
		store := newMemStore()
		got, err := AllocateURLID(ctx, store, "app")
		require.NoError(t, err)
		assert.Equal(t, "app", got)
	})

	t.Run("smallest free suffix wins", func(t *testing.T) {
		store := newMemStore()
		claim(t, store, "app", "app-2", "app-4")
		got, err := AllocateURLID(ctx, store, "app")
		require.NoError(t, err)
		assert.Equal(t, "app-3", got)
	})

	t.Run("exhausted after bound", func(t *testing.T) {
		store := newMemStore()
		taken := []string{"app"}
		for i := 2; i <= maxURLIDAttempts; i++ {
			taken = append(taken, fmt.Sprintf("app-%d", i))
		}
		claim(t, store, taken...)

		_, err := AllocateURLID(ctx, store, "app")
		assert.ErrorIs(t, err, ErrAllocationExhausted)
	})
}
