package history

import (
	"context"
	"fmt"
	"strings"
)

// maxURLIDAttempts bounds slug collision resolution: the bare seed plus
// numeric suffixes up to seed-100.
const maxURLIDAttempts = 100

// Slugify reduces a seed string (typically a chat description or artifact
// name) to a URL-friendly slug: lowercased, runs of non-alphanumerics
// collapsed to single dashes. Returns "" when nothing survives.
func Slugify(seed string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(seed) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}

// AllocateURLID returns seed if unclaimed, otherwise the smallest-numbered
// seed-N not already present. The check runs against the current set of
// claimed urlIds at call time; concurrent writers can still race (the store's
// unique index surfaces the loser).
func AllocateURLID(ctx context.Context, store Store, seed string) (string, error) {
	taken, err := store.URLIDTaken(ctx, seed)
	if err != nil {
		return "", err
	}
	if !taken {
		return seed, nil
	}

	for i := 2; i <= maxURLIDAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", seed, i)
		taken, err := store.URLIDTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrAllocationExhausted, seed)
}
