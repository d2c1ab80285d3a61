package slug_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dom/game-catalog/internal/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func takenSet(slugs ...string) slug.ExistsFunc {
	set := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		set[s] = true
	}
	return func(_ context.Context, candidate string) (bool, error) {
		return set[candidate], nil
	}
}

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Half-Life 2", "half-life-2"},
		{"  Quake   III Arena ", "quake-iii-arena"},
		{"Baldur's Gate", "baldurs-gate"},
		{"Tom & Jerry", "tom-jerry"},
		{"Pokémon Snap", "pokemon-snap"},
		{"S.T.A.L.K.E.R.", "stalker"},
		{"snake_case name", "snake_case-name"},
		{"--leading and trailing--", "leading-and-trailing"},
		{"日本語", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Make(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "half", slug.Truncate("half-life", 5))
	assert.Equal(t, "half-life", slug.Truncate("half-life", 50))
	assert.Equal(t, "half-life", slug.Truncate("half-life", 0))
}

func TestUnique(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		base   string
		maxLen int
		taken  []string
		want   string
	}{
		{name: "free", base: "Halo", maxLen: 50, want: "halo"},
		{name: "first suffix", base: "Halo", maxLen: 50, taken: []string{"halo"}, want: "halo-1"},
		{name: "next suffix", base: "Halo", maxLen: 50, taken: []string{"halo", "halo-1", "halo-2"}, want: "halo-3"},
		{name: "truncated", base: "The Elder Scrolls V Skyrim", maxLen: 10, want: "the-elder"},
		{name: "suffix within bound", base: "abcdefghij", maxLen: 10, taken: []string{"abcdefghij"}, want: "abcdefgh-1"},
		{name: "empty base", base: "???", maxLen: 50, want: slug.Fallback},
		{name: "tiny bound", base: "abc", maxLen: 2, taken: []string{"ab"}, want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := slug.Unique(ctx, tt.base, tt.maxLen, takenSet(tt.taken...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnique_NeverExceedsMaxLen(t *testing.T) {
	ctx := context.Background()
	base := strings.Repeat("very long game title ", 20)

	for _, maxLen := range []int{1, 2, 5, 10, 29, 50} {
		taken := map[string]bool{}
		exists := func(_ context.Context, candidate string) (bool, error) {
			return taken[candidate], nil
		}
		// Occupy a run of slugs so suffixes are exercised.
		for i := 0; i < 12; i++ {
			got, err := slug.Unique(ctx, base, maxLen, exists)
			if errors.Is(err, slug.ErrExhausted) {
				break
			}
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), maxLen, "maxLen=%d got %q", maxLen, got)
			assert.False(t, taken[got], "duplicate slug %q", got)
			taken[got] = true
		}
	}
}

func TestUnique_Exhausted(t *testing.T) {
	exists := takenSet("a", "ab", "1", "2", "3", "4", "5", "6", "7", "8", "9")

	_, err := slug.Unique(context.Background(), "abc", 1, exists)
	assert.ErrorIs(t, err, slug.ErrExhausted)

	got, err := slug.Unique(context.Background(), "abc", 2, exists)
	require.NoError(t, err)
	assert.Equal(t, "10", got)
}

func TestUnique_Deterministic(t *testing.T) {
	ctx := context.Background()
	exists := takenSet("doom", "doom-1")

	first, err := slug.Unique(ctx, "DOOM", 50, exists)
	require.NoError(t, err)
	second, err := slug.Unique(ctx, "DOOM", 50, exists)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "doom-2", first)
}

func TestUnique_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := slug.Unique(context.Background(), "doom", 50, func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}
