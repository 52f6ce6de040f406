package symdel

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeOf(texts ...string) *vocab.Store {
	words := make([]vocab.Word, len(texts))
	for i, text := range texts {
		words[i] = vocab.Word{Text: text, Vocabulary: vocab.English}
	}
	return vocab.NewStore(vocab.Set{vocab.English}, words)
}

func hitTexts(store *vocab.Store, hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = store.Word(h.Index).Text
	}
	return out
}

func TestVariants(t *testing.T) {
	got := Variants("abc", 1)
	assert.ElementsMatch(t, []string{"abc", "bc", "ac", "ab"}, got.ToSlice())

	got = Variants("abc", 2)
	assert.ElementsMatch(t, []string{"abc", "bc", "ac", "ab", "a", "b", "c"}, got.ToSlice())

	got = Variants("ab", 5)
	assert.ElementsMatch(t, []string{"ab", "a", "b", ""}, got.ToSlice())

	assert.ElementsMatch(t, []string{"über", "ber", "üer", "übr", "übe"}, Variants("über", 1).ToSlice())
	assert.Equal(t, 1, Variants("word", 0).Cardinality())
}

func TestLookupRanksCloserFirst(t *testing.T) {
	store := storeOf("spell", "spell-check", "spelling")
	idx, err := Build(context.Background(), store, Options{MaxDistance: 2})
	require.NoError(t, err)

	hits := idx.Lookup("spel", 9)
	require.NotEmpty(t, hits)
	assert.Equal(t, "spell", store.Word(hits[0].Index).Text)
	assert.Equal(t, 1, hits[0].Distance)
	for _, h := range hits[1:] {
		assert.Greater(t, h.Distance, hits[0].Distance)
	}
}

func TestLookupEdits(t *testing.T) {
	store := storeOf("black", "block", "back", "blacks", "slack", "flack")
	idx, err := Build(context.Background(), store, Options{MaxDistance: 1})
	require.NoError(t, err)

	testCases := []struct {
		name  string
		query string
		want  []string
	}{
		{"Exact", "black", []string{"black"}},
		{"Substitution", "blacj", []string{"black"}},
		{"Transposition", "balck", []string{"back", "black"}},
		{"Deletion", "blac", []string{"black"}},
		{"Insertion", "blackso", []string{"blacks"}},
		{"NoMatch", "xyz", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := hitTexts(store, idx.Lookup(tc.query, 9))
			if tc.name == "Exact" {
				require.NotEmpty(t, got)
				assert.Equal(t, tc.want[0], got[0])
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLookupTieBreak(t *testing.T) {
	store := storeOf("cart", "card", "cat", "care")
	idx, err := Build(context.Background(), store, Options{MaxDistance: 1})
	require.NoError(t, err)

	// "car" is one edit from all four; the 3-letter word first, then lexical.
	assert.Equal(t, []string{"cat", "card", "care", "cart"}, hitTexts(store, idx.Lookup("car", 9)))
	assert.Equal(t, []string{"cat", "card"}, hitTexts(store, idx.Lookup("car", 2)))
	assert.Empty(t, idx.Lookup("car", 0))
}

func TestLookupDeletionProperty(t *testing.T) {
	words := []string{
		"spelling", "correction", "vocabulary", "keyboard", "launcher",
		"dictionary", "translate", "extension", "symmetric", "candidate",
	}
	store := storeOf(words...)
	const k = 2
	idx, err := Build(context.Background(), store, Options{MaxDistance: k})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		wi := rng.Intn(len(words))
		runes := []rune(words[wi])
		d := rng.Intn(k + 1)
		for j := 0; j < d; j++ {
			p := rng.Intn(len(runes))
			runes = append(runes[:p:p], runes[p+1:]...)
		}
		query := string(runes)

		found := false
		for _, h := range idx.Lookup(query, len(words)) {
			if h.Index == wi {
				found = true
				assert.LessOrEqual(t, h.Distance, d, "query %q for %q", query, words[wi])
			}
		}
		assert.True(t, found, "query %q (d=%d) should find %q", query, d, words[wi])
	}
}

func TestBuildEmptyStore(t *testing.T) {
	idx, err := Build(context.Background(), storeOf(), Options{MaxDistance: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Stats().Keys)
	assert.Empty(t, idx.Lookup("anything", 9))
}

func TestBuildKeyBudget(t *testing.T) {
	_, err := Build(context.Background(), storeOf("vocabulary", "dictionary"), Options{MaxDistance: 2, MaxKeys: 10})
	require.Error(t, err)

	var buildErr *IndexBuildError
	require.True(t, errors.As(err, &buildErr))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, storeOf("a"), Options{MaxDistance: 2})

	var buildErr *IndexBuildError
	require.True(t, errors.As(err, &buildErr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildIsDeterministic(t *testing.T) {
	store := storeOf("alpha", "alpine", "alps", "help")
	a, err := Build(context.Background(), store, Options{MaxDistance: 2})
	require.NoError(t, err)
	b, err := Build(context.Background(), store, Options{MaxDistance: 2})
	require.NoError(t, err)

	assert.Equal(t, a.Stats().Keys, b.Stats().Keys)
	assert.Equal(t, a.Stats().Postings, b.Stats().Postings)
	assert.Equal(t, a.Lookup("alp", 9), b.Lookup("alp", 9))
}
