package match

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/bastiangx/wordspell/pkg/vocab"
)

// PrefixMatcher returns words starting with the query, ignoring case.
// Shorter words rank first, then lexical order.
type PrefixMatcher struct {
	// UseTrie walks the store's prefix trie instead of scanning every word
	// with an anchored regexp. Both give the same results.
	UseTrie bool
}

// Search implements Matcher. An empty query returns the first limit words in
// store order, which is what hosts show as default suggestions.
func (m PrefixMatcher) Search(store *vocab.Store, query string, limit int) ([]Candidate, error) {
	if err := CheckLimit(limit); err != nil {
		return nil, err
	}
	lowerQuery := strings.ToLower(query)

	if lowerQuery == "" {
		n := min(limit, store.Len())
		out := make([]Candidate, n)
		for i := range n {
			w := store.Word(i)
			out[i] = Candidate{Word: w, Score: float64(runeLen(w.Text))}
		}
		return out, nil
	}

	var entries []ranked
	var err error
	if m.UseTrie {
		entries, err = m.fromTrie(store, lowerQuery)
	} else {
		entries, err = m.scan(store, lowerQuery)
	}
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b ranked) int {
		if c := cmp.Compare(a.score, b.score); c != 0 {
			return c
		}
		return compareText(store, a.index, b.index)
	})
	return toCandidates(store, entries, limit), nil
}

func (m PrefixMatcher) fromTrie(store *vocab.Store, lowerQuery string) ([]ranked, error) {
	var entries []ranked
	err := store.VisitPrefix(lowerQuery, func(i int) {
		entries = append(entries, ranked{index: i, score: float64(runeLen(store.Word(i).Text))})
	})
	return entries, err
}

// scan visits every word: a same-length word further down the store can
// still win the lexical tie-break, so there is no early exit.
func (m PrefixMatcher) scan(store *vocab.Store, lowerQuery string) ([]ranked, error) {
	re, err := regexp.Compile("^" + regexp.QuoteMeta(lowerQuery))
	if err != nil {
		return nil, fmt.Errorf("failed to compile prefix pattern: %w", err)
	}

	var entries []ranked
	for i := 0; i < store.Len(); i++ {
		if !re.MatchString(store.Lower(i)) {
			continue
		}
		entries = append(entries, ranked{index: i, score: float64(runeLen(store.Word(i).Text))})
	}
	return entries, nil
}
