package match

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/hbollon/go-edlib"
)

// DefaultMinScore is the similarity a word needs to be suggested.
const DefaultMinScore = 65

// FuzzyMatcher scores every word by normalized Levenshtein similarity and
// keeps those at or above MinScore.
//
// Before scoring, words are dropped whose length alone rules them out. With
// L = max(len(q), len(w)) the distance is at least |len(q)-len(w)|, so the
// similarity is at most 100*(L-|len(q)-len(w)|)/L; a word is skipped only
// when that bound is already below MinScore. This filter never loses a match.
type FuzzyMatcher struct {
	MinScore int
	// FirstCharFilter also drops words whose first letter differs from a
	// query of two or more letters. It is faster but can hide real matches
	// (a typo in the first letter), so it is off unless configured.
	FirstCharFilter bool
}

// Search implements Matcher.
func (m FuzzyMatcher) Search(store *vocab.Store, query string, limit int) ([]Candidate, error) {
	return m.search(store, query, limit, true)
}

func (m FuzzyMatcher) search(store *vocab.Store, query string, limit int, prefilter bool) ([]Candidate, error) {
	if err := CheckLimit(limit); err != nil {
		return nil, err
	}
	lowerQuery := strings.ToLower(query)
	queryLen := runeLen(lowerQuery)
	queryFirst, _ := utf8.DecodeRuneInString(lowerQuery)

	var entries []ranked
	for i := 0; i < store.Len(); i++ {
		word := store.Lower(i)
		wordLen := runeLen(word)
		if prefilter && !m.admit(queryLen, wordLen, queryFirst, word) {
			continue
		}

		l := max(queryLen, wordLen)
		if l == 0 {
			entries = append(entries, ranked{index: i, score: 100})
			continue
		}
		d := edlib.LevenshteinDistance(lowerQuery, word)
		// Integer form of 100*(l-d)/l >= MinScore.
		if 100*(l-d) < m.MinScore*l {
			continue
		}
		entries = append(entries, ranked{
			index: i,
			score: 100 * float64(l-d) / float64(l),
			tie:   abs(wordLen - queryLen),
		})
	}

	slices.SortFunc(entries, func(a, b ranked) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.tie, b.tie); c != 0 {
			return c
		}
		return compareText(store, a.index, b.index)
	})
	return toCandidates(store, entries, limit), nil
}

// admit is the pre-filter. See FuzzyMatcher for why the length bound is safe.
func (m FuzzyMatcher) admit(queryLen, wordLen int, queryFirst rune, word string) bool {
	l := max(queryLen, wordLen)
	if l > 0 && 100*(l-abs(queryLen-wordLen)) < m.MinScore*l {
		return false
	}
	if m.FirstCharFilter && queryLen >= 2 {
		if first, _ := utf8.DecodeRuneInString(word); first != queryFirst {
			return false
		}
	}
	return true
}
