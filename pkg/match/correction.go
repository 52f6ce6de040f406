package match

import (
	"errors"
	"strings"

	"github.com/bastiangx/wordspell/pkg/symdel"
	"github.com/bastiangx/wordspell/pkg/vocab"
)

var (
	// ErrNoIndex is returned when a correction search runs without an index.
	ErrNoIndex = errors.New("deletion index not built")
	// ErrStaleIndex is returned when the index belongs to another store.
	ErrStaleIndex = errors.New("deletion index built for a different word store")
)

// CorrectionMatcher looks words up in a deletion index. Scores are edit
// distances, so lower is better.
type CorrectionMatcher struct {
	Index *symdel.Index
}

// Search implements Matcher.
func (m CorrectionMatcher) Search(store *vocab.Store, query string, limit int) ([]Candidate, error) {
	if err := CheckLimit(limit); err != nil {
		return nil, err
	}
	if m.Index == nil {
		return nil, ErrNoIndex
	}
	if m.Index.Store() != store {
		return nil, ErrStaleIndex
	}

	hits := m.Index.Lookup(strings.ToLower(query), limit)
	out := make([]Candidate, len(hits))
	for i, h := range hits {
		out[i] = Candidate{Word: store.Word(h.Index), Score: float64(h.Distance)}
	}
	return out, nil
}
