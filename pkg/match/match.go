// Package match implements the three word matching strategies.
//
// Each matcher takes a Word Store, a query and a limit and returns at most
// limit candidates, best first. Scores are only comparable within one
// matcher's results: word length for prefix, similarity in [0,100] for fuzzy
// and edit distance for correction.
package match

import (
	"cmp"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/wordspell/pkg/vocab"
)

// Kind selects a matcher. The set is closed.
type Kind int

const (
	Prefix Kind = iota
	Fuzzy
	Correction
)

// Kinds lists every matcher kind.
var Kinds = []Kind{Prefix, Fuzzy, Correction}

func (k Kind) String() string {
	switch k {
	case Prefix:
		return "prefix"
	case Fuzzy:
		return "fuzzy"
	case Correction:
		return "correction"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= Prefix && k <= Correction
}

// ParseKind accepts the kind names case-insensitively. "regex" is kept as an
// alias for prefix, the name older preference files use.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prefix", "regex":
		return Prefix, nil
	case "fuzzy":
		return Fuzzy, nil
	case "correction", "symspell":
		return Correction, nil
	}
	return 0, fmt.Errorf("%w: unknown matching kind %q", vocab.ErrInvalidInput, s)
}

// MarshalText lets Kind be used in TOML and msgpack as its name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %s", vocab.ErrInvalidInput, k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Candidate is a word with a matcher specific score.
type Candidate struct {
	Word  vocab.Word
	Score float64
}

// Matcher is the contract shared by all strategies.
type Matcher interface {
	Search(store *vocab.Store, query string, limit int) ([]Candidate, error)
}

// CheckLimit rejects zero and negative limits.
func CheckLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", vocab.ErrInvalidInput, limit)
	}
	return nil
}

// ranked is an internal working entry: store index plus score.
type ranked struct {
	index int
	score float64
	// tie is the secondary key, smaller first.
	tie int
}

func compareText(store *vocab.Store, a, b int) int {
	if c := cmp.Compare(store.Word(a).Text, store.Word(b).Text); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

func toCandidates(store *vocab.Store, entries []ranked, limit int) []Candidate {
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]Candidate, len(entries))
	for i, e := range entries {
		out[i] = Candidate{Word: store.Word(e.index), Score: e.score}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
