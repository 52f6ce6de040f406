// Package vocab holds the vocabulary domain: the enumerated vocabulary tags,
// ordered vocabulary sets and the Word Store built from them.
package vocab

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidInput is returned for requests rejected before any work is done:
// unknown vocabulary tags, unknown matcher kinds, non-positive limits.
var ErrInvalidInput = errors.New("invalid input")

// Tag names one vocabulary (a word list for a language or variant).
type Tag string

const (
	Deutsch    Tag = "deutsch"
	English    Tag = "english"
	EnglishUK  Tag = "english_uk"
	Espanol    Tag = "espanol"
	Francais   Tag = "francais"
	Italiano   Tag = "italiano"
	Nederlands Tag = "nederlands"
	Norsk      Tag = "norsk"
	Swiss      Tag = "swiss"
)

// AllTags lists every known vocabulary in a stable order.
var AllTags = []Tag{Deutsch, English, EnglishUK, Espanol, Francais, Italiano, Nederlands, Norsk, Swiss}

// DefaultSet is used when no vocabulary preference is configured.
var DefaultSet = Set{EnglishUK, English}

// Valid reports whether t is one of the known vocabularies.
func (t Tag) Valid() bool {
	return slices.Contains(AllTags, t)
}

// ParseTag trims and lowercases s and checks it against the known tags.
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown vocabulary %q", ErrInvalidInput, s)
	}
	return t, nil
}

// Set is an ordered list of active vocabularies. Order decides word order in
// the store; it does not affect the signature.
type Set []Tag

// ParseSet parses the comma separated preference format, e.g. "english_uk, english".
// Repeated tags keep their first position.
func ParseSet(s string) (Set, error) {
	return NewSet(strings.Split(s, ","))
}

// NewSet validates names and builds a Set from them.
func NewSet(names []string) (Set, error) {
	set := make(Set, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t, err := ParseTag(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(set, t) {
			set = append(set, t)
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary set", ErrInvalidInput)
	}
	return set, nil
}

// Signature identifies the set independent of order. Two sets with the same
// tags share cached results.
func (s Set) Signature() string {
	tags := make([]string, len(s))
	for i, t := range s {
		tags[i] = string(t)
	}
	slices.Sort(tags)
	return strings.Join(tags, ",")
}

// Strings returns the tags as plain strings, in set order.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = string(t)
	}
	return out
}

func (s Set) String() string {
	return strings.Join(s.Strings(), ",")
}
