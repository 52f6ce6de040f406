package vocab

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Word is one entry of a vocabulary. The same text in two vocabularies gives
// two distinct words.
type Word struct {
	Text       string
	Vocabulary Tag
}

func (w Word) String() string {
	return w.Text + "/" + string(w.Vocabulary)
}

// Store is the read-only list of words for one vocabulary set, in vocabulary
// order then file order. It is never mutated after Build; a new set means a
// new Store.
type Store struct {
	set    Set
	loaded Set
	words  []Word
	lower  []string
	trie   *patricia.Trie
}

// Build loads every vocabulary of set through loader, in set order.
// Vocabularies without data are skipped and reported as VocabularyLoadError
// values joined into the returned error; the store is still returned and
// usable. Only context cancellation returns a nil store.
func Build(ctx context.Context, loader Loader, set Set) (*Store, error) {
	start := time.Now()
	s := &Store{
		set:  set,
		trie: patricia.NewTrie(),
	}

	var loadErrs []error
	for _, tag := range set {
		words, err := loader.Load(ctx, tag)
		if err == nil && len(words) == 0 {
			err = ErrNoData
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warnf("Skipping vocabulary %s: %v", tag, err)
			loadErrs = append(loadErrs, &VocabularyLoadError{Tag: tag, Err: err})
			continue
		}
		for _, text := range words {
			s.add(Word{Text: text, Vocabulary: tag})
		}
		s.loaded = append(s.loaded, tag)
	}

	log.Debugf("Built word store for [%s]: %d words from %d vocabularies in %v",
		set, len(s.words), len(s.loaded), time.Since(start))
	return s, errors.Join(loadErrs...)
}

// NewStore builds a store directly from words, keeping their order.
func NewStore(set Set, words []Word) *Store {
	s := &Store{
		set:  set,
		trie: patricia.NewTrie(),
	}
	seen := make(map[Tag]bool)
	for _, w := range words {
		s.add(w)
		if !seen[w.Vocabulary] {
			seen[w.Vocabulary] = true
			s.loaded = append(s.loaded, w.Vocabulary)
		}
	}
	return s
}

func (s *Store) add(w Word) {
	idx := int32(len(s.words))
	lower := strings.ToLower(w.Text)
	s.words = append(s.words, w)
	s.lower = append(s.lower, lower)

	key := patricia.Prefix(lower)
	if item := s.trie.Get(key); item != nil {
		s.trie.Set(key, append(item.([]int32), idx))
		return
	}
	s.trie.Insert(key, []int32{idx})
}

// Len returns the number of words.
func (s *Store) Len() int {
	return len(s.words)
}

// Word returns the i-th word.
func (s *Store) Word(i int) Word {
	return s.words[i]
}

// Lower returns the lowercase text of the i-th word.
func (s *Store) Lower(i int) string {
	return s.lower[i]
}

// Words returns a copy of all words in store order.
func (s *Store) Words() []Word {
	out := make([]Word, len(s.words))
	copy(out, s.words)
	return out
}

// Set is the vocabulary set the store was requested for.
func (s *Store) Set() Set {
	return s.set
}

// Loaded lists the vocabularies that actually contributed words.
func (s *Store) Loaded() Set {
	return s.loaded
}

// Signature is the signature of the requested set.
func (s *Store) Signature() string {
	return s.set.Signature()
}

// VisitPrefix calls visit with the index of every word whose lowercase text
// starts with lowerPrefix. Visiting order is trie order, not store order.
func (s *Store) VisitPrefix(lowerPrefix string, visit func(i int)) error {
	err := s.trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(_ patricia.Prefix, item patricia.Item) error {
		for _, idx := range item.([]int32) {
			visit(int(idx))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to visit prefix %q: %w", lowerPrefix, err)
	}
	return nil
}
