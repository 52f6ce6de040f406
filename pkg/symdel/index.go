/*
Package symdel implements a symmetric-delete spelling index over a Word Store.

Every word is expanded into its deletion variants (all strings reachable by
deleting up to K characters) and each variant points back to the words that
produced it. A query is expanded the same way; any word sharing a variant with
the query is a candidate, and candidates are verified with the optimal string
alignment distance so only words within K edits are returned.

The index is built once per store and never patched. A new vocabulary set
means a new store and a new index.
*/
package symdel

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/charmbracelet/log"
	"github.com/hbollon/go-edlib"
)

// DefaultMaxDistance bounds index size; variants grow combinatorially with it.
const DefaultMaxDistance = 2

// checkEvery is how many words are indexed between cancellation checks.
const checkEvery = 1024

// ErrTooLarge is the cause of an IndexBuildError when the key budget is exceeded.
var ErrTooLarge = errors.New("deletion index exceeds key budget")

// IndexBuildError reports a build that could not finish: it ran out of its
// key budget or was cancelled. A previously published index stays valid.
type IndexBuildError struct {
	Cause error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("deletion index build failed: %v", e.Cause)
}

func (e *IndexBuildError) Unwrap() error {
	return e.Cause
}

// Options control index construction.
type Options struct {
	// MaxDistance is K, the number of deletions indexed per word.
	MaxDistance int
	// MaxKeys caps the number of distinct variants. Zero means no cap.
	MaxKeys int
}

// Hit is a word within MaxDistance of a query.
type Hit struct {
	Index    int
	Distance int
}

// Index maps deletion variants to store indices.
type Index struct {
	store       *vocab.Store
	maxDistance int
	deletes     map[string][]int32
	postings    int
	buildTime   time.Duration
}

// Stats describes a built index.
type Stats struct {
	Words       int
	Keys        int
	Postings    int
	MaxDistance int
	BuildTime   time.Duration
}

// Build indexes every word of store. It is pure: the same store and options
// always give the same index.
func Build(ctx context.Context, store *vocab.Store, opts Options) (*Index, error) {
	if opts.MaxDistance < 0 {
		return nil, fmt.Errorf("%w: negative max distance %d", vocab.ErrInvalidInput, opts.MaxDistance)
	}
	start := time.Now()

	idx := &Index{
		store:       store,
		maxDistance: opts.MaxDistance,
		deletes:     make(map[string][]int32, store.Len()*(opts.MaxDistance+1)),
	}

	for i := 0; i < store.Len(); i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, &IndexBuildError{Cause: err}
			}
		}
		Variants(store.Lower(i), opts.MaxDistance).Each(func(v string) bool {
			idx.deletes[v] = append(idx.deletes[v], int32(i))
			idx.postings++
			return false
		})
		if opts.MaxKeys > 0 && len(idx.deletes) > opts.MaxKeys {
			return nil, &IndexBuildError{Cause: fmt.Errorf("%w: more than %d keys after %d words", ErrTooLarge, opts.MaxKeys, i+1)}
		}
	}

	idx.buildTime = time.Since(start)
	log.Debugf("Built deletion index: words=%d keys=%d postings=%d K=%d in %v",
		store.Len(), len(idx.deletes), idx.postings, opts.MaxDistance, idx.buildTime)
	return idx, nil
}

// Store returns the snapshot the index was built against.
func (x *Index) Store() *vocab.Store {
	return x.store
}

// MaxDistance returns K.
func (x *Index) MaxDistance() int {
	return x.maxDistance
}

// Stats returns size information.
func (x *Index) Stats() Stats {
	return Stats{
		Words:       x.store.Len(),
		Keys:        len(x.deletes),
		Postings:    x.postings,
		MaxDistance: x.maxDistance,
		BuildTime:   x.buildTime,
	}
}

// Lookup returns up to limit words within K edits of lowerQuery, closest
// first, then shorter words, then lexical and store order. It never mutates
// the index and returns an empty slice when nothing is close enough.
func (x *Index) Lookup(lowerQuery string, limit int) []Hit {
	hits := []Hit{}
	if limit <= 0 {
		return hits
	}
	queryLen := utf8.RuneCountInString(lowerQuery)
	seen := make(map[int32]struct{})

	Variants(lowerQuery, x.maxDistance).Each(func(v string) bool {
		for _, i := range x.deletes[v] {
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}

			word := x.store.Lower(int(i))
			if abs(utf8.RuneCountInString(word)-queryLen) > x.maxDistance {
				continue
			}
			d := edlib.OSADamerauLevenshteinDistance(lowerQuery, word)
			if d <= x.maxDistance {
				hits = append(hits, Hit{Index: int(i), Distance: d})
			}
		}
		return false
	})

	slices.SortFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		wa, wb := x.store.Word(a.Index).Text, x.store.Word(b.Index).Text
		if c := cmp.Compare(utf8.RuneCountInString(wa), utf8.RuneCountInString(wb)); c != 0 {
			return c
		}
		if c := cmp.Compare(wa, wb); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
