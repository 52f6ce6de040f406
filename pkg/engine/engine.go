/*
Package engine owns the matching state of one process: the Word Store, the
lazily built deletion index and the result cache, and dispatches queries to
the configured matcher.

	eng, _ := engine.New(vocab.NewDirLoader("vocabularies"), engine.DefaultOptions())
	_ = eng.SetVocabulary(ctx, vocab.Set{vocab.EnglishUK, vocab.English})
	words, err := eng.Query(ctx, "speling")

Stores and indices are published by pointer swap: readers always see a
complete structure, and a failed build leaves the current one in place.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/wordspell/pkg/cache"
	"github.com/bastiangx/wordspell/pkg/match"
	"github.com/bastiangx/wordspell/pkg/symdel"
	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidInput is returned before any work is done for bad requests.
	ErrInvalidInput = vocab.ErrInvalidInput
	// ErrNoVocabulary is returned by queries issued before SetVocabulary.
	ErrNoVocabulary = errors.New("no vocabulary set loaded")
)

// Engine is safe for concurrent use, though hosts are expected to issue one
// query at a time.
type Engine struct {
	loader vocab.Loader
	cache  *cache.ResultCache

	store atomic.Pointer[vocab.Store]
	index atomic.Pointer[symdel.Index]
	runs  atomic.Uint64

	flight singleflight.Group

	mu   sync.Mutex
	opts Options
	// failed remembers the store whose index build failed for good, so the
	// build is not retried on every keystroke.
	failed    *vocab.Store
	failedErr error
	// build is the running background build, nil when none runs.
	build *indexBuild
	// buildIndex is symdel.Build, swapped in tests.
	buildIndex func(context.Context, *vocab.Store, symdel.Options) (*symdel.Index, error)
}

// indexBuild is one background build. Its results count only while it is
// still e.build.
type indexBuild struct {
	store  *vocab.Store
	opts   symdel.Options
	cancel context.CancelFunc
	done   chan struct{}
}

// Stats is a snapshot of engine state.
type Stats struct {
	Vocabulary    vocab.Set
	Loaded        vocab.Set
	Words         int
	Matching      match.Kind
	Limit         int
	Index         *symdel.Stats
	IndexBuilding bool
	Cache         cache.Stats
	MatcherRuns   uint64
}

// New creates an engine with no vocabulary loaded.
func New(loader vocab.Loader, opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		loader:     loader,
		cache:      cache.New(opts.CacheCapacity),
		opts:       opts,
		buildIndex: symdel.Build,
	}, nil
}

// SetVocabulary loads set into a new Word Store and publishes it. Any index
// or cached result of the previous set is dropped and a running background
// build is cancelled. Vocabularies without data are skipped; their
// VocabularyLoadError values are returned while the switch still happens.
func (e *Engine) SetVocabulary(ctx context.Context, set vocab.Set) error {
	if len(set) == 0 {
		return fmt.Errorf("%w: empty vocabulary set", ErrInvalidInput)
	}
	for _, t := range set {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown vocabulary %q", ErrInvalidInput, t)
		}
	}

	store, loadErr := vocab.Build(ctx, e.loader, set)
	if store == nil {
		return loadErr
	}

	e.mu.Lock()
	e.cancelBuildLocked()
	e.store.Store(store)
	e.index.Store(nil)
	e.failed, e.failedErr = nil, nil
	e.cache.Purge()
	e.mu.Unlock()

	log.Infof("Vocabulary set to [%s]: %d words", set, store.Len())
	return loadErr
}

// Store returns the current Word Store, nil before SetVocabulary.
func (e *Engine) Store() *vocab.Store {
	return e.store.Load()
}

// Options returns the current options.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetMatching switches the default matcher.
func (e *Engine) SetMatching(kind match.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown matching kind %s", ErrInvalidInput, kind)
	}
	e.mu.Lock()
	e.opts.Matching = kind
	e.mu.Unlock()
	return nil
}

// Reconfigure replaces the options. Cached results are dropped since scores
// and limits may change; the index is dropped when its parameters change.
// The cache keeps its original capacity.
func (e *Engine) Reconfigure(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if opts.CacheCapacity != e.opts.CacheCapacity {
		log.Warnf("Cache capacity change (%d -> %d) takes effect on restart", e.opts.CacheCapacity, opts.CacheCapacity)
		opts.CacheCapacity = e.opts.CacheCapacity
	}
	if opts.indexOptions() != e.opts.indexOptions() {
		e.cancelBuildLocked()
		e.index.Store(nil)
		e.failed, e.failedErr = nil, nil
	}
	e.opts = opts
	e.cache.Purge()
	return nil
}

// Query runs raw through the configured matcher with the configured limit.
func (e *Engine) Query(ctx context.Context, raw string) ([]match.Candidate, error) {
	opts := e.Options()
	return e.QueryWith(ctx, raw, opts.Matching, opts.Limit)
}

// QueryWith runs raw through kind, returning at most limit candidates. No
// results is an empty slice, not an error. An empty query yields the default
// suggestions (the first words of the store) whatever the kind.
func (e *Engine) QueryWith(ctx context.Context, raw string, kind match.Kind, limit int) ([]match.Candidate, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown matching kind %s", ErrInvalidInput, kind)
	}
	if err := match.CheckLimit(limit); err != nil {
		return nil, err
	}
	store := e.store.Load()
	if store == nil {
		return nil, ErrNoVocabulary
	}

	query := Normalize(raw)
	if query == "" {
		kind = match.Prefix
	}
	key := cache.Key{Kind: kind, Signature: store.Signature(), Query: query, Limit: limit}
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	matcher, cacheable, err := e.matcher(ctx, store, kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := matcher.Search(store, query, limit)
	e.runs.Add(1)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s query %q: %d results in %v", kind, query, len(results), time.Since(start))

	// Results for a store that was swapped out meanwhile are not cached.
	if cacheable && e.store.Load() == store {
		e.cache.Put(key, results)
	}
	return results, nil
}

// matcher picks the strategy for kind. cacheable is false when the result
// will not be what kind asked for (fuzzy standing in for correction).
func (e *Engine) matcher(ctx context.Context, store *vocab.Store, kind match.Kind) (m match.Matcher, cacheable bool, err error) {
	opts := e.Options()
	switch kind {
	case match.Prefix:
		return match.PrefixMatcher{UseTrie: opts.PrefixTrie}, true, nil
	case match.Fuzzy:
		return fuzzyMatcher(opts), true, nil
	case match.Correction:
		idx, err := e.correctionIndex(ctx, store, opts)
		if err != nil {
			return nil, false, err
		}
		if idx == nil {
			log.Debug("Deletion index not ready, serving fuzzy results")
			return fuzzyMatcher(opts), false, nil
		}
		return match.CorrectionMatcher{Index: idx}, true, nil
	default:
		return nil, false, fmt.Errorf("%w: unknown matching kind %s", ErrInvalidInput, kind)
	}
}

func fuzzyMatcher(opts Options) match.FuzzyMatcher {
	return match.FuzzyMatcher{MinScore: opts.FuzzyMinScore, FirstCharFilter: opts.FuzzyFirstCharFilter}
}

// currentIndex returns the published index if it was built for store with
// opts.
func (e *Engine) currentIndex(store *vocab.Store, opts symdel.Options) *symdel.Index {
	if idx := e.index.Load(); idx != nil && idx.Store() == store && idx.MaxDistance() == opts.MaxDistance {
		return idx
	}
	return nil
}

// correctionIndex returns the index for store, building it on first use.
// In background mode it returns nil while the build runs.
func (e *Engine) correctionIndex(ctx context.Context, store *vocab.Store, opts Options) (*symdel.Index, error) {
	iopts := opts.indexOptions()
	if idx := e.currentIndex(store, iopts); idx != nil {
		return idx, nil
	}

	e.mu.Lock()
	if e.failed == store {
		err := e.failedErr
		e.mu.Unlock()
		return nil, err
	}
	if opts.BackgroundIndex {
		e.startBuildLocked(store, opts)
		e.mu.Unlock()
		return nil, nil
	}
	e.mu.Unlock()

	v, err, _ := e.flight.Do(fmt.Sprintf("%p/%d/%d", store, iopts.MaxDistance, iopts.MaxKeys), func() (any, error) {
		if idx := e.currentIndex(store, iopts); idx != nil {
			return idx, nil
		}
		idx, err := e.buildIndex(ctx, store, iopts)
		e.finishBuild(store, iopts, idx, err)
		return idx, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*symdel.Index), nil
}

// finishBuild publishes idx if store and the index options are still
// current, or records a build failure that was not caused by cancellation.
func (e *Engine) finishBuild(store *vocab.Store, opts symdel.Options, idx *symdel.Index, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store.Load() != store || e.opts.indexOptions() != opts {
		return
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			log.Errorf("Deletion index build failed: %v", err)
			e.failed, e.failedErr = store, err
		}
		return
	}
	e.index.Store(idx)
}

func (e *Engine) startBuildLocked(store *vocab.Store, opts Options) {
	iopts := opts.indexOptions()
	if e.store.Load() != store {
		return
	}
	if b := e.build; b != nil && b.store == store && b.opts == iopts {
		return
	}
	e.cancelBuildLocked()

	ctx, cancel := context.WithCancel(context.Background())
	b := &indexBuild{store: store, opts: iopts, cancel: cancel, done: make(chan struct{})}
	e.build = b
	build := e.buildIndex
	log.Debugf("Building deletion index in background for %d words", store.Len())

	go func() {
		defer close(b.done)
		defer cancel()
		idx, err := build(ctx, store, iopts)
		e.finishBuild(store, iopts, idx, err)

		e.mu.Lock()
		if e.build == b {
			e.build = nil
		}
		e.mu.Unlock()
	}()
}

func (e *Engine) cancelBuildLocked() {
	if e.build != nil {
		e.build.cancel()
	}
	e.build = nil
}

// WaitIndex blocks until a running background build finishes or ctx ends.
func (e *Engine) WaitIndex(ctx context.Context) error {
	e.mu.Lock()
	b := e.build
	e.mu.Unlock()
	if b == nil {
		return nil
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BuildIndex builds the deletion index for the current store now, instead
// of on the first correction query.
func (e *Engine) BuildIndex(ctx context.Context) error {
	store := e.store.Load()
	if store == nil {
		return ErrNoVocabulary
	}
	opts := e.Options()
	opts.BackgroundIndex = false
	_, err := e.correctionIndex(ctx, store, opts)
	return err
}

// Stats returns a snapshot of the engine state.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	opts := e.opts
	building := e.build != nil
	e.mu.Unlock()

	s := Stats{
		Matching:      opts.Matching,
		Limit:         opts.Limit,
		IndexBuilding: building,
		Cache:         e.cache.Stats(),
		MatcherRuns:   e.runs.Load(),
	}
	if store := e.store.Load(); store != nil {
		s.Vocabulary = store.Set()
		s.Loaded = store.Loaded()
		s.Words = store.Len()
		if idx := e.currentIndex(store, opts.indexOptions()); idx != nil {
			st := idx.Stats()
			s.Index = &st
		}
	}
	return s
}

// Close cancels a running background build and waits for it.
func (e *Engine) Close() error {
	e.mu.Lock()
	b := e.build
	e.cancelBuildLocked()
	e.mu.Unlock()
	if b != nil {
		<-b.done
	}
	return nil
}

// Normalize trims surrounding whitespace and lowercases the query. All
// matchers compare case-insensitively.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
