package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/bastiangx/wordspell/pkg/cache"
	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/bastiangx/wordspell/pkg/match"
	"github.com/bastiangx/wordspell/pkg/symdel"
	"github.com/bastiangx/wordspell/pkg/vocab"
)

// DefaultLimit is how many words a host displays.
const DefaultLimit = 9

// Options tune matching. They are read-only for the engine; Reconfigure
// replaces them wholesale.
type Options struct {
	Matching             match.Kind
	Limit                int
	FuzzyMinScore        int
	FuzzyFirstCharFilter bool
	MaxDistance          int
	MaxIndexKeys         int
	CacheCapacity        int
	PrefixTrie           bool
	// BackgroundIndex builds the deletion index off the query path and
	// serves fuzzy results until it is ready.
	BackgroundIndex bool
}

// DefaultOptions mirrors the default configuration.
func DefaultOptions() Options {
	return Options{
		Matching:      match.Correction,
		Limit:         DefaultLimit,
		FuzzyMinScore: match.DefaultMinScore,
		MaxDistance:   symdel.DefaultMaxDistance,
		CacheCapacity: cache.DefaultCapacity,
		PrefixTrie:    true,
	}
}

// Validate rejects options no query could run with.
func (o Options) Validate() error {
	switch {
	case !o.Matching.Valid():
		return fmt.Errorf("%w: unknown matching kind %s", vocab.ErrInvalidInput, o.Matching)
	case o.Limit <= 0:
		return fmt.Errorf("%w: result limit must be positive, got %d", vocab.ErrInvalidInput, o.Limit)
	case o.FuzzyMinScore < 0 || o.FuzzyMinScore > 100:
		return fmt.Errorf("%w: fuzzy min score must be within 0-100, got %d", vocab.ErrInvalidInput, o.FuzzyMinScore)
	case o.MaxDistance < 0:
		return fmt.Errorf("%w: correction max distance must not be negative, got %d", vocab.ErrInvalidInput, o.MaxDistance)
	case o.MaxIndexKeys < 0:
		return fmt.Errorf("%w: index key budget must not be negative, got %d", vocab.ErrInvalidInput, o.MaxIndexKeys)
	case o.CacheCapacity <= 0:
		return fmt.Errorf("%w: cache capacity must be positive, got %d", vocab.ErrInvalidInput, o.CacheCapacity)
	}
	return nil
}

// OptionsFromConfig maps the configuration file onto engine options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	kind, err := match.ParseKind(cfg.Matching.Kind)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Matching:             kind,
		Limit:                cfg.Matching.ResultLimit,
		FuzzyMinScore:        cfg.Matching.FuzzyMinScore,
		FuzzyFirstCharFilter: cfg.Matching.FuzzyFirstCharFilter,
		MaxDistance:          cfg.Matching.CorrectionMaxDistance,
		MaxIndexKeys:         cfg.Matching.CorrectionMaxIndexKeys,
		CacheCapacity:        cfg.Cache.Capacity,
		PrefixTrie:           cfg.Matching.PrefixTrie,
		BackgroundIndex:      cfg.Matching.BackgroundIndex,
	}
	return opts, opts.Validate()
}

// ApplyConfig reconfigures e from a reloaded config and switches vocabulary
// when the configured set differs from the current one, order included.
func (e *Engine) ApplyConfig(ctx context.Context, cfg *config.Config) error {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	set, err := cfg.VocabularySet()
	if err != nil {
		return err
	}
	if err := e.Reconfigure(opts); err != nil {
		return err
	}
	if store := e.Store(); store != nil && slices.Equal(store.Set(), set) {
		return nil
	}
	return e.SetVocabulary(ctx, set)
}

func (o Options) indexOptions() symdel.Options {
	return symdel.Options{MaxDistance: o.MaxDistance, MaxKeys: o.MaxIndexKeys}
}
