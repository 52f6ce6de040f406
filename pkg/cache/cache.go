// Package cache keeps recent query results so repeated keystrokes skip the matchers.
package cache

import (
	"sync/atomic"

	"github.com/bastiangx/wordspell/pkg/match"
	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the number of distinct queries kept.
const DefaultCapacity = 200

// Key identifies one result list. Matcher kind and vocabulary signature are
// part of it so switching either never serves results of the other. Limit
// is the length the list was trimmed to.
type Key struct {
	Kind      match.Kind
	Signature string
	Query     string
	Limit     int
}

// Stats counts cache traffic since creation.
type Stats struct {
	Entries   int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// ResultCache is a bounded LRU of candidate lists. Entries are copied in and
// out, so callers can't alter what is stored.
type ResultCache struct {
	lru       *lru.Cache[Key, []match.Candidate]
	capacity  int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding up to capacity entries. Non-positive values
// fall back to DefaultCapacity.
func New(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l, _ := lru.New[Key, []match.Candidate](capacity)
	return &ResultCache{lru: l, capacity: capacity}
}

// Get returns the cached list for k and marks it recently used.
func (c *ResultCache) Get(k Key) ([]match.Candidate, bool) {
	v, ok := c.lru.Get(k)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return clone(v), true
}

// Put stores v under k, evicting the least recently used entry when full.
func (c *ResultCache) Put(k Key, v []match.Candidate) {
	if c.lru.Add(k, clone(v)) {
		c.evictions.Add(1)
		log.Debugf("Cache full, evicted least recently used entry to add %s/%q", k.Kind, k.Query)
	}
}

// Contains reports whether k is cached without touching its recency.
func (c *ResultCache) Contains(k Key) bool {
	return c.lru.Contains(k)
}

// Purge drops every entry. Purged entries do not count as evictions.
func (c *ResultCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of entries.
func (c *ResultCache) Len() int {
	return c.lru.Len()
}

// Stats returns current counters.
func (c *ResultCache) Stats() Stats {
	return Stats{
		Entries:   c.lru.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func clone(v []match.Candidate) []match.Candidate {
	out := make([]match.Candidate, len(v))
	copy(out, v)
	return out
}
