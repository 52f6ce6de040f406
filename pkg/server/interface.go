/*
Package server implements msgpack IPC for spelling suggestions.

The server reads a stream of msgpack requests from stdin and writes one
msgpack response per request to stdout. Requests are handled one at a time,
in arrival order, with timing info included in query responses.

# IPC

Every message carries an ID that is echoed back. The action field selects
the operation; a missing action is a query:

	{"id": "req_001", "q": "speling", "l": 9}

The server responds with ranked words and the vocabulary each came from:

	{"id": "req_001", "s": [{"w": "spelling", "v": "english", "r": 1}], "c": 1, "t": 145}

A query may override the configured matcher for itself only:

	{"id": "req_002", "q": "spel", "m": "prefix"}

Other actions change or inspect engine state:

	{"id": "v1", "action": "vocabulary", "v": ["deutsch", "english"]}
	{"id": "m1", "action": "matching", "m": "fuzzy"}
	{"id": "s1", "action": "stats"}
	{"id": "h1", "action": "health"}

Failed requests get an error response with code 400 for invalid input and
500 for internal failures such as a deletion index that could not be built:

	{"id": "req_003", "e": "invalid input: unknown matching kind \"phonetic\"", "c": 400}
*/
package server

// Actions understood by the server.
const (
	ActionQuery      = "query"
	ActionVocabulary = "vocabulary"
	ActionMatching   = "matching"
	ActionStats      = "stats"
	ActionHealth     = "health"
)

// Request is the single inbound message shape. Fields not used by an action
// are ignored.
type Request struct {
	ID         string   `msgpack:"id"`
	Action     string   `msgpack:"action,omitempty"`
	Query      string   `msgpack:"q"`
	Limit      int      `msgpack:"l,omitempty"`
	Matching   string   `msgpack:"m,omitempty"`
	Vocabulary []string `msgpack:"v,omitempty"`
}

// Suggestion - one ranked word
type Suggestion struct {
	Word       string `msgpack:"w"`
	Vocabulary string `msgpack:"v"`
	Rank       uint16 `msgpack:"r"`
}

// QueryResponse - query response, TimeTaken in microseconds
type QueryResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// StatusResponse answers state changing actions and health checks.
// Warning lists vocabularies that were requested but had no data.
type StatusResponse struct {
	ID         string   `msgpack:"id"`
	Status     string   `msgpack:"status"`
	Matching   string   `msgpack:"matching,omitempty"`
	Vocabulary []string `msgpack:"vocabulary,omitempty"`
	Warning    string   `msgpack:"warning,omitempty"`
}

// StatsResponse - engine state snapshot
type StatsResponse struct {
	ID             string   `msgpack:"id"`
	Vocabulary     []string `msgpack:"vocabulary"`
	Loaded         []string `msgpack:"loaded"`
	Words          int      `msgpack:"words"`
	Matching       string   `msgpack:"matching"`
	Limit          int      `msgpack:"limit"`
	IndexReady     bool     `msgpack:"index_ready"`
	IndexBuilding  bool     `msgpack:"index_building"`
	IndexKeys      int      `msgpack:"index_keys,omitempty"`
	CacheEntries   int      `msgpack:"cache_entries"`
	CacheHits      uint64   `msgpack:"cache_hits"`
	CacheMisses    uint64   `msgpack:"cache_misses"`
	CacheEvictions uint64   `msgpack:"cache_evictions"`
	MatcherRuns    uint64   `msgpack:"matcher_runs"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
