package server

import (
	"bytes"
	"context"
	"testing"

	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/bastiangx/wordspell/pkg/engine"
	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

var testLoader = vocab.MapLoader{
	vocab.English: {"spell", "spell-check", "spelling"},
	vocab.Deutsch: {"spiel", "spielen"},
}

// session runs the server over the encoded requests and returns a decoder
// positioned after the ready message.
func session(t *testing.T, eng *engine.Engine, requests ...any) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		require.NoError(t, enc.Encode(req))
	}

	srv := NewServer(eng, config.DefaultConfig(), &in, &out)
	require.NoError(t, srv.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(testLoader, engine.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	require.NoError(t, eng.SetVocabulary(context.Background(), vocab.Set{vocab.English}))
	return eng
}

func TestQuery(t *testing.T) {
	dec := session(t, newEngine(t),
		Request{ID: "q1", Query: "spel"},
		Request{ID: "q2", Action: ActionQuery, Query: "spel", Matching: "prefix", Limit: 2},
	)

	var resp QueryResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "q1", resp.ID)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []Suggestion{{Word: "spell", Vocabulary: "english", Rank: 1}}, resp.Suggestions)
	assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))

	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "q2", resp.ID)
	assert.Equal(t, []Suggestion{
		{Word: "spell", Vocabulary: "english", Rank: 1},
		{Word: "spelling", Vocabulary: "english", Rank: 2},
	}, resp.Suggestions)
}

func TestEmptyQueryReturnsDefaults(t *testing.T) {
	dec := session(t, newEngine(t), Request{ID: "e1", Query: "", Limit: 1})

	var resp QueryResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "spell", resp.Suggestions[0].Word)
}

func TestInvalidRequests(t *testing.T) {
	long := string(bytes.Repeat([]byte("a"), 61))
	dec := session(t, newEngine(t),
		Request{ID: "bad1", Query: "spel", Matching: "phonetic"},
		Request{ID: "bad2", Query: "spel", Limit: -1},
		Request{ID: "bad3", Query: long},
		Request{ID: "bad4", Action: "reboot"},
		Request{ID: "bad5", Action: ActionVocabulary, Vocabulary: []string{"klingon"}},
		map[string]any{"id": 42},
	)

	for _, id := range []string{"bad1", "bad2", "bad3", "bad4", "bad5", ""} {
		var resp ErrorResponse
		require.NoError(t, dec.Decode(&resp))
		assert.Equal(t, id, resp.ID)
		assert.Equal(t, 400, resp.Code)
		assert.NotEmpty(t, resp.Error)
	}
}

func TestVocabularyAndMatchingActions(t *testing.T) {
	eng := newEngine(t)
	dec := session(t, eng,
		Request{ID: "m1", Action: ActionMatching, Matching: "prefix"},
		Request{ID: "v1", Action: ActionVocabulary, Vocabulary: []string{"Deutsch", "norsk"}},
		Request{ID: "q1", Query: "spi"},
	)

	var status StatusResponse
	require.NoError(t, dec.Decode(&status))
	assert.Equal(t, StatusResponse{ID: "m1", Status: "ok", Matching: "prefix"}, status)

	status = StatusResponse{}
	require.NoError(t, dec.Decode(&status))
	assert.Equal(t, "v1", status.ID)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, []string{"deutsch", "norsk"}, status.Vocabulary)
	assert.Contains(t, status.Warning, "norsk")

	var resp QueryResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, []Suggestion{
		{Word: "spiel", Vocabulary: "deutsch", Rank: 1},
		{Word: "spielen", Vocabulary: "deutsch", Rank: 2},
	}, resp.Suggestions)
}

func TestStatsAndHealth(t *testing.T) {
	dec := session(t, newEngine(t),
		Request{ID: "q1", Query: "spel"},
		Request{ID: "q2", Query: "spel"},
		Request{ID: "s1", Action: ActionStats},
		Request{ID: "h1", Action: ActionHealth},
	)

	var resp QueryResponse
	require.NoError(t, dec.Decode(&resp))
	require.NoError(t, dec.Decode(&resp))

	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, "s1", stats.ID)
	assert.Equal(t, []string{"english"}, stats.Vocabulary)
	assert.Equal(t, 3, stats.Words)
	assert.Equal(t, "correction", stats.Matching)
	assert.True(t, stats.IndexReady)
	assert.Positive(t, stats.IndexKeys)
	assert.Equal(t, uint64(1), stats.CacheHits)
	assert.Equal(t, uint64(1), stats.MatcherRuns)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, StatusResponse{ID: "h1", Status: "ok"}, health)
}

func TestIndexBuildFailureIsServerError(t *testing.T) {
	opts := engine.DefaultOptions()
	opts.MaxIndexKeys = 3
	eng, err := engine.New(testLoader, opts)
	require.NoError(t, err)
	require.NoError(t, eng.SetVocabulary(context.Background(), vocab.Set{vocab.English}))

	dec := session(t, eng, Request{ID: "c1", Query: "spel"})
	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "c1", resp.ID)
	assert.Equal(t, 500, resp.Code)
}
