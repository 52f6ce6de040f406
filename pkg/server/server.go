package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordspell/internal/logger"
	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/bastiangx/wordspell/pkg/engine"
	"github.com/bastiangx/wordspell/pkg/match"
	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for spelling suggestions
type Server struct {
	engine         *engine.Engine
	dec            *msgpack.Decoder
	enc            *msgpack.Encoder
	logger         *log.Logger
	maxQueryLength atomic.Int64
}

// NewServer creates a server reading requests from r and writing responses
// to w, usually stdin and stdout.
func NewServer(eng *engine.Engine, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	s := &Server{
		engine: eng,
		dec:    msgpack.NewDecoder(r),
		enc:    msgpack.NewEncoder(w),
		logger: logger.New("server"),
	}
	s.UpdateConfig(cfg)
	return s
}

// UpdateConfig applies the server section of a reloaded config.
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.maxQueryLength.Store(int64(cfg.Server.MaxQueryLength))
}

// Start signals readiness and serves requests until the input ends, ctx is
// cancelled or a response can't be written.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting server")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Errorf("Unmarshaling request: %v", err)
			if err := s.send(ErrorResponse{Error: "invalid msgpack request", Code: 400}); err != nil {
				return err
			}
			continue
		}
		if err := s.handleRequest(ctx, req); err != nil {
			return err
		}
	}
}

// handleRequest dispatches on the action. Only write failures are returned.
func (s *Server) handleRequest(ctx context.Context, req Request) error {
	switch req.Action {
	case "", ActionQuery:
		return s.handleQuery(ctx, req)
	case ActionVocabulary:
		return s.handleVocabulary(ctx, req)
	case ActionMatching:
		return s.handleMatching(req)
	case ActionStats:
		return s.send(s.stats(req.ID))
	case ActionHealth:
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		return s.sendError(req.ID, fmt.Errorf("%w: unknown action %q", engine.ErrInvalidInput, req.Action))
	}
}

func (s *Server) handleQuery(ctx context.Context, req Request) error {
	if n := utf8.RuneCountInString(req.Query); int64(n) > s.maxQueryLength.Load() {
		return s.sendError(req.ID, fmt.Errorf("%w: query exceeds maximum length of %d characters",
			engine.ErrInvalidInput, s.maxQueryLength.Load()))
	}

	opts := s.engine.Options()
	kind, limit := opts.Matching, opts.Limit
	if req.Matching != "" {
		k, err := match.ParseKind(req.Matching)
		if err != nil {
			return s.sendError(req.ID, err)
		}
		kind = k
	}
	if req.Limit != 0 {
		limit = req.Limit
	}

	start := time.Now()
	results, err := s.engine.QueryWith(ctx, req.Query, kind, limit)
	if err != nil {
		return s.sendError(req.ID, err)
	}
	elapsed := time.Since(start)

	suggestions := make([]Suggestion, len(results))
	for i, c := range results {
		suggestions[i] = Suggestion{
			Word:       c.Word.Text,
			Vocabulary: string(c.Word.Vocabulary),
			Rank:       uint16(i + 1),
		}
	}
	s.logger.Debugf("Took [ %v ] for %s query '%s'", elapsed, kind, req.Query)
	return s.send(QueryResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleVocabulary(ctx context.Context, req Request) error {
	set, err := vocab.NewSet(req.Vocabulary)
	if err != nil {
		return s.sendError(req.ID, err)
	}
	resp := StatusResponse{ID: req.ID, Status: "ok", Vocabulary: set.Strings()}
	if err := s.engine.SetVocabulary(ctx, set); err != nil {
		var loadErr *vocab.VocabularyLoadError
		if !errors.As(err, &loadErr) {
			return s.sendError(req.ID, err)
		}
		resp.Warning = err.Error()
	}
	return s.send(resp)
}

func (s *Server) handleMatching(req Request) error {
	kind, err := match.ParseKind(req.Matching)
	if err != nil {
		return s.sendError(req.ID, err)
	}
	if err := s.engine.SetMatching(kind); err != nil {
		return s.sendError(req.ID, err)
	}
	return s.send(StatusResponse{ID: req.ID, Status: "ok", Matching: kind.String()})
}

func (s *Server) stats(id string) StatsResponse {
	st := s.engine.Stats()
	resp := StatsResponse{
		ID:             id,
		Vocabulary:     st.Vocabulary.Strings(),
		Loaded:         st.Loaded.Strings(),
		Words:          st.Words,
		Matching:       st.Matching.String(),
		Limit:          st.Limit,
		IndexReady:     st.Index != nil,
		IndexBuilding:  st.IndexBuilding,
		CacheEntries:   st.Cache.Entries,
		CacheHits:      st.Cache.Hits,
		CacheMisses:    st.Cache.Misses,
		CacheEvictions: st.Cache.Evictions,
		MatcherRuns:    st.MatcherRuns,
	}
	if st.Index != nil {
		resp.IndexKeys = st.Index.Keys
	}
	return resp
}

// send encodes one response. The encoder writes straight through, so each
// response is complete on the wire when send returns.
func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		s.logger.Errorf("Writing response: %v", err)
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

// sendError reports err to the client with a status code derived from it.
func (s *Server) sendError(id string, err error) error {
	code := errorCode(err)
	if code >= 500 {
		s.logger.Errorf("Request %s failed: %v", id, err)
	} else {
		s.logger.Debugf("Rejected request %s: %v", id, err)
	}
	return s.send(ErrorResponse{ID: id, Error: err.Error(), Code: code})
}

// errorCode is 400 for requests the client can fix and 500 otherwise,
// including a deletion index that could not be built.
func errorCode(err error) int {
	if errors.Is(err, engine.ErrInvalidInput) || errors.Is(err, engine.ErrNoVocabulary) {
		return 400
	}
	return 500
}
