// Package cli handles cmd line input and suggestions for DBG and testing the matchers
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/wordspell/internal/utils"
	"github.com/bastiangx/wordspell/pkg/config"
	"github.com/bastiangx/wordspell/pkg/engine"
	"github.com/bastiangx/wordspell/pkg/match"
	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	wordStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	vocabStyle = lipgloss.NewStyle().Faint(true)
	keyStyle   = lipgloss.NewStyle().Bold(true)
)

// InputHandler reads queries line by line and prints the suggestions.
// Lines starting with ':' are commands:
//
//	:m <kind>    switch matcher (prefix, fuzzy, correction)
//	:v <tags>    switch vocabularies, comma separated
//	:s           show engine stats
//	:q           quit
type InputHandler struct {
	engine   *engine.Engine
	in       io.Reader
	out      *log.Logger
	maxQuery int
	// savePath is the config file :m and :v changes are written to, if set.
	savePath string
}

// NewInputHandler handles initialization of the InputHandler. Output goes to
// out without levels or timestamps.
func NewInputHandler(eng *engine.Engine, in io.Reader, out io.Writer, maxQuery int) *InputHandler {
	return &InputHandler{
		engine: eng,
		in:     in,
		out: log.NewWithOptions(out, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
		}),
		maxQuery: maxQuery,
	}
}

// SaveTo makes :m and :v write their changes to the config file at path.
func (h *InputHandler) SaveTo(path string) {
	h.savePath = path
}

// Start begins the interface loop. It ends on :q, end of input or when ctx
// is cancelled.
func (h *InputHandler) Start(ctx context.Context) error {
	h.out.Print("WordSpell CLI")
	h.out.Print("type a word and press Enter to see suggestions (:q to exit, :s for stats):")

	scanner := bufio.NewScanner(h.in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		h.out.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := h.handleCommand(ctx, line); quit {
				return nil
			}
			continue
		}
		h.handleInput(ctx, line)
	}
}

// handleCommand runs one ':' command and reports whether to quit.
func (h *InputHandler) handleCommand(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case ":q":
		return true
	case ":m":
		kind, err := match.ParseKind(arg)
		if err == nil {
			err = h.engine.SetMatching(kind)
		}
		if err != nil {
			h.out.Errorf("Cannot switch matcher: %v", err)
			return false
		}
		h.out.Printf("Matcher set to %s", keyStyle.Render(kind.String()))
		h.save(&kind, nil)
	case ":v":
		set, err := vocab.ParseSet(arg)
		if err != nil {
			h.out.Errorf("Cannot switch vocabulary: %v", err)
			return false
		}
		if err := h.engine.SetVocabulary(ctx, set); err != nil {
			var loadErr *vocab.VocabularyLoadError
			if !errors.As(err, &loadErr) {
				h.out.Errorf("Cannot switch vocabulary: %v", err)
				return false
			}
			h.out.Warnf("%v", err)
		}
		h.out.Printf("Vocabulary set to [%s], %d words", set, h.engine.Stats().Words)
		h.save(nil, set)
	case ":s":
		h.printStats()
	default:
		h.out.Errorf("Unknown command %s", cmd)
	}
	return false
}

// save re-reads the config file so flag overrides are not written back,
// then stores the changed matcher or vocabularies.
func (h *InputHandler) save(kind *match.Kind, set vocab.Set) {
	if h.savePath == "" {
		return
	}
	cfg := config.DefaultConfig()
	if utils.FileExists(h.savePath) {
		loaded, err := config.LoadConfig(h.savePath)
		if err != nil {
			h.out.Errorf("Not saved: %v", err)
			return
		}
		cfg = loaded
	}
	if err := cfg.Update(h.savePath, kind, set); err != nil {
		h.out.Errorf("Not saved: %v", err)
		return
	}
	log.Debugf("Saved to %s", h.savePath)
}

func (h *InputHandler) printStats() {
	st := h.engine.Stats()
	index := "not built"
	switch {
	case st.Index != nil:
		index = fmt.Sprintf("%d keys, %d postings, built in %v", st.Index.Keys, st.Index.Postings, st.Index.BuildTime)
	case st.IndexBuilding:
		index = "building"
	}
	h.out.Print("matcher", "kind", st.Matching.String(), "limit", st.Limit)
	h.out.Print("vocabulary", "set", st.Vocabulary.String(), "loaded", st.Loaded.String(), "words", st.Words)
	h.out.Print("index", "status", index)
	h.out.Print("cache", "entries", st.Cache.Entries, "hits", st.Cache.Hits,
		"misses", st.Cache.Misses, "evictions", st.Cache.Evictions, "runs", st.MatcherRuns)
}

// handleInput runs one query and prints the numbered results.
func (h *InputHandler) handleInput(ctx context.Context, query string) {
	if len([]rune(query)) > h.maxQuery {
		h.out.Errorf("Query too long: %s", query)
		return
	}

	start := time.Now()
	results, err := h.engine.Query(ctx, query)
	elapsed := time.Since(start)
	if err != nil {
		h.out.Errorf("Query failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for '%s'", elapsed, query)

	if len(results) == 0 {
		h.out.Warnf("No suggestions found for '%s'", query)
		return
	}

	h.out.Printf("Found %d suggestions for '%s':", len(results), query)
	for i, c := range results {
		h.out.Printf("%2d. %-40s %s", i+1, wordStyle.Render(c.Word.Text), vocabStyle.Render(string(c.Word.Vocabulary)))
	}
}
