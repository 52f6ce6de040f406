/*
Package main implements the WordSpell suggestion server and CLI.

WordSpell suggests words for a partially typed or misspelled query using one
of three strategies: prefix completion, fuzzy similarity, or edit-distance
correction backed by a symmetric-delete index. Words come from plain text
vocabularies, one word per line, named after their vocabulary:

	vocabularies/english.txt
	vocabularies/english_uk.txt
	vocabularies/deutsch.txt

# Usage

Start the msgpack IPC server on stdin/stdout:

	wordspell serve

Try the matchers interactively, or run a single query:

	wordspell repl --matching fuzzy
	wordspell query speling --vocabulary english_uk,english --limit 5

# Configuration

Settings are read from a TOML file, created with defaults on first run:

	[matching]
	kind = "correction"
	result_limit = 9
	fuzzy_min_score = 65
	correction_max_distance = 2

	[vocabulary]
	active = ["english_uk", "english"]
	dir = "vocabularies"

	[cache]
	capacity = 200

The server reloads the file when it changes on disk. Command line flags
override the file for the run they are given to.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "wordspell"
	gh      = "https://github.com/bastiangx/wordspell"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}
