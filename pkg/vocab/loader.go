package vocab

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoData marks a vocabulary that exists in the set but has no words behind it.
var ErrNoData = errors.New("no word list")

// VocabularyLoadError reports a vocabulary that could not be loaded.
// It is recoverable: the remaining vocabularies still make up the store.
type VocabularyLoadError struct {
	Tag Tag
	Err error
}

func (e *VocabularyLoadError) Error() string {
	return fmt.Sprintf("vocabulary %s: %v", e.Tag, e.Err)
}

func (e *VocabularyLoadError) Unwrap() error {
	return e.Err
}

// Loader provides the raw word list of one vocabulary, in file order.
type Loader interface {
	Load(ctx context.Context, tag Tag) ([]string, error)
}

// DirLoader reads <Dir>/<tag>.txt files. Files are ISO-8859-1 encoded, one
// word per line, and are decoded to UTF-8 before they reach the store.
type DirLoader struct {
	Dir string
}

// NewDirLoader creates a loader for the vocabularies in dir.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{Dir: dir}
}

// Path returns the file backing tag.
func (l *DirLoader) Path(tag Tag) string {
	return filepath.Join(l.Dir, string(tag)+".txt")
}

// Load reads and decodes the word list for tag.
func (l *DirLoader) Load(ctx context.Context, tag Tag) ([]string, error) {
	filename := l.Path(tag)
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, filename)
		}
		return nil, fmt.Errorf("failed to open vocabulary file %s: %w", filename, err)
	}
	defer file.Close()

	words, err := ReadWords(ctx, charmap.ISO8859_1.NewDecoder().Reader(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", filename, err)
	}
	log.Debugf("Read %d words from %s", len(words), filename)
	return words, nil
}

// ReadWords splits r into trimmed, non-empty lines.
func ReadWords(ctx context.Context, r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for n := 0; scanner.Scan(); n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// MapLoader serves word lists kept in memory. Lists are used as given.
type MapLoader map[Tag][]string

// Load returns the list registered for tag.
func (m MapLoader) Load(_ context.Context, tag Tag) ([]string, error) {
	words, ok := m[tag]
	if !ok {
		return nil, ErrNoData
	}
	return words, nil
}
