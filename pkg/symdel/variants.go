package symdel

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Variants returns word and every string obtained from it by deleting up to
// maxDistance characters. Deletions work on runes, so multi-byte letters are
// removed whole.
func Variants(word string, maxDistance int) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet(word)
	addDeletes([]rune(word), maxDistance, set)
	return set
}

// addDeletes recurses only into newly seen strings. A string of a given length
// is always reached at the same depth, so skipping repeats loses nothing.
func addDeletes(runes []rune, remaining int, set mapset.Set[string]) {
	if remaining == 0 || len(runes) == 0 {
		return
	}
	buf := make([]rune, 0, len(runes)-1)
	for i := range runes {
		buf = append(buf[:0], runes[:i]...)
		buf = append(buf, runes[i+1:]...)
		del := string(buf)
		if set.Add(del) {
			addDeletes([]rune(del), remaining-1, set)
		}
	}
}
