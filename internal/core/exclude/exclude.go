// Package exclude holds the per-type title vocabulary that keeps reprints and
// merchandise out of listings and search results
package exclude

import (
	"strconv"
	"strings"
)

var (
	comics = []string{"variant", "paperback", "hardcover", "mini-poster"}
	series = []string{"variant", "paperback", "hardcover", "omnibus", "mini-poster"}
	recent = []string{"variant", "paperback", "hardcover"}
)

// For returns the excluded words for an entity type name; unknown and
// unfiltered types get nil
func For(entity string) []string {
	switch entity {
	case "comics":
		return comics
	case "series":
		return series
	}
	return nil
}

// Recent is the narrower vocabulary for the newest-comics shelf
func Recent() []string { return recent }

// Matches reports whether title contains any word, case-insensitively
func Matches(title string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	t := strings.ToLower(title)
	for _, w := range words {
		if strings.Contains(t, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// Filter drops the items whose key matches words, keeping order
func Filter[T any](items []T, words []string, key func(T) string) []T {
	if len(words) == 0 {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		if !Matches(key(it), words) {
			out = append(out, it)
		}
	}
	return out
}

// SQL builds an AND-joined "col not ilike $n" clause for words, numbering
// placeholders from next. It returns the clause, its args, and the next free
// placeholder. No words yields "true"
func SQL(column string, words []string, next int) (string, []any, int) {
	if len(words) == 0 {
		return "true", nil, next
	}
	parts := make([]string, 0, len(words))
	args := make([]any, 0, len(words))
	for _, w := range words {
		parts = append(parts, column+" not ilike $"+strconv.Itoa(next))
		args = append(args, "%"+escapeLike(w)+"%")
		next++
	}
	return strings.Join(parts, " and "), args, next
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
