// Package normalize holds the pure helpers that turn upstream catalog
// fields into local column values
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// NoDescription replaces an empty description
	NoDescription = "No description available"

	// UntitledSlug is the slug of a record without a title
	UntitledSlug = "untitled"

	onSaleType    = "onsaleDate"
	notAvailable  = "image_not_available"
	minOnSaleYear = 1900
)

var trailingID = regexp.MustCompile(`/(\d+)$`)

// CatchID extracts the numeric id ending a resource URI such as
// http://gateway.marvel.com/v1/public/series/1945
func CatchID(uri string) (int64, bool) {
	m := trailingID.FindStringSubmatch(strings.TrimSpace(uri))
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// TypedDate is one entry of an upstream dates list
type TypedDate struct {
	Type string `json:"type"`
	Date string `json:"date"`
}

// dateLayouts are tried in order; the first is what the upstream emits
var dateLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	"2006-01-02",
}

// OnSaleDate returns the first onsaleDate entry when it parses and falls
// after 1900. Placeholder dates like -0001-11-30 are absent
func OnSaleDate(dates []TypedDate) *time.Time {
	for _, d := range dates {
		if d.Type != onSaleType {
			continue
		}
		t, ok := parseDate(d.Date)
		if !ok || t.Year() <= minOnSaleYear {
			return nil
		}
		return &t
	}
	return nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			// keep the publisher's calendar day
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Thumbnail joins path and extension. The upstream "image not available"
// placeholder and an empty path both yield ""
func Thumbnail(path, ext string) string {
	path, ext = strings.TrimSpace(path), strings.TrimSpace(ext)
	if path == "" || strings.Contains(path, notAvailable) {
		return ""
	}
	if ext == "" {
		return path
	}
	return path + "." + ext
}

// Description returns s or NoDescription when s is blank
func Description(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoDescription
	}
	return strings.TrimSpace(s)
}

var slugChain = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// Slug transliterates title to ASCII, lowercases it and joins alphanumeric
// runs with single hyphens: "Spider-Man (2022) #1" -> "spider-man-2022-1"
func Slug(title string) string {
	tr := slugChain.Get().(transform.Transformer)
	folded, _, err := transform.String(tr, title)
	tr.Reset()
	slugChain.Put(tr)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return UntitledSlug
	}
	return b.String()
}
