// Package domain holds the search projection: index mappings, document
// shape, ports and the sync report
package domain

import (
	"context"
	"strconv"
	"time"

	catdom "comicvault/internal/services/catalog/domain"
)

// Row is one projection row read from postgres
type Row struct {
	ID         int64
	ExternalID int64
	Label      string
	Thumbnail  string
	Date       *time.Time
}

// Doc is the indexed document. Characters carry Name, comics and series carry Title
type Doc struct {
	MarvelID  int64  `json:"marvelId"`
	Name      string `json:"name,omitempty"`
	Title     string `json:"title,omitempty"`
	Date      string `json:"date,omitempty"`
	Thumbnail string `json:"thumbnail"`
}

// Label returns whichever of Name or Title is set
func (d Doc) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Title
}

// DateLayout is how release dates are stored in the index
const DateLayout = "2006-01-02"

// Index names the index for t
func Index(t catdom.EntityType) string { return t.String() }

// Field is the text field queries match against
func Field(t catdom.EntityType) string {
	if t == catdom.Characters {
		return "name"
	}
	return "title"
}

// Document builds the id and source for row
func Document(t catdom.EntityType, r Row) (string, Doc) {
	d := Doc{MarvelID: r.ExternalID, Thumbnail: r.Thumbnail}
	if t == catdom.Characters {
		d.Name = r.Label
	} else {
		d.Title = r.Label
	}
	if t == catdom.Comics && r.Date != nil {
		d.Date = r.Date.UTC().Format(DateLayout)
	}
	return strconv.FormatInt(r.ExternalID, 10), d
}

func textKeyword() map[string]any {
	return map[string]any{
		"type":   "text",
		"fields": map[string]any{"keyword": map[string]any{"type": "keyword", "ignore_above": 256}},
	}
}

// Mapping returns the create-index body for t
func Mapping(t catdom.EntityType) map[string]any {
	props := map[string]any{
		"marvelId":  map[string]any{"type": "integer"},
		"thumbnail": map[string]any{"type": "keyword"},
		Field(t):    textKeyword(),
	}
	if t == catdom.Comics {
		props["date"] = map[string]any{"type": "date"}
	}
	return map[string]any{"mappings": map[string]any{"properties": props}}
}

// Report summarizes one sync
type Report struct {
	Entity   catdom.EntityType
	Duration time.Duration
	Created  bool // the index did not exist and was created
	Docs     int
	Indexed  int
	Failed   int
	Locked   bool
	Err      error
}

// SyncPort is the public port other modules call
type SyncPort interface {
	EnsureIndex(ctx context.Context, t catdom.EntityType) (created bool, err error)
	Sync(ctx context.Context, t catdom.EntityType) (Report, error)
	SyncAll(ctx context.Context, types []catdom.EntityType) ([]Report, error)
}

// StorageRepo reads the projection in id order
type StorageRepo interface {
	Projection(ctx context.Context, t catdom.EntityType, afterID int64, limit int) ([]Row, error)
}
