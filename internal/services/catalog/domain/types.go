// Package domain holds the catalog entities shared by the importer, linker,
// search sync and query API
package domain

import (
	"strconv"
	"strings"
	"time"

	perr "comicvault/internal/platform/errors"
)

// EntityType names one upstream resource and its local table
type EntityType string

const (
	Characters EntityType = "characters"
	Comics     EntityType = "comics"
	Creators   EntityType = "creators"
	Series     EntityType = "series"
)

// AllTypes lists every entity type in import order
var AllTypes = []EntityType{Characters, Series, Creators, Comics}

// Searchable lists the types that have a search index
var Searchable = []EntityType{Characters, Comics, Series}

func (t EntityType) String() string { return string(t) }

// Valid reports whether t is a known type
func (t EntityType) Valid() bool {
	switch t {
	case Characters, Comics, Creators, Series:
		return true
	}
	return false
}

// IsSearchable reports whether t has a search index
func (t EntityType) IsSearchable() bool { return t == Characters || t == Comics || t == Series }

// ParseType accepts a type name in any case
func ParseType(s string) (EntityType, error) {
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", perr.InvalidArgf("unknown entity type %q", s)
	}
	return t, nil
}

// ParseTypes parses a list, dropping duplicates; empty input means AllTypes
func ParseTypes(in []string) ([]EntityType, error) {
	if len(in) == 0 {
		return AllTypes, nil
	}
	seen := map[EntityType]bool{}
	var out []EntityType
	for _, s := range in {
		t, err := ParseType(s)
		if err != nil {
			return nil, err
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

// CreatorRef is a creator credited on a comic or serie
type CreatorRef struct {
	CreatorExternalID int64  `json:"creatorExternalId"`
	Role              string `json:"role"`
}

// Character is a catalog character
type Character struct {
	ID          int64
	ExternalID  int64
	Name        string
	Description string
	Thumbnail   string
	Modified    *time.Time
	Placeholder bool
}

// Comic is a catalog issue
type Comic struct {
	ID              int64
	ExternalID      int64
	Title           string
	Description     string
	PageCount       int
	Thumbnail       string
	ReleaseDate     *time.Time
	Slug            string
	VariantIDs      []int64
	Creators        []CreatorRef
	SerieExternalID int64
	CharacterIDs    []int64
	SerieID         *int64
}

// Creator is a writer, artist or other credited person
type Creator struct {
	ID         int64
	ExternalID int64
	FirstName  string
	LastName   string
	FullName   string
	Thumbnail  string
}

// Serie is a run of comics
type Serie struct {
	ID           int64
	ExternalID   int64
	Title        string
	Description  string
	StartYear    int
	EndYear      int
	Thumbnail    string
	Creators     []CreatorRef
	CharacterIDs []int64
}

// PlaceholderName is the name given to characters created only because a
// comic or serie referenced them
func PlaceholderName(externalID int64) string {
	return "Unknown " + strconv.FormatInt(externalID, 10)
}
