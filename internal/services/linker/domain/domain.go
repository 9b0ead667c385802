// Package domain holds the linker's ports and report types
package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Pass names one linker pass
type Pass string

const (
	PassComicSeries     Pass = "comic_series"
	PassComicCharacters Pass = "comic_characters"
	PassSerieCharacters Pass = "serie_characters"
	PassSlugs           Pass = "slugs"
)

// Root is a comic or serie row with the character references it recorded
type Root struct {
	ID   int64
	Refs []json.RawMessage
}

// SlugRow is a comic missing its slug
type SlugRow struct {
	ID    int64
	Title string
}

// Report summarizes one pass
type Report struct {
	Pass         Pass
	Duration     time.Duration
	Roots        int
	Linked       int
	Placeholders int
	Skipped      int
	Unresolved   int
	Locked       bool // another process held the lock; nothing ran
	Err          error
}

// LinkerPort is the public port other modules call
type LinkerPort interface {
	LinkComicSeries(ctx context.Context) (Report, error)
	LinkComicCharacters(ctx context.Context) (Report, error)
	LinkSerieCharacters(ctx context.Context) (Report, error)
	BackfillSlugs(ctx context.Context) (Report, error)
	Run(ctx context.Context) ([]Report, error)
}

// RootKind selects the comic or serie side of a character join
type RootKind string

const (
	RootComics RootKind = "comics"
	RootSeries RootKind = "series"
)

// StorageRepo is the linker's storage surface
type StorageRepo interface {
	// LinkSeries sets comics.serie_id from serie_external_id; returns updated and still-unresolved counts
	LinkSeries(ctx context.Context) (linked, unresolved int, err error)

	// Roots returns up to limit rows of kind with id > afterID that recorded character ids
	Roots(ctx context.Context, kind RootKind, afterID int64, limit int) ([]Root, error)

	// EnsureCharacter returns the local id of externalID, creating a placeholder when absent
	EnsureCharacter(ctx context.Context, externalID int64) (id int64, created bool, err error)

	// LinkCharacter writes one join row; false when it already existed
	LinkCharacter(ctx context.Context, kind RootKind, rootID, characterID int64) (bool, error)

	// MissingSlugs returns up to limit comics with an empty slug and id > afterID
	MissingSlugs(ctx context.Context, afterID int64, limit int) ([]SlugRow, error)

	// SetSlug stores a computed slug
	SetSlug(ctx context.Context, id int64, slug string) error
}
