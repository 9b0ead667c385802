// Package domain holds the importer's ports and report types
package domain

import (
	"time"

	catdom "comicvault/internal/services/catalog/domain"
)

// ImportOptions narrows one import run
type ImportOptions struct {
	// ModifiedSince asks the upstream for records changed after this instant only
	ModifiedSince *time.Time
}

// Report summarizes one per-type job. Committed pages stay committed when Err is set
type Report struct {
	Entity    catdom.EntityType
	StartedAt time.Time
	Duration  time.Duration
	Pages     int
	Fetched   int
	Inserted  int
	Skipped   int
	Dropped   int
	Err       error
}

// Batch is one normalized page, only the slice for its entity type is set
type Batch struct {
	Characters []catdom.Character
	Comics     []catdom.Comic
	Creators   []catdom.Creator
	Series     []catdom.Serie

	// Dropped counts upstream records the normalizer refused
	Dropped int
}

// Len is the number of records ready to write
func (b Batch) Len() int {
	return len(b.Characters) + len(b.Comics) + len(b.Creators) + len(b.Series)
}
