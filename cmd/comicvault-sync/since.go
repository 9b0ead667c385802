package main

import (
	"strings"
	"time"

	perr "comicvault/internal/platform/errors"
)

// parseSince accepts a calendar date, an RFC3339 instant or a duration
// counted back from now. Blank means no filter
func parseSince(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		t := now.Add(-d)
		return &t, nil
	}
	return nil, perr.WithField(perr.InvalidArgf("--since %q is neither a date nor a positive duration", s), "since")
}
