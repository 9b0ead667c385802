// Package ingest maps upstream records onto catalog entities
package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"comicvault/internal/adapters/marvel"
	"comicvault/internal/core/normalize"
	perr "comicvault/internal/platform/errors"
	ptime "comicvault/internal/platform/time"
	catdom "comicvault/internal/services/catalog/domain"
	"comicvault/internal/services/importer/domain"
)

const untitled = "Untitled"

// Normalizer implements domain.Normalizer over the marvel raw models
type Normalizer struct{}

// NewNormalizer returns the default normalizer
func NewNormalizer() Normalizer { return Normalizer{} }

// Page decodes raws as t and maps every record
func (Normalizer) Page(t catdom.EntityType, raws []json.RawMessage) (domain.Batch, error) {
	var b domain.Batch
	switch t {
	case catdom.Characters:
		rs, err := marvel.Decode[marvel.RawCharacter](raws)
		if err != nil {
			return b, err
		}
		for _, r := range rs {
			b.Characters = append(b.Characters, Character(r))
		}
	case catdom.Comics:
		rs, err := marvel.Decode[marvel.RawComic](raws)
		if err != nil {
			return b, err
		}
		for _, r := range rs {
			b.Comics = append(b.Comics, Comic(r))
		}
	case catdom.Creators:
		rs, err := marvel.Decode[marvel.RawCreator](raws)
		if err != nil {
			return b, err
		}
		for _, r := range rs {
			c, ok := Creator(r)
			if !ok {
				b.Dropped++
				continue
			}
			b.Creators = append(b.Creators, c)
		}
	case catdom.Series:
		rs, err := marvel.Decode[marvel.RawSerie](raws)
		if err != nil {
			return b, err
		}
		for _, r := range rs {
			b.Series = append(b.Series, Serie(r))
		}
	default:
		return b, perr.InvalidArgf("ingest: unknown entity type %q", t)
	}
	return b, nil
}

// Character maps a raw character
func Character(r marvel.RawCharacter) catdom.Character {
	c := catdom.Character{
		ExternalID:  r.ID,
		Name:        strings.TrimSpace(r.Name),
		Description: normalize.Description(r.Description),
		Thumbnail:   normalize.Thumbnail(r.Thumbnail.Path, r.Thumbnail.Extension),
	}
	if t, err := time.Parse("2006-01-02T15:04:05-0700", r.Modified); err == nil && t.Year() > 1 {
		c.Modified = ptime.Ptr(t.UTC())
	}
	return c
}

// Comic maps a raw comic, extracting the referenced ids from resource URIs
func Comic(r marvel.RawComic) catdom.Comic {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = untitled
	}
	c := catdom.Comic{
		ExternalID:   r.ID,
		Title:        title,
		Description:  normalize.Description(deref(r.Description)),
		PageCount:    max(r.PageCount, 0),
		Thumbnail:    normalize.Thumbnail(r.Thumbnail.Path, r.Thumbnail.Extension),
		ReleaseDate:  normalize.OnSaleDate(typedDates(r.Dates)),
		Slug:         normalize.Slug(strings.TrimSpace(r.Title)),
		VariantIDs:   ids(r.Variants),
		Creators:     creatorRefs(r.Creators.Items),
		CharacterIDs: ids(r.Characters.Items),
	}
	if id, ok := normalize.CatchID(r.Series.ResourceURI); ok {
		c.SerieExternalID = id
	}
	return c
}

// Creator maps a raw creator; ok is false when every name field is blank
func Creator(r marvel.RawCreator) (catdom.Creator, bool) {
	first, last, full := strings.TrimSpace(r.FirstName), strings.TrimSpace(r.LastName), strings.TrimSpace(r.FullName)
	if first == "" && last == "" && full == "" {
		return catdom.Creator{}, false
	}
	if full == "" {
		full = strings.TrimSpace(first + " " + last)
	}
	return catdom.Creator{
		ExternalID: r.ID,
		FirstName:  first,
		LastName:   last,
		FullName:   full,
		Thumbnail:  normalize.Thumbnail(r.Thumbnail.Path, r.Thumbnail.Extension),
	}, true
}

// Serie maps a raw serie
func Serie(r marvel.RawSerie) catdom.Serie {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = untitled
	}
	return catdom.Serie{
		ExternalID:   r.ID,
		Title:        title,
		Description:  normalize.Description(deref(r.Description)),
		StartYear:    r.StartYear,
		EndYear:      r.EndYear,
		Thumbnail:    normalize.Thumbnail(r.Thumbnail.Path, r.Thumbnail.Extension),
		Creators:     creatorRefs(r.Creators.Items),
		CharacterIDs: ids(r.Characters.Items),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func typedDates(ds []marvel.Date) []normalize.TypedDate {
	out := make([]normalize.TypedDate, len(ds))
	for i, d := range ds {
		out[i] = normalize.TypedDate{Type: d.Type, Date: d.Date}
	}
	return out
}

// ids keeps the references whose URI ends in an id
func ids(items []marvel.Summary) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		if id, ok := normalize.CatchID(it.ResourceURI); ok {
			out = append(out, id)
		}
	}
	return out
}

func creatorRefs(items []marvel.Summary) []catdom.CreatorRef {
	out := make([]catdom.CreatorRef, 0, len(items))
	for _, it := range items {
		id, ok := normalize.CatchID(it.ResourceURI)
		if !ok {
			continue
		}
		out = append(out, catdom.CreatorRef{CreatorExternalID: id, Role: strings.ToLower(strings.TrimSpace(it.Role))})
	}
	return out
}
