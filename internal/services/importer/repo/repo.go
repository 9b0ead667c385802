// Package repo provides postgres writes for the importer
package repo

import (
	"context"
	"encoding/json"

	"comicvault/internal/modkit/repokit"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/store"
	catdom "comicvault/internal/services/catalog/domain"
	"comicvault/internal/services/importer/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// InsertCharacters inserts new characters. A placeholder left by the linker
// is filled in with the real record and counts as inserted
func (r *queries) InsertCharacters(ctx context.Context, cs []catdom.Character) (int, int, error) {
	const q = `
		INSERT INTO characters (external_id, name, description, thumbnail, modified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO UPDATE
		SET name = excluded.name,
			description = excluded.description,
			thumbnail = excluded.thumbnail,
			modified = excluded.modified,
			placeholder = false
		WHERE characters.placeholder
	`
	inserted := 0
	for _, c := range cs {
		n, err := store.Exec(ctx, r.q, q, c.ExternalID, c.Name, c.Description, c.Thumbnail, c.Modified)
		if err != nil {
			return inserted, 0, perr.FromPostgresf(err, "insert character %d", c.ExternalID)
		}
		inserted += int(n)
	}
	return inserted, len(cs) - inserted, nil
}

// InsertCreators inserts new creators
func (r *queries) InsertCreators(ctx context.Context, cs []catdom.Creator) (int, int, error) {
	const q = `
		INSERT INTO creators (external_id, first_name, last_name, full_name, thumbnail)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO NOTHING
	`
	inserted := 0
	for _, c := range cs {
		n, err := store.Exec(ctx, r.q, q, c.ExternalID, c.FirstName, c.LastName, c.FullName, c.Thumbnail)
		if err != nil {
			return inserted, 0, perr.FromPostgresf(err, "insert creator %d", c.ExternalID)
		}
		inserted += int(n)
	}
	return inserted, len(cs) - inserted, nil
}

// InsertComics inserts new comics and their creator credits
func (r *queries) InsertComics(ctx context.Context, cs []catdom.Comic) (int, int, error) {
	const q = `
		INSERT INTO comics (
			external_id, title, description, page_count, thumbnail, release_date, slug,
			variant_ids, creator_refs, character_ids, serie_external_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10::jsonb, $11)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING id
	`
	inserted := 0
	for _, c := range cs {
		id, err := store.One(ctx, r.q, scanID, q,
			c.ExternalID, c.Title, c.Description, c.PageCount, c.Thumbnail, c.ReleaseDate, c.Slug,
			jsonb(c.VariantIDs), jsonb(c.Creators), jsonb(c.CharacterIDs), c.SerieExternalID,
		)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			continue
		}
		if err != nil {
			return inserted, 0, perr.FromPostgresf(err, "insert comic %d", c.ExternalID)
		}
		if err := r.credit(ctx, "comic_creators", "comic_id", id, c.Creators); err != nil {
			return inserted, 0, err
		}
		inserted++
	}
	return inserted, len(cs) - inserted, nil
}

// InsertSeries inserts new series and their creator credits
func (r *queries) InsertSeries(ctx context.Context, ss []catdom.Serie) (int, int, error) {
	const q = `
		INSERT INTO series (
			external_id, title, description, start_year, end_year, thumbnail, creator_refs, character_ids
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING id
	`
	inserted := 0
	for _, s := range ss {
		id, err := store.One(ctx, r.q, scanID, q,
			s.ExternalID, s.Title, s.Description, nullYear(s.StartYear), nullYear(s.EndYear), s.Thumbnail,
			jsonb(s.Creators), jsonb(s.CharacterIDs),
		)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			continue
		}
		if err != nil {
			return inserted, 0, perr.FromPostgresf(err, "insert serie %d", s.ExternalID)
		}
		if err := r.credit(ctx, "serie_creators", "serie_id", id, s.Creators); err != nil {
			return inserted, 0, err
		}
		inserted++
	}
	return inserted, len(ss) - inserted, nil
}

// credit writes creator join rows for a freshly inserted root
func (r *queries) credit(ctx context.Context, table, col string, rootID int64, refs []catdom.CreatorRef) error {
	q := `INSERT INTO ` + table + ` (` + col + `, creator_external_id, role) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	for _, ref := range refs {
		if ref.CreatorExternalID <= 0 {
			continue
		}
		if _, err := r.q.Exec(ctx, q, rootID, ref.CreatorExternalID, ref.Role); err != nil {
			return perr.FromPostgresf(err, "insert %s %d/%d", table, rootID, ref.CreatorExternalID)
		}
	}
	return nil
}

func scanID(row store.Row) (int64, error) {
	var id int64
	return id, row.Scan(&id)
}

// jsonb renders v for a ::jsonb parameter; nil slices become []
func jsonb(v any) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "[]"
	}
	return string(b)
}

func nullYear(y int) any {
	if y <= 0 {
		return nil
	}
	return y
}
