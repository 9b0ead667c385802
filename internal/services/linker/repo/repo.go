// Package repo provides postgres access for the linker
package repo

import (
	"context"
	"encoding/json"

	"comicvault/internal/modkit/repokit"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/store"
	catdom "comicvault/internal/services/catalog/domain"
	"comicvault/internal/services/linker/domain"
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

func (r *queries) LinkSeries(ctx context.Context) (int, int, error) {
	linked, err := store.Exec(ctx, r.q, `
		UPDATE comics c SET serie_id = s.id
		FROM series s
		WHERE c.serie_external_id > 0
			AND s.external_id = c.serie_external_id
			AND c.serie_id IS DISTINCT FROM s.id
	`)
	if err != nil {
		return 0, 0, perr.FromPostgres(err, "link comic series")
	}
	unresolved, err := store.Scalar[int64](ctx, r.q, `
		SELECT count(*) FROM comics WHERE serie_external_id > 0 AND serie_id IS NULL
	`)
	if err != nil {
		return int(linked), 0, perr.FromPostgres(err, "count unresolved series")
	}
	return int(linked), int(unresolved), nil
}

func (r *queries) Roots(ctx context.Context, kind domain.RootKind, afterID int64, limit int) ([]domain.Root, error) {
	table, err := rootTable(kind)
	if err != nil {
		return nil, err
	}
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Root, error) {
		var (
			root domain.Root
			raw  []byte
		)
		if err := row.Scan(&root.ID, &raw); err != nil {
			return root, err
		}
		if err := json.Unmarshal(raw, &root.Refs); err != nil {
			// not an array; the service counts it as one skipped reference
			root.Refs = []json.RawMessage{raw}
		}
		return root, nil
	}, `
		SELECT id, character_ids::text
		FROM `+table+`
		WHERE id > $1 AND character_ids <> '[]'::jsonb
		ORDER BY id
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list %s roots", kind)
	}
	return out, nil
}

// EnsureCharacter returns the local id for externalID, inserting a placeholder
// when absent. The no-op update makes a row committed by a concurrent insert
// visible to RETURNING; xmax = 0 only on a fresh insert
func (r *queries) EnsureCharacter(ctx context.Context, externalID int64) (int64, bool, error) {
	type res struct {
		id      int64
		created bool
	}
	got, err := store.One(ctx, r.q, func(row store.Row) (res, error) {
		var x res
		return x, row.Scan(&x.id, &x.created)
	}, `
		INSERT INTO characters (external_id, name, description, thumbnail, placeholder)
		VALUES ($1, $2, '', '', true)
		ON CONFLICT (external_id) DO UPDATE SET external_id = excluded.external_id
		RETURNING id, (xmax = 0)
	`, externalID, catdom.PlaceholderName(externalID))
	if err != nil {
		return 0, false, perr.FromPostgresf(err, "ensure character %d", externalID)
	}
	return got.id, got.created, nil
}

func (r *queries) LinkCharacter(ctx context.Context, kind domain.RootKind, rootID, characterID int64) (bool, error) {
	var sql string
	switch kind {
	case domain.RootComics:
		sql = `INSERT INTO comic_characters (comic_id, character_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	case domain.RootSeries:
		sql = `INSERT INTO serie_characters (serie_id, character_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	default:
		return false, perr.InvalidArgf("linker: unknown root kind %q", kind)
	}
	n, err := store.Exec(ctx, r.q, sql, rootID, characterID)
	if err != nil {
		return false, perr.FromPostgresf(err, "link %s %d to character %d", kind, rootID, characterID)
	}
	return n > 0, nil
}

func (r *queries) MissingSlugs(ctx context.Context, afterID int64, limit int) ([]domain.SlugRow, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.SlugRow, error) {
		var s domain.SlugRow
		return s, row.Scan(&s.ID, &s.Title)
	}, `SELECT id, title FROM comics WHERE slug = '' AND id > $1 ORDER BY id LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list comics without slug")
	}
	return out, nil
}

func (r *queries) SetSlug(ctx context.Context, id int64, slug string) error {
	if _, err := store.Exec(ctx, r.q, `UPDATE comics SET slug = $2 WHERE id = $1`, id, slug); err != nil {
		return perr.FromPostgresf(err, "set slug on comic %d", id)
	}
	return nil
}

func rootTable(kind domain.RootKind) (string, error) {
	switch kind {
	case domain.RootComics:
		return "comics", nil
	case domain.RootSeries:
		return "series", nil
	}
	return "", perr.InvalidArgf("linker: unknown root kind %q", kind)
}
