// Package repo reads the search projection from postgres
package repo

import (
	"context"

	"comicvault/internal/modkit/repokit"
	perr "comicvault/internal/platform/errors"
	catdom "comicvault/internal/services/catalog/domain"
	"comicvault/internal/services/searchsync/domain"
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

// placeholders are not searchable until the real record arrives
var projections = map[catdom.EntityType]string{
	catdom.Characters: `
		SELECT id, external_id, name, thumbnail, NULL::date
		FROM characters
		WHERE id > $1 AND NOT placeholder
		ORDER BY id
		LIMIT $2`,
	catdom.Comics: `
		SELECT id, external_id, title, thumbnail, release_date
		FROM comics
		WHERE id > $1
		ORDER BY id
		LIMIT $2`,
	catdom.Series: `
		SELECT id, external_id, title, thumbnail, NULL::date
		FROM series
		WHERE id > $1
		ORDER BY id
		LIMIT $2`,
}

func (r *queries) Projection(ctx context.Context, t catdom.EntityType, afterID int64, limit int) ([]domain.Row, error) {
	sql, ok := projections[t]
	if !ok {
		return nil, perr.InvalidArgf("searchsync: %q is not searchable", t)
	}
	rows, err := r.q.Query(ctx, sql, afterID, limit)
	if err != nil {
		return nil, perr.FromPostgresf(err, "projection %s", t)
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var row domain.Row
		if err := rows.Scan(&row.ID, &row.ExternalID, &row.Label, &row.Thumbnail, &row.Date); err != nil {
			return nil, perr.FromPostgresf(err, "scan projection %s", t)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgresf(err, "iterate projection %s", t)
	}
	return out, nil
}
