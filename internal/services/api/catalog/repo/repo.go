// Package repo provides postgres access for the catalog query API
package repo

import (
	"context"
	"strconv"
	"time"

	"comicvault/internal/core/exclude"
	"comicvault/internal/modkit/repokit"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/store"
	catdom "comicvault/internal/services/catalog/domain"
)

// Repo is the read-only persistence surface of the query layer
type Repo interface {
	// Count and Projection apply the same exclusion filter; Projection is
	// unordered, callers sort naturally
	Count(ctx context.Context, t catdom.EntityType, words []string) (int, error)
	Projection(ctx context.Context, t catdom.EntityType, words []string) ([]Row, error)
	Recent(ctx context.Context, today time.Time, words []string, limit int) ([]Row, error)

	Comic(ctx context.Context, externalID int64) (ComicRow, error)
	ComicCharacters(ctx context.Context, comicID int64) ([]Row, error)
	ComicCreators(ctx context.Context, comicID int64) ([]CreditRow, error)
	ComicsByExternalIDs(ctx context.Context, ids []int64) ([]Row, error)

	Character(ctx context.Context, externalID int64) (CharacterRow, error)
	CharacterComics(ctx context.Context, characterID int64, limit int) ([]Row, error)
	CharacterSeries(ctx context.Context, characterID int64) ([]Row, error)

	Creator(ctx context.Context, externalID int64) (CreatorRow, error)
	CreatorSeries(ctx context.Context, creatorExternalID int64) ([]Row, error)

	Serie(ctx context.Context, externalID int64) (SerieRow, error)
	SerieComics(ctx context.Context, serieID int64) ([]Row, error)
	SerieCharacters(ctx context.Context, serieID int64) ([]Row, error)
	SerieCreators(ctx context.Context, serieID int64) ([]CreditRow, error)
}

// Row is the projection every listing shares
type Row struct {
	ExternalID int64
	Label      string
	Thumbnail  string
	Date       *time.Time
}

// CreditRow is a creator credit resolved against the creators table
type CreditRow struct {
	ExternalID int64
	FullName   string
	Role       string
	Thumbnail  string
}

// ComicRow is a comic with its serie summary when linked
type ComicRow struct {
	ID          int64
	ExternalID  int64
	Title       string
	Description string
	PageCount   int
	Thumbnail   string
	ReleaseDate *time.Time
	Slug        string
	VariantIDs  []int64

	SerieExternalID *int64
	SerieTitle      *string
	SerieThumbnail  *string
}

// CharacterRow is one character
type CharacterRow struct {
	ID          int64
	ExternalID  int64
	Name        string
	Description string
	Thumbnail   string
}

// CreatorRow is one creator
type CreatorRow struct {
	ExternalID int64
	FirstName  string
	LastName   string
	FullName   string
	Thumbnail  string
}

// SerieRow is one serie
type SerieRow struct {
	ID          int64
	ExternalID  int64
	Title       string
	Description string
	StartYear   *int
	EndYear     *int
	Thumbnail   string
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// source names the table, label column and base predicate of a listing
type source struct {
	table string
	label string
	date  string
	where string
}

func sourceFor(t catdom.EntityType) (source, error) {
	switch t {
	case catdom.Characters:
		return source{table: "characters", label: "name", date: "null::date", where: "not placeholder"}, nil
	case catdom.Comics:
		return source{table: "comics", label: "title", date: "release_date", where: "true"}, nil
	case catdom.Series:
		return source{table: "series", label: "title", date: "null::date", where: "true"}, nil
	case catdom.Creators:
		return source{table: "creators", label: "full_name", date: "null::date", where: "true"}, nil
	}
	return source{}, perr.InvalidArgf("catalog: unknown entity type %q", t)
}

func scanRow(r store.Row) (Row, error) {
	var x Row
	return x, r.Scan(&x.ExternalID, &x.Label, &x.Thumbnail, &x.Date)
}

func scanCredit(r store.Row) (CreditRow, error) {
	var x CreditRow
	return x, r.Scan(&x.ExternalID, &x.FullName, &x.Role, &x.Thumbnail)
}

func (r *queries) Count(ctx context.Context, t catdom.EntityType, words []string) (int, error) {
	src, err := sourceFor(t)
	if err != nil {
		return 0, err
	}
	filter, args, _ := exclude.SQL(src.label, words, 1)
	sql := `select count(*) from ` + src.table + ` where ` + src.where + ` and ` + filter
	n, err := store.Scalar[int64](ctx, r.q, sql, args...)
	if err != nil {
		return 0, perr.FromPostgresf(err, "count %s", t)
	}
	return int(n), nil
}

func (r *queries) Projection(ctx context.Context, t catdom.EntityType, words []string) ([]Row, error) {
	src, err := sourceFor(t)
	if err != nil {
		return nil, err
	}
	filter, args, _ := exclude.SQL(src.label, words, 1)
	sql := `select external_id, ` + src.label + `, thumbnail, ` + src.date + `
from ` + src.table + `
where ` + src.where + ` and ` + filter
	rows, err := store.Many(ctx, r.q, scanRow, sql, args...)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list %s", t)
	}
	return rows, nil
}

func (r *queries) Recent(ctx context.Context, today time.Time, words []string, limit int) ([]Row, error) {
	filter, args, next := exclude.SQL("title", words, 2)
	sql := `select external_id, title, thumbnail, release_date
from comics
where release_date <= $1 and ` + filter + `
order by release_date desc, external_id desc
limit $` + strconv.Itoa(next)
	args = append([]any{today}, args...)
	args = append(args, limit)
	rows, err := store.Many(ctx, r.q, scanRow, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "recent comics")
	}
	return rows, nil
}

func (r *queries) Comic(ctx context.Context, externalID int64) (ComicRow, error) {
	const sql = `
select c.id, c.external_id, c.title, c.description, c.page_count, c.thumbnail, c.release_date, c.slug,
	coalesce(array(select jsonb_array_elements_text(c.variant_ids)::bigint), '{}'),
	s.external_id, s.title, s.thumbnail
from comics c
left join series s on s.id = c.serie_id
where c.external_id = $1
`
	row, err := store.One(ctx, r.q, func(x store.Row) (ComicRow, error) {
		var c ComicRow
		err := x.Scan(&c.ID, &c.ExternalID, &c.Title, &c.Description, &c.PageCount, &c.Thumbnail,
			&c.ReleaseDate, &c.Slug, &c.VariantIDs, &c.SerieExternalID, &c.SerieTitle, &c.SerieThumbnail)
		return c, err
	}, sql, externalID)
	return row, notFound(err, "comic", externalID)
}

func (r *queries) ComicCharacters(ctx context.Context, comicID int64) ([]Row, error) {
	const sql = `
select ch.external_id, ch.name, ch.thumbnail, null::date
from comic_characters cc
join characters ch on ch.id = cc.character_id
where cc.comic_id = $1
`
	return r.many(ctx, "comic characters", sql, comicID)
}

func (r *queries) ComicCreators(ctx context.Context, comicID int64) ([]CreditRow, error) {
	const sql = `
select cr.external_id, cr.full_name, x.role, cr.thumbnail
from comic_creators x
join creators cr on cr.external_id = x.creator_external_id
where x.comic_id = $1
order by x.role, cr.full_name
`
	out, err := store.Many(ctx, r.q, scanCredit, sql, comicID)
	if err != nil {
		return nil, perr.FromPostgres(err, "comic creators")
	}
	return out, nil
}

func (r *queries) ComicsByExternalIDs(ctx context.Context, ids []int64) ([]Row, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const sql = `
select external_id, title, thumbnail, release_date
from comics
where external_id = any($1) and thumbnail <> ''
`
	return r.many(ctx, "comics by ids", sql, ids)
}

func (r *queries) Character(ctx context.Context, externalID int64) (CharacterRow, error) {
	const sql = `
select id, external_id, name, description, thumbnail
from characters
where external_id = $1
`
	row, err := store.One(ctx, r.q, func(x store.Row) (CharacterRow, error) {
		var c CharacterRow
		return c, x.Scan(&c.ID, &c.ExternalID, &c.Name, &c.Description, &c.Thumbnail)
	}, sql, externalID)
	return row, notFound(err, "character", externalID)
}

func (r *queries) CharacterComics(ctx context.Context, characterID int64, limit int) ([]Row, error) {
	const sql = `
select c.external_id, c.title, c.thumbnail, c.release_date
from comic_characters cc
join comics c on c.id = cc.comic_id
where cc.character_id = $1
order by c.release_date desc nulls last
limit $2
`
	return r.many(ctx, "character comics", sql, characterID, limit)
}

func (r *queries) CharacterSeries(ctx context.Context, characterID int64) ([]Row, error) {
	const sql = `
select s.external_id, s.title, s.thumbnail, null::date
from serie_characters sc
join series s on s.id = sc.serie_id
where sc.character_id = $1
`
	return r.many(ctx, "character series", sql, characterID)
}

func (r *queries) Creator(ctx context.Context, externalID int64) (CreatorRow, error) {
	const sql = `
select external_id, first_name, last_name, full_name, thumbnail
from creators
where external_id = $1
`
	row, err := store.One(ctx, r.q, func(x store.Row) (CreatorRow, error) {
		var c CreatorRow
		return c, x.Scan(&c.ExternalID, &c.FirstName, &c.LastName, &c.FullName, &c.Thumbnail)
	}, sql, externalID)
	return row, notFound(err, "creator", externalID)
}

func (r *queries) CreatorSeries(ctx context.Context, creatorExternalID int64) ([]Row, error) {
	const sql = `
select distinct s.external_id, s.title, s.thumbnail, null::date
from serie_creators x
join series s on s.id = x.serie_id
where x.creator_external_id = $1
`
	return r.many(ctx, "creator series", sql, creatorExternalID)
}

func (r *queries) Serie(ctx context.Context, externalID int64) (SerieRow, error) {
	const sql = `
select id, external_id, title, description, start_year, end_year, thumbnail
from series
where external_id = $1
`
	row, err := store.One(ctx, r.q, func(x store.Row) (SerieRow, error) {
		var s SerieRow
		return s, x.Scan(&s.ID, &s.ExternalID, &s.Title, &s.Description, &s.StartYear, &s.EndYear, &s.Thumbnail)
	}, sql, externalID)
	return row, notFound(err, "serie", externalID)
}

func (r *queries) SerieComics(ctx context.Context, serieID int64) ([]Row, error) {
	const sql = `
select external_id, title, thumbnail, release_date
from comics
where serie_id = $1
`
	return r.many(ctx, "serie comics", sql, serieID)
}

func (r *queries) SerieCharacters(ctx context.Context, serieID int64) ([]Row, error) {
	const sql = `
select ch.external_id, ch.name, ch.thumbnail, null::date
from serie_characters sc
join characters ch on ch.id = sc.character_id
where sc.serie_id = $1
`
	return r.many(ctx, "serie characters", sql, serieID)
}

func (r *queries) SerieCreators(ctx context.Context, serieID int64) ([]CreditRow, error) {
	const sql = `
select cr.external_id, cr.full_name, x.role, cr.thumbnail
from serie_creators x
join creators cr on cr.external_id = x.creator_external_id
where x.serie_id = $1
order by x.role, cr.full_name
`
	out, err := store.Many(ctx, r.q, scanCredit, sql, serieID)
	if err != nil {
		return nil, perr.FromPostgres(err, "serie creators")
	}
	return out, nil
}

func (r *queries) many(ctx context.Context, what, sql string, args ...any) ([]Row, error) {
	out, err := store.Many(ctx, r.q, scanRow, sql, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, what)
	}
	return out, nil
}

func notFound(err error, what string, externalID int64) error {
	if err == nil {
		return nil
	}
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf("%s %d not found", what, externalID)
	}
	return perr.FromPostgresf(err, "load %s %d", what, externalID)
}
