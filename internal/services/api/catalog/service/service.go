// Package service implements the hybrid catalog query layer: exact listings
// from postgres and fuzzy search from the index, both naturally sorted and
// paged in memory
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"comicvault/internal/core/exclude"
	"comicvault/internal/core/natural"
	"comicvault/internal/core/paging"
	"comicvault/internal/modkit/repokit"
	"comicvault/internal/platform/cache"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/search"
	ptime "comicvault/internal/platform/time"
	"comicvault/internal/services/api/catalog/domain"
	"comicvault/internal/services/api/catalog/repo"
	catdom "comicvault/internal/services/catalog/domain"
	ssdom "comicvault/internal/services/searchsync/domain"
)

// Service defines the catalog service contract
type Service interface {
	domain.ServicePort
}

// Searcher is the read side of the search index
type Searcher interface {
	Search(ctx context.Context, index string, body any) (search.Result, error)
}

// Config tunes paging, caching and search truncation
type Config struct {
	PerPage     int
	Window      int
	ListTTL     time.Duration
	SearchTTL   time.Duration
	RecentLimit int
	// Caps bounds how many hits one search reads; results past the cap are
	// silently truncated
	Caps map[catdom.EntityType]int
}

// DefaultConfig mirrors the production defaults
func DefaultConfig() Config {
	return Config{
		PerPage:     20,
		Window:      paging.DefaultWindow,
		ListTTL:     time.Hour,
		SearchTTL:   5 * time.Minute,
		RecentLimit: 30,
		Caps: map[catdom.EntityType]int{
			catdom.Characters: 100,
			catdom.Comics:     500,
			catdom.Series:     500,
		},
	}
}

// Svc implements the catalog service
type Svc struct {
	Repo  repo.Repo
	Index Searcher
	Cache cache.Cache
	Cfg   Config

	now func() time.Time
}

// New constructs a catalog service. idx may be nil, in which case search
// reports the index unavailable; c may be nil to disable caching
func New(db repokit.Queryer, binder repokit.Binder[repo.Repo], idx Searcher, c cache.Cache, cfg Config) *Svc {
	if db == nil {
		panic("catalog.Service requires a non nil Queryer")
	}
	if binder == nil {
		panic("catalog.Service requires a non nil Repo binder")
	}
	def := DefaultConfig()
	if cfg.PerPage < 1 {
		cfg.PerPage = def.PerPage
	}
	if cfg.Window < 1 {
		cfg.Window = def.Window
	}
	if cfg.RecentLimit < 1 {
		cfg.RecentLimit = def.RecentLimit
	}
	if cfg.Caps == nil {
		cfg.Caps = def.Caps
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &Svc{Repo: binder.Bind(db), Index: idx, Cache: c, Cfg: cfg, now: time.Now}
}

func (s *Svc) perPage(n int) int {
	if n < 1 {
		return s.Cfg.PerPage
	}
	return n
}

// List returns one naturally sorted page of t with the exclusion vocabulary
// applied. A page past the end is ErrorCodeOutOfRange
func (s *Svc) List(ctx context.Context, t catdom.EntityType, page, perPage int) (domain.Result, error) {
	if !t.Valid() {
		return domain.Result{}, perr.InvalidArgf("catalog: unknown entity type %q", t)
	}
	perPage = s.perPage(perPage)
	key := fmt.Sprintf("catalog:list:%s:%d:%d", t, page, perPage)
	return cache.Remember(ctx, s.Cache, key, s.Cfg.ListTTL, func(ctx context.Context) (domain.Result, error) {
		words := exclude.For(t.String())
		total, err := s.Repo.Count(ctx, t, words)
		if err != nil {
			return domain.Result{}, err
		}
		w, err := paging.Compute(total, page, perPage, s.Cfg.Window)
		if err != nil {
			return domain.Result{}, err
		}
		rows, err := s.Repo.Projection(ctx, t, words)
		if err != nil {
			return domain.Result{}, err
		}
		natural.Sort(rows, func(r repo.Row) string { return r.Label })
		return domain.Result{
			TotalItems: total,
			Items:      items(paging.Slice(rows, w)),
			Paging:     w,
		}, nil
	})
}

// Search runs a fuzzy match of query against t's index, drops excluded
// titles, sorts naturally and pages in memory. An empty query is an empty
// success
func (s *Svc) Search(ctx context.Context, t catdom.EntityType, query string, page, perPage int) (domain.Result, error) {
	if !t.IsSearchable() {
		return domain.Result{}, perr.InvalidArgf("catalog: %s is not searchable", t)
	}
	perPage = s.perPage(perPage)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		w, _ := paging.Compute(0, 1, perPage, s.Cfg.Window)
		return domain.Result{Items: []domain.Item{}, Paging: w}, nil
	}
	if s.Index == nil {
		return domain.Result{}, perr.IndexUnavailablef(nil, "catalog: search is not configured")
	}

	key := fmt.Sprintf("catalog:search:%s:%s:%d:%d", t, q, page, perPage)
	return cache.Remember(ctx, s.Cache, key, s.Cfg.SearchTTL, func(ctx context.Context) (domain.Result, error) {
		words := exclude.For(t.String())
		body := search.FuzzyQuery{
			Field:   ssdom.Field(t),
			Text:    q,
			Exclude: words,
			Size:    s.Cfg.Caps[t],
		}.Body()
		res, err := s.Index.Search(ctx, ssdom.Index(t), body)
		if err != nil {
			return domain.Result{}, err
		}

		hits := make([]domain.Item, 0, len(res.Hits))
		for _, h := range res.Hits {
			var d ssdom.Doc
			if err := json.Unmarshal(h.Source, &d); err != nil {
				logger.C(ctx).Warn().Err(err).Str("index", ssdom.Index(t)).Str("id", h.ID).Msg("catalog: skip undecodable hit")
				continue
			}
			hits = append(hits, docItem(d))
		}
		hits = exclude.Filter(hits, words, func(it domain.Item) string { return it.Title })
		natural.Sort(hits, func(it domain.Item) string { return it.Title })

		w, err := paging.Compute(len(hits), page, perPage, s.Cfg.Window)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.Result{
			TotalItems: len(hits),
			Items:      paging.Slice(hits, w),
			Paging:     w,
		}, nil
	})
}

// TopRecentComics returns the newest released comics, skipping variants and
// collected editions
func (s *Svc) TopRecentComics(ctx context.Context, limit int) ([]domain.Item, error) {
	if limit < 1 {
		limit = s.Cfg.RecentLimit
	}
	today := ptime.Today(s.now())
	key := fmt.Sprintf("catalog:recent:%s:%d", today.Format("2006-01-02"), limit)
	return cache.Remember(ctx, s.Cache, key, s.Cfg.ListTTL, func(ctx context.Context) ([]domain.Item, error) {
		rows, err := s.Repo.Recent(ctx, today, exclude.Recent(), limit)
		if err != nil {
			return nil, err
		}
		return items(rows), nil
	})
}

// ComicDetails resolves a comic with its serie, cast, credits and the
// variants present locally with a cover
func (s *Svc) ComicDetails(ctx context.Context, externalID int64) (domain.ComicDetails, error) {
	c, err := s.Repo.Comic(ctx, externalID)
	if err != nil {
		return domain.ComicDetails{}, err
	}
	chars, err := s.Repo.ComicCharacters(ctx, c.ID)
	if err != nil {
		return domain.ComicDetails{}, err
	}
	credits, err := s.Repo.ComicCreators(ctx, c.ID)
	if err != nil {
		return domain.ComicDetails{}, err
	}
	variants, err := s.Repo.ComicsByExternalIDs(ctx, c.VariantIDs)
	if err != nil {
		return domain.ComicDetails{}, err
	}

	out := domain.ComicDetails{
		ExternalID:  c.ExternalID,
		Title:       c.Title,
		Description: c.Description,
		PageCount:   c.PageCount,
		Thumbnail:   c.Thumbnail,
		ReleaseDate: c.ReleaseDate,
		Slug:        c.Slug,
		Characters:  sorted(chars),
		Creators:    creditList(credits),
		Variants:    sorted(variants),
	}
	if c.SerieExternalID != nil {
		out.Serie = &domain.SerieSummary{
			ExternalID: *c.SerieExternalID,
			Title:      deref(c.SerieTitle),
			Thumbnail:  deref(c.SerieThumbnail),
		}
	}
	return out, nil
}

// CharacterDetails resolves a character with the comics and series it appears in
func (s *Svc) CharacterDetails(ctx context.Context, externalID int64) (domain.CharacterDetails, error) {
	c, err := s.Repo.Character(ctx, externalID)
	if err != nil {
		return domain.CharacterDetails{}, err
	}
	comics, err := s.Repo.CharacterComics(ctx, c.ID, s.Cfg.RecentLimit)
	if err != nil {
		return domain.CharacterDetails{}, err
	}
	series, err := s.Repo.CharacterSeries(ctx, c.ID)
	if err != nil {
		return domain.CharacterDetails{}, err
	}
	return domain.CharacterDetails{
		ExternalID:  c.ExternalID,
		Name:        c.Name,
		Description: c.Description,
		Thumbnail:   c.Thumbnail,
		Comics:      items(comics),
		Series:      sorted(series),
	}, nil
}

// CreatorDetails resolves a creator with the series they are credited on
func (s *Svc) CreatorDetails(ctx context.Context, externalID int64) (domain.CreatorDetails, error) {
	c, err := s.Repo.Creator(ctx, externalID)
	if err != nil {
		return domain.CreatorDetails{}, err
	}
	series, err := s.Repo.CreatorSeries(ctx, c.ExternalID)
	if err != nil {
		return domain.CreatorDetails{}, err
	}
	return domain.CreatorDetails{
		ExternalID: c.ExternalID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		FullName:   c.FullName,
		Thumbnail:  c.Thumbnail,
		Series:     sorted(series),
	}, nil
}

// SerieDetails resolves a serie with its issues in natural order, its cast
// and its credits
func (s *Svc) SerieDetails(ctx context.Context, externalID int64) (domain.SerieDetails, error) {
	sr, err := s.Repo.Serie(ctx, externalID)
	if err != nil {
		return domain.SerieDetails{}, err
	}
	comics, err := s.Repo.SerieComics(ctx, sr.ID)
	if err != nil {
		return domain.SerieDetails{}, err
	}
	chars, err := s.Repo.SerieCharacters(ctx, sr.ID)
	if err != nil {
		return domain.SerieDetails{}, err
	}
	credits, err := s.Repo.SerieCreators(ctx, sr.ID)
	if err != nil {
		return domain.SerieDetails{}, err
	}
	return domain.SerieDetails{
		ExternalID:  sr.ExternalID,
		Title:       sr.Title,
		Description: sr.Description,
		StartYear:   derefInt(sr.StartYear),
		EndYear:     derefInt(sr.EndYear),
		Thumbnail:   sr.Thumbnail,
		Comics:      sorted(comics),
		Characters:  sorted(chars),
		Creators:    creditList(credits),
	}, nil
}

func items(rows []repo.Row) []domain.Item {
	out := make([]domain.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Item{ExternalID: r.ExternalID, Title: r.Label, Thumbnail: r.Thumbnail, Date: r.Date})
	}
	return out
}

func sorted(rows []repo.Row) []domain.Item {
	natural.Sort(rows, func(r repo.Row) string { return r.Label })
	return items(rows)
}

func creditList(rows []repo.CreditRow) []domain.Credit {
	out := make([]domain.Credit, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Credit{ExternalID: r.ExternalID, FullName: r.FullName, Role: r.Role, Thumbnail: r.Thumbnail})
	}
	return out
}

func docItem(d ssdom.Doc) domain.Item {
	it := domain.Item{ExternalID: d.MarvelID, Title: d.Label(), Thumbnail: d.Thumbnail}
	if d.Date != "" {
		if t, err := time.Parse(ssdom.DateLayout, d.Date); err == nil {
			it.Date = &t
		}
	}
	return it
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
