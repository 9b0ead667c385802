package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"comicvault/internal/core/exclude"
	"comicvault/internal/modkit/repokit"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/search"
	"comicvault/internal/platform/store"
	"comicvault/internal/services/api/catalog/repo"
	catdom "comicvault/internal/services/catalog/domain"
)

type nopQ struct{ store.RowQuerier }

type memRepo struct {
	repo.Repo
	rows   map[catdom.EntityType][]repo.Row
	counts int

	recentToday time.Time
	recentWords []string
	recentLimit int

	comic   repo.ComicRow
	chars   []repo.Row
	credits []repo.CreditRow
	byIDs   []repo.Row
	askedID []int64
}

func (m *memRepo) filtered(t catdom.EntityType, words []string) []repo.Row {
	out := exclude.Filter(m.rows[t], words, func(r repo.Row) string { return r.Label })
	return append([]repo.Row(nil), out...)
}

func (m *memRepo) Count(_ context.Context, t catdom.EntityType, words []string) (int, error) {
	m.counts++
	return len(m.filtered(t, words)), nil
}

func (m *memRepo) Projection(_ context.Context, t catdom.EntityType, words []string) ([]repo.Row, error) {
	rows := m.filtered(t, words)
	rand.New(rand.NewSource(1)).Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows, nil
}

func (m *memRepo) Recent(_ context.Context, today time.Time, words []string, limit int) ([]repo.Row, error) {
	m.recentToday, m.recentWords, m.recentLimit = today, words, limit
	return []repo.Row{{ExternalID: 1, Label: "Newest"}}, nil
}

func (m *memRepo) Comic(_ context.Context, id int64) (repo.ComicRow, error) {
	if id != m.comic.ExternalID {
		return repo.ComicRow{}, perr.NotFoundf("comic %d not found", id)
	}
	return m.comic, nil
}

func (m *memRepo) ComicCharacters(context.Context, int64) ([]repo.Row, error) { return m.chars, nil }
func (m *memRepo) ComicCreators(context.Context, int64) ([]repo.CreditRow, error) {
	return m.credits, nil
}
func (m *memRepo) ComicsByExternalIDs(_ context.Context, ids []int64) ([]repo.Row, error) {
	m.askedID = ids
	return m.byIDs, nil
}

func newSvc(r *memRepo, idx Searcher, c *mapCache) *Svc {
	var binder repokit.Binder[repo.Repo] = repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return r })
	if c == nil {
		return New(nopQ{}, binder, idx, nil, Config{})
	}
	return New(nopQ{}, binder, idx, c, Config{})
}

// mapCache round-trips through JSON like the redis cache does
type mapCache struct{ data map[string][]byte }

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func comicRows(n int) []repo.Row {
	out := make([]repo.Row, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, repo.Row{ExternalID: int64(i), Label: fmt.Sprintf("Avengers %d", i)})
	}
	return out
}

func TestListPagingMath(t *testing.T) {
	r := &memRepo{rows: map[catdom.EntityType][]repo.Row{catdom.Comics: comicRows(237)}}
	s := newSvc(r, nil, nil)

	res, err := s.List(context.Background(), catdom.Comics, 12, 20)
	if err != nil {
		t.Fatalf("List err = %v", err)
	}
	if res.TotalItems != 237 || res.Paging.TotalPages != 12 || len(res.Items) != 17 {
		t.Fatalf("total = %d pages = %d items = %d, want 237 12 17", res.TotalItems, res.Paging.TotalPages, len(res.Items))
	}
	if res.Items[0].Title != "Avengers 221" {
		t.Fatalf("first on page 12 = %q, want Avengers 221", res.Items[0].Title)
	}

	_, err = s.List(context.Background(), catdom.Comics, 13, 20)
	if !perr.IsCode(err, perr.ErrorCodeOutOfRange) {
		t.Fatalf("page 13 err = %v, want out of range", err)
	}
}

func TestListNaturalOrderAndExclusions(t *testing.T) {
	r := &memRepo{rows: map[catdom.EntityType][]repo.Row{catdom.Comics: {
		{ExternalID: 1, Label: "Avengers 10"},
		{ExternalID: 2, Label: "avengers 2"},
		{ExternalID: 3, Label: "Avengers 2 Variant"},
		{ExternalID: 4, Label: "Avengers Vol. 1 HARDCOVER"},
		{ExternalID: 5, Label: "Avengers 1"},
	}}}
	res, err := newSvc(r, nil, nil).List(context.Background(), catdom.Comics, 1, 20)
	if err != nil {
		t.Fatalf("List err = %v", err)
	}
	var got []string
	for _, it := range res.Items {
		got = append(got, it.Title)
	}
	want := []string{"Avengers 1", "avengers 2", "Avengers 10"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("titles = %v, want %v", got, want)
	}
}

func TestListEmptySet(t *testing.T) {
	s := newSvc(&memRepo{rows: map[catdom.EntityType][]repo.Row{}}, nil, nil)
	res, err := s.List(context.Background(), catdom.Series, 1, 20)
	if err != nil || res.TotalItems != 0 || len(res.Items) != 0 {
		t.Fatalf("res = %+v err = %v, want empty success", res, err)
	}
	if _, err := s.List(context.Background(), catdom.Series, 2, 20); !perr.IsCode(err, perr.ErrorCodeOutOfRange) {
		t.Fatalf("page 2 err = %v, want out of range", err)
	}
}

func TestListUsesCache(t *testing.T) {
	r := &memRepo{rows: map[catdom.EntityType][]repo.Row{catdom.Characters: comicRows(5)}}
	c := &mapCache{data: map[string][]byte{}}
	s := newSvc(r, nil, c)
	for i := 0; i < 3; i++ {
		res, err := s.List(context.Background(), catdom.Characters, 1, 0)
		if err != nil || len(res.Items) != 5 {
			t.Fatalf("List #%d = %+v, %v", i, res, err)
		}
	}
	if r.counts != 1 {
		t.Fatalf("repo counts = %d, want 1", r.counts)
	}
	if _, ok := c.data["catalog:list:characters:1:20"]; !ok {
		t.Fatalf("cache keys = %v", c.data)
	}
}

type fakeIndex struct {
	index string
	body  map[string]any
	hits  []ssDoc
	err   error
	calls int
}

type ssDoc struct {
	MarvelID int64  `json:"marvelId"`
	Title    string `json:"title,omitempty"`
	Name     string `json:"name,omitempty"`
	Date     string `json:"date,omitempty"`
}

func (f *fakeIndex) Search(_ context.Context, index string, body any) (search.Result, error) {
	f.calls++
	f.index, f.body = index, body.(map[string]any)
	if f.err != nil {
		return search.Result{}, f.err
	}
	res := search.Result{Total: len(f.hits)}
	for _, d := range f.hits {
		b, _ := json.Marshal(d)
		res.Hits = append(res.Hits, search.Hit{ID: fmt.Sprint(d.MarvelID), Source: b})
	}
	res.Hits = append(res.Hits, search.Hit{ID: "bad", Source: json.RawMessage(`[`)})
	return res, nil
}

func TestSearchFiltersSortsAndPages(t *testing.T) {
	idx := &fakeIndex{hits: []ssDoc{
		{MarvelID: 3, Title: "Spider-Man 10", Date: "2020-01-02"},
		{MarvelID: 1, Title: "Spider-Man 2"},
		{MarvelID: 2, Title: "Spider-Man 2 Variant"},
		{MarvelID: 4, Title: "spider-man 1"},
	}}
	s := newSvc(&memRepo{}, idx, nil)

	res, err := s.Search(context.Background(), catdom.Comics, "  SPIDER ", 1, 2)
	if err != nil {
		t.Fatalf("Search err = %v", err)
	}
	if idx.index != "comics" || idx.body["size"] != 500 {
		t.Fatalf("index = %q size = %v, want comics 500", idx.index, idx.body["size"])
	}
	if res.TotalItems != 3 || res.Paging.TotalPages != 2 || len(res.Items) != 2 {
		t.Fatalf("res = %+v", res)
	}
	if res.Items[0].Title != "spider-man 1" || res.Items[1].Title != "Spider-Man 2" {
		t.Fatalf("items = %+v", res.Items)
	}

	res, err = s.Search(context.Background(), catdom.Comics, "spider", 2, 2)
	if err != nil || len(res.Items) != 1 || res.Items[0].Date == nil {
		t.Fatalf("page 2 = %+v err = %v", res, err)
	}
	if _, err := s.Search(context.Background(), catdom.Comics, "spider", 3, 2); !perr.IsCode(err, perr.ErrorCodeOutOfRange) {
		t.Fatalf("page 3 err = %v, want out of range", err)
	}
}

func TestSearchCharacterCap(t *testing.T) {
	idx := &fakeIndex{hits: []ssDoc{{MarvelID: 1, Name: "Hulk"}}}
	res, err := newSvc(&memRepo{}, idx, nil).Search(context.Background(), catdom.Characters, "hulk", 1, 20)
	if err != nil || len(res.Items) != 1 || res.Items[0].Title != "Hulk" {
		t.Fatalf("res = %+v err = %v", res, err)
	}
	if idx.body["size"] != 100 || idx.index != "characters" {
		t.Fatalf("index = %q size = %v, want characters 100", idx.index, idx.body["size"])
	}
}

func TestSearchEdgeCases(t *testing.T) {
	idx := &fakeIndex{}
	s := newSvc(&memRepo{}, idx, nil)

	res, err := s.Search(context.Background(), catdom.Series, "   ", 1, 20)
	if err != nil || res.TotalItems != 0 || res.Items == nil || idx.calls != 0 {
		t.Fatalf("empty query res = %+v err = %v calls = %d", res, err, idx.calls)
	}
	if _, err := s.Search(context.Background(), catdom.Creators, "lee", 1, 20); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("creators err = %v, want invalid argument", err)
	}
	if _, err := newSvc(&memRepo{}, nil, nil).Search(context.Background(), catdom.Series, "x", 1, 20); !perr.IsCode(err, perr.ErrorCodeIndexUnavailable) {
		t.Fatalf("nil index err = %v, want index unavailable", err)
	}
	idx.err = perr.IndexUnavailablef(nil, "down")
	if _, err := s.Search(context.Background(), catdom.Series, "x", 1, 20); !perr.IsCode(err, perr.ErrorCodeIndexUnavailable) {
		t.Fatalf("index err = %v, want index unavailable", err)
	}
}

func TestTopRecentComics(t *testing.T) {
	r := &memRepo{}
	s := newSvc(r, nil, nil)
	s.now = func() time.Time { return time.Date(2026, 10, 17, 22, 30, 0, 0, time.UTC) }

	got, err := s.TopRecentComics(context.Background(), 0)
	if err != nil || len(got) != 1 {
		t.Fatalf("got = %v err = %v", got, err)
	}
	if !r.recentToday.Equal(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)) || r.recentLimit != 30 {
		t.Fatalf("today = %v limit = %d", r.recentToday, r.recentLimit)
	}
	if fmt.Sprint(r.recentWords) != fmt.Sprint(exclude.Recent()) {
		t.Fatalf("words = %v", r.recentWords)
	}
}

func TestComicDetails(t *testing.T) {
	serie, title := int64(1945), "Avengers (1963 - 1996)"
	r := &memRepo{
		comic: repo.ComicRow{ID: 9, ExternalID: 82967, Title: "Avengers (1963) #1", VariantIDs: []int64{5, 6},
			SerieExternalID: &serie, SerieTitle: &title},
		chars:   []repo.Row{{ExternalID: 2, Label: "Thor"}, {ExternalID: 1, Label: "Iron Man"}},
		credits: []repo.CreditRow{{ExternalID: 30, FullName: "Stan Lee", Role: "writer"}},
		byIDs:   []repo.Row{{ExternalID: 5, Label: "Avengers (1963) #1 Variant", Thumbnail: "v.jpg"}},
	}
	d, err := newSvc(r, nil, nil).ComicDetails(context.Background(), 82967)
	if err != nil {
		t.Fatalf("ComicDetails err = %v", err)
	}
	if d.Serie == nil || d.Serie.ExternalID != 1945 || d.Serie.Title != title || d.Serie.Thumbnail != "" {
		t.Fatalf("serie = %+v", d.Serie)
	}
	if len(d.Characters) != 2 || d.Characters[0].Title != "Iron Man" {
		t.Fatalf("characters = %+v", d.Characters)
	}
	if len(d.Creators) != 1 || d.Creators[0].Role != "writer" || len(d.Variants) != 1 {
		t.Fatalf("creators = %+v variants = %+v", d.Creators, d.Variants)
	}
	if fmt.Sprint(r.askedID) != "[5 6]" {
		t.Fatalf("variant ids asked = %v", r.askedID)
	}

	if _, err := newSvc(r, nil, nil).ComicDetails(context.Background(), 1); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing comic err = %v, want not found", err)
	}
}
