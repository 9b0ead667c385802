package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"comicvault/internal/modkit/repokit"
	"comicvault/internal/platform/store"
	"comicvault/internal/services/guardrails"
	"comicvault/internal/services/linker/domain"
)

type fakeTx struct{ store.TxRunner }

func (fakeTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error { return fn(nil) }

type pair struct {
	kind       domain.RootKind
	root, char int64
}

// memRepo is an in-memory catalog with external id -> local id for characters
type memRepo struct {
	roots      map[domain.RootKind][]domain.Root
	characters map[int64]int64
	joins      map[pair]bool
	slugs      map[int64]string
	titles     map[int64]string
	linkErr    error
	nextID     int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		roots:      map[domain.RootKind][]domain.Root{},
		characters: map[int64]int64{},
		joins:      map[pair]bool{},
		slugs:      map[int64]string{},
		titles:     map[int64]string{},
		nextID:     1000,
	}
}

func (m *memRepo) LinkSeries(context.Context) (int, int, error) {
	if m.linkErr != nil {
		return 0, 0, m.linkErr
	}
	return 4, 1, nil
}

func (m *memRepo) Roots(_ context.Context, kind domain.RootKind, after int64, limit int) ([]domain.Root, error) {
	var out []domain.Root
	for _, r := range m.roots[kind] {
		if r.ID > after && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) EnsureCharacter(_ context.Context, ext int64) (int64, bool, error) {
	if id, ok := m.characters[ext]; ok {
		return id, false, nil
	}
	m.nextID++
	m.characters[ext] = m.nextID
	return m.nextID, true, nil
}

func (m *memRepo) LinkCharacter(_ context.Context, kind domain.RootKind, root, char int64) (bool, error) {
	p := pair{kind, root, char}
	if m.joins[p] {
		return false, nil
	}
	m.joins[p] = true
	return true, nil
}

func (m *memRepo) MissingSlugs(_ context.Context, after int64, limit int) ([]domain.SlugRow, error) {
	var ids []int64
	for id, slug := range m.slugs {
		if slug == "" && id > after {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []domain.SlugRow
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		out = append(out, domain.SlugRow{ID: id, Title: m.titles[id]})
	}
	return out, nil
}

func (m *memRepo) SetSlug(_ context.Context, id int64, slug string) error {
	m.slugs[id] = slug
	return nil
}

func refs(xs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(xs))
	for i, x := range xs {
		out[i] = json.RawMessage(x)
	}
	return out
}

func newService(m *memRepo, locks Locker) *Service {
	return New(fakeTx{}, repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return m }), locks, 2)
}

func TestLinkComicCharactersCreatesPlaceholdersOnce(t *testing.T) {
	m := newMemRepo()
	m.characters[1009610] = 1 // Spider-Man already imported
	m.roots[domain.RootComics] = []domain.Root{
		{ID: 1, Refs: refs("1009610", "1009351")},
		{ID: 2, Refs: refs("1009351", "0", `"abc"`, "-4")},
		{ID: 3, Refs: refs(`"1009368"`)},
	}
	s := newService(m, nil)

	rep, err := s.LinkComicCharacters(context.Background())
	if err != nil {
		t.Fatalf("LinkComicCharacters err = %v", err)
	}
	if rep.Roots != 3 || rep.Linked != 4 || rep.Placeholders != 2 || rep.Skipped != 3 {
		t.Fatalf("report = %+v", rep)
	}

	// idempotent second run
	rep, err = s.LinkComicCharacters(context.Background())
	if err != nil || rep.Linked != 0 || rep.Placeholders != 0 {
		t.Fatalf("second run = %+v, %v", rep, err)
	}
	if len(m.characters) != 3 {
		t.Fatalf("characters = %d, want 3", len(m.characters))
	}
}

func TestLinkSerieCharactersUsesSerieJoin(t *testing.T) {
	m := newMemRepo()
	m.roots[domain.RootSeries] = []domain.Root{{ID: 9, Refs: refs("5")}}
	rep, err := newService(m, nil).LinkSerieCharacters(context.Background())
	if err != nil || rep.Linked != 1 {
		t.Fatalf("report = %+v, %v", rep, err)
	}
	if !m.joins[pair{domain.RootSeries, 9, m.characters[5]}] {
		t.Fatalf("serie join missing: %v", m.joins)
	}
}

func TestBackfillSlugs(t *testing.T) {
	m := newMemRepo()
	m.slugs = map[int64]string{1: "", 2: "already", 3: "", 4: ""}
	m.titles = map[int64]string{1: "Hulk (2008) #1", 3: "Ça Va?", 4: ""}
	rep, err := newService(m, nil).BackfillSlugs(context.Background())
	if err != nil || rep.Linked != 3 {
		t.Fatalf("report = %+v, %v", rep, err)
	}
	if m.slugs[1] != "hulk-2008-1" || m.slugs[3] != "ca-va" || m.slugs[4] != "untitled" || m.slugs[2] != "already" {
		t.Fatalf("slugs = %v", m.slugs)
	}
}

type heldLocks struct{}

func (heldLocks) With(context.Context, string, func(context.Context) error) error {
	return guardrails.ErrLockHeld
}

func TestRunSkipsHeldLocksAndJoinsErrors(t *testing.T) {
	rep, err := newService(newMemRepo(), heldLocks{}).LinkComicSeries(context.Background())
	if err != nil || !rep.Locked {
		t.Fatalf("held lock: %+v, %v", rep, err)
	}

	m := newMemRepo()
	m.linkErr = errors.New("deadlock")
	reps, err := newService(m, nil).Run(context.Background())
	if err == nil || len(reps) != 4 {
		t.Fatalf("Run = %d reports, err %v", len(reps), err)
	}
	if reps[0].Err == nil || reps[1].Err != nil {
		t.Fatalf("pass errors = %v / %v", reps[0].Err, reps[1].Err)
	}
}

// recordingLocks notes the locks held while each body runs
type recordingLocks struct {
	held []string
	seen [][]string
	busy string
}

func (l *recordingLocks) With(ctx context.Context, name string, do func(context.Context) error) error {
	if name == l.busy {
		return guardrails.ErrLockHeld
	}
	l.held = append(l.held, name)
	defer func() { l.held = l.held[:len(l.held)-1] }()
	l.seen = append(l.seen, append([]string(nil), l.held...))
	return do(ctx)
}

func TestCharacterPassesHoldCharactersLock(t *testing.T) {
	cases := []struct {
		name string
		run  func(*Service, context.Context) (domain.Report, error)
		want []string
	}{
		{"comic characters", (*Service).LinkComicCharacters, []string{"comics", "characters"}},
		{"serie characters", (*Service).LinkSerieCharacters, []string{"series", "characters"}},
		{"comic series", (*Service).LinkComicSeries, []string{"comics"}},
	}
	for _, c := range cases {
		locks := &recordingLocks{}
		if _, err := c.run(newService(newMemRepo(), locks), context.Background()); err != nil {
			t.Fatalf("%s err = %v", c.name, err)
		}
		got := locks.seen[len(locks.seen)-1]
		if len(got) != len(c.want) {
			t.Fatalf("%s held %v, want %v", c.name, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%s held %v, want %v", c.name, got, c.want)
			}
		}
	}
}

func TestCharacterPassSkipsWhenCharactersLockHeld(t *testing.T) {
	m := newMemRepo()
	m.roots[domain.RootSeries] = []domain.Root{{ID: 9, Refs: refs("5")}}
	rep, err := newService(m, &recordingLocks{busy: "characters"}).LinkSerieCharacters(context.Background())
	if err != nil || !rep.Locked {
		t.Fatalf("report = %+v, %v; want locked", rep, err)
	}
	if len(m.characters) != 0 || len(m.joins) != 0 {
		t.Fatalf("wrote under a held lock: %v %v", m.characters, m.joins)
	}
}

func TestLinkComicSeriesReportsUnresolved(t *testing.T) {
	rep, err := newService(newMemRepo(), nil).LinkComicSeries(context.Background())
	if err != nil || rep.Linked != 4 || rep.Unresolved != 1 {
		t.Fatalf("report = %+v, %v", rep, err)
	}
}
