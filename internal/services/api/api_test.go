package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"comicvault/internal/modkit/module"
	"comicvault/internal/platform/config"
	phttp "comicvault/internal/platform/net/http"
	"comicvault/internal/platform/store"
	catalogdom "comicvault/internal/services/api/catalog/domain"
	catdom "comicvault/internal/services/catalog/domain"

	"github.com/go-chi/chi/v5"
)

type nopTx struct{ store.TxRunner }

func TestMountServesModules(t *testing.T) {
	t.Cleanup(module.Reset)

	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), Options{
		Config:        config.New(),
		Store:         &store.Store{PG: nopTx{}},
		EnableSwagger: true,
	})

	cases := []struct {
		path   string
		status int
	}{
		{"/api/v1/meta/health", http.StatusOK},
		{"/api/v1/meta/ready", http.StatusOK},
		{"/api/v1/catalog/comics/search?q=hulk", http.StatusServiceUnavailable},
		{"/api/v1/catalog/widgets", http.StatusNotFound},
		{"/api/docs/doc.json", http.StatusOK},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rr.Code != tc.status {
			t.Fatalf("%s status = %d, want %d (%s)", tc.path, rr.Code, tc.status, rr.Body.String())
		}
	}

	if _, ok := module.PortsAs[any]("catalog"); !ok {
		t.Fatalf("catalog ports not registered")
	}
}

func TestStackFromDefaults(t *testing.T) {
	s := StackFrom(config.New())
	if len(s.AllowedOrigins) != 1 || s.AllowedOrigins[0] != "*" || s.MaxInFlight != 0 {
		t.Fatalf("stack = %+v", s)
	}
}

type warmSvc struct {
	catalogdom.ServicePort
	listed []catdom.EntityType
	recent int
}

func (w *warmSvc) List(_ context.Context, t catdom.EntityType, page, perPage int) (catalogdom.Result, error) {
	w.listed = append(w.listed, t)
	if t == catdom.Creators {
		return catalogdom.Result{}, errors.New("boom")
	}
	return catalogdom.Result{}, nil
}

func (w *warmSvc) TopRecentComics(context.Context, int) ([]catalogdom.Item, error) {
	w.recent++
	return nil, nil
}

func TestWarmHitsEveryListingAndRecent(t *testing.T) {
	w := &warmSvc{}
	Warm(context.Background(), w)
	if len(w.listed) != len(catdom.AllTypes) || w.recent != 1 {
		t.Fatalf("listed = %v recent = %d", w.listed, w.recent)
	}
}
