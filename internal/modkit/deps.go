// Package modkit provides module wiring and core deps
package modkit

import (
	"comicvault/internal/modkit/repokit"
	"comicvault/internal/platform/cache"
	"comicvault/internal/platform/config"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/search"
	"comicvault/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse

	// Cache is never nil after FromStore; modules may still see nil in tests
	Cache cache.Cache

	// Search is nil when the projection is disabled
	Search *search.Client

	// Store exposes readiness for meta endpoints
	Store *store.Store
}

// FromStore fills the backend seams from an opened store
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg, Store: st, Cache: cache.Noop{}}
	if st == nil {
		return d
	}
	d.PG = st.PG
	d.CH = st.CH
	d.Search = st.Search
	if st.Cache != nil {
		d.Cache = st.Cache
	}
	return d
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }
