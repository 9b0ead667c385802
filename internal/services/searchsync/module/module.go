// Package module wires the search synchronizer
package module

import (
	"comicvault/internal/modkit"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/services/searchsync/domain"
	"comicvault/internal/services/searchsync/repo"
	"comicvault/internal/services/searchsync/service"
)

// Ports defines the searchsync module ports
type Ports struct {
	Sync domain.SyncPort
}

// Module implements the searchsync module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New builds the synchronizer; it needs both postgres and elasticsearch
func New(deps modkit.Deps, locks service.Locker) (*Module, error) {
	if deps.PG == nil {
		return nil, perr.Unavailablef("searchsync: postgres is not configured")
	}
	if deps.Search == nil {
		return nil, perr.Unavailablef("searchsync: elasticsearch is not configured")
	}
	batch := deps.Cfg.Prefix("CORE_SEARCH_").MayInt("BATCH", 50)
	svc := service.New(deps.PG, repo.NewPG(), deps.Search, locks, batch)
	return &Module{deps: deps, ports: Ports{Sync: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "searchsync" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Sync returns the typed port
func (m *Module) Sync() domain.SyncPort { return m.ports.Sync }
