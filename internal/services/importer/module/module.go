// Package module wires the importer
package module

import (
	"comicvault/internal/adapters/marvel"
	"comicvault/internal/modkit"
	"comicvault/internal/modkit/repokit"
	"comicvault/internal/services/importer/domain"
	"comicvault/internal/services/importer/ingest"
	"comicvault/internal/services/importer/repo"
	"comicvault/internal/services/importer/service"
)

// Ports defines the importer module ports
type Ports struct {
	Importer domain.ImporterPort
}

// Module implements the importer module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New builds the importer from deps.Cfg. It mounts no routes
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)
	return NewWithFetcher(deps, opts, marvel.NewClient(opts.Marvel))
}

// NewWithFetcher builds the importer over an explicit upstream
func NewWithFetcher(deps modkit.Deps, opts Options, f domain.Fetcher) *Module {
	db := deps.PG
	if opts.StatementTimeout > 0 && db != nil {
		db = repokit.WithBeginHooks(db, repokit.StatementTimeout(opts.StatementTimeout))
	}
	svc := service.New(
		db, repo.NewPG(), f, ingest.NewNormalizer(),
		service.Config{
			PageSize:    opts.PageSize,
			Delay:       opts.Delay,
			PageTimeout: opts.PageTimeout,
			Concurrent:  opts.Concurrent,
			MaxRetries:  opts.MaxRetries,
			RetryBase:   opts.RetryBase,
		},
	)
	return &Module{deps: deps, opts: opts, ports: Ports{Importer: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "importer" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Importer returns the typed port
func (m *Module) Importer() domain.ImporterPort { return m.ports.Importer }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }
