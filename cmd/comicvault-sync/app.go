package main

import (
	"context"
	"time"

	"comicvault/internal/modkit"
	"comicvault/internal/modkit/module"
	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/config"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/store"

	"comicvault/internal/services/guardrails"
	impdom "comicvault/internal/services/importer/domain"
	importermod "comicvault/internal/services/importer/module"
	linkdom "comicvault/internal/services/linker/domain"
	linkermod "comicvault/internal/services/linker/module"
	"comicvault/internal/services/pipeline"
	"comicvault/internal/services/runlog"
	syncdom "comicvault/internal/services/searchsync/domain"
	searchsyncmod "comicvault/internal/services/searchsync/module"
)

// app holds what every subcommand shares; modules are built on first use
// so that commands which never talk upstream do not need the api keys
type app struct {
	root  config.Conf
	log   *logger.Logger
	st    *store.Store
	deps  modkit.Deps
	locks *guardrails.Locks

	imp    impdom.ImporterPort
	link   linkdom.LinkerPort
	search syncdom.SyncPort
}

func (a *app) open(ctx context.Context) error {
	a.log = logger.Named("sync")

	cfg := store.ConfigFromEnv(a.root, "comicvault-sync")
	if !cfg.PG.Enabled {
		return perr.Unavailablef("SERVICE_PGSQL_DBURL is required")
	}
	st, err := store.Open(ctx, cfg, store.WithLogger(*a.log))
	if err != nil {
		return err
	}
	a.st = st
	a.deps = modkit.FromStore(*a.log, a.root, st)

	ttl := a.root.Prefix("CORE_LINK_").MayDuration("LEASE_TTL", 30*time.Minute)
	a.locks = guardrails.NewLocks(a.deps.PG, guardrails.DefaultHolder(), ttl)
	return nil
}

func (a *app) close() {
	if a.st == nil {
		return
	}
	if err := a.st.Close(context.Background()); err != nil {
		a.log.Error().Err(err).Msg("failed to close store")
	}
}

func (a *app) importer() impdom.ImporterPort {
	if a.imp == nil {
		m := importermod.New(a.deps)
		module.Register(m.Name(), m.Ports())
		a.imp = m.Importer()
	}
	return a.imp
}

// importTypes is CORE_IMPORT_TYPES; empty means every type
func (a *app) importTypes() []string {
	return a.root.Prefix("CORE_IMPORT_").MayCSV("TYPES", nil)
}

func (a *app) linker() linkdom.LinkerPort {
	if a.link == nil {
		m := linkermod.New(a.deps, a.locks)
		module.Register(m.Name(), m.Ports())
		a.link = m.Linker()
	}
	return a.link
}

// searchSync is nil without an error when elasticsearch is not configured
func (a *app) searchSync() (syncdom.SyncPort, error) {
	if a.search != nil {
		return a.search, nil
	}
	if a.deps.Search == nil {
		return nil, nil
	}
	m, err := searchsyncmod.New(a.deps, a.locks)
	if err != nil {
		return nil, err
	}
	module.Register(m.Name(), m.Ports())
	a.search = m.Sync()
	return a.search, nil
}

func (a *app) ledger() *runlog.Ledger { return runlog.New(a.deps.CH) }

func (a *app) pipeline() (*pipeline.Service, error) {
	search, err := a.searchSync()
	if err != nil {
		return nil, err
	}
	return pipeline.New(a.importer(), a.linker(), search, a.ledger()), nil
}
