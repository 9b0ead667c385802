// Package module wires the linker
package module

import (
	"comicvault/internal/modkit"
	"comicvault/internal/services/linker/domain"
	"comicvault/internal/services/linker/repo"
	"comicvault/internal/services/linker/service"
)

// Ports defines the linker module ports
type Ports struct {
	Linker domain.LinkerPort
}

// Module implements the linker module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New builds the linker; locks are shared with search sync so both never
// work on the same entity type at once
func New(deps modkit.Deps, locks service.Locker) *Module {
	batch := deps.Cfg.Prefix("CORE_LINK_").MayInt("BATCH", 200)
	svc := service.New(deps.PG, repo.NewPG(), locks, batch)
	return &Module{deps: deps, ports: Ports{Linker: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "linker" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Linker returns the typed port
func (m *Module) Linker() domain.LinkerPort { return m.ports.Linker }
