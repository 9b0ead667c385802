// Package module wires the catalog query API into the API using modkit
package module

import (
	"net/http"
	"time"

	modkit "comicvault/internal/modkit"
	"comicvault/internal/modkit/httpkit"
	"comicvault/internal/platform/config"
	pstrings "comicvault/internal/platform/strings"
	"comicvault/internal/services/api/catalog/domain"
	cathttp "comicvault/internal/services/api/catalog/http"
	catrepo "comicvault/internal/services/api/catalog/repo"
	catsvc "comicvault/internal/services/api/catalog/service"
	catdom "comicvault/internal/services/catalog/domain"
)

// Ports is what the catalog module exposes to other modules
type Ports struct {
	Catalog domain.ServicePort
}

// Module implements the catalog module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *catsvc.Svc
}

// ConfigFrom reads CORE_API_* and CORE_SEARCH_* overrides over the defaults
func ConfigFrom(root config.Conf) catsvc.Config {
	def := catsvc.DefaultConfig()
	api := root.Prefix("CORE_API_")
	caps := root.Prefix("CORE_SEARCH_CAP_")
	return catsvc.Config{
		PerPage:     api.MayInt("ITEMS_PER_PAGE", def.PerPage),
		Window:      api.MayInt("PAGE_WINDOW", def.Window),
		ListTTL:     api.MayDuration("CACHE_TTL_LIST", def.ListTTL),
		SearchTTL:   api.MayDuration("CACHE_TTL_SEARCH", def.SearchTTL),
		RecentLimit: api.MayInt("RECENT_LIMIT", def.RecentLimit),
		Caps: map[catdom.EntityType]int{
			catdom.Characters: caps.MayInt("CHARACTERS", def.Caps[catdom.Characters]),
			catdom.Comics:     caps.MayInt("COMICS", def.Caps[catdom.Comics]),
			catdom.Series:     caps.MayInt("SERIES", def.Caps[catdom.Series]),
		},
	}
}

// New constructs the catalog module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("catalog"), modkit.WithPrefix("/catalog")}, opts...)...)

	// a nil *search.Client must stay a nil interface
	var idx catsvc.Searcher
	if deps.Search != nil {
		idx = deps.Search
	}
	svc := catsvc.New(deps.PG, catrepo.NewPG(), idx, deps.Cache, ConfigFrom(deps.Cfg))

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		cathttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return pstrings.Or(m.name, "catalog") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return pstrings.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return Ports{Catalog: m.svc} }

// CacheTTL is how long list pages stay fresh; the API uses it for Cache-Control
func (m *Module) CacheTTL() time.Duration { return m.svc.Cfg.ListTTL }
