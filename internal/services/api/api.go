// Package api provides the HTTP API for the application
package api

import (
	"context"
	"time"

	"comicvault/internal/platform/config"
	"comicvault/internal/platform/logger"
	phttp "comicvault/internal/platform/net/http"
	"comicvault/internal/platform/store"

	"comicvault/internal/modkit"
	"comicvault/internal/modkit/httpkit"
	"comicvault/internal/modkit/module"
	"comicvault/internal/modkit/swaggerkit"

	catalogdom "comicvault/internal/services/api/catalog/domain"
	catalogmod "comicvault/internal/services/api/catalog/module"
	metamod "comicvault/internal/services/api/meta/module"
	catdom "comicvault/internal/services/catalog/domain"
)

// Options are the API options
type Options struct {
	// Config is the root config; modules pick their own prefixes
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// Stack overrides the middleware defaults; CacheMaxAge falls back to
	// the catalog list TTL when zero
	Stack httpkit.StackOptions
}

// StackFrom reads CORE_API_* middleware knobs
func StackFrom(root config.Conf) httpkit.StackOptions {
	c := root.Prefix("CORE_API_")
	return httpkit.StackOptions{
		AllowedOrigins: c.MayCSV("CORS_ORIGINS", []string{"*"}),
		Timeout:        c.MayDuration("TIMEOUT", 30*time.Second),
		CacheMaxAge:    c.MayDuration("CACHE_MAX_AGE", 0),
		MaxInFlight:    c.MayInt("MAX_IN_FLIGHT", 0),
	}
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	log := logger.Get()
	if opt.Logger != nil {
		log = opt.Logger
	}

	// shared deps for modules
	deps := modkit.FromStore(*log, opt.Config, opt.Store)

	catalog := catalogmod.New(deps)
	mods := []module.Module{
		metamod.New(deps),
		catalog,
	}

	stack := opt.Stack
	if stack.CacheMaxAge == 0 {
		if c, ok := catalog.(interface{ CacheTTL() time.Duration }); ok {
			stack.CacheMaxAge = c.CacheTTL()
		}
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(stack), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	if opt.Config.Prefix("CORE_API_").MayBool("WARM_CACHE", false) {
		go Warm(context.Background(), module.MustPortsOf[catalogdom.ServicePort](catalog))
	}

	log.Info().Int("modules", len(mods)).Bool("swagger", opt.EnableSwagger).Msg("api mounted")
}

// Warm fills the query cache with the pages most clients hit first: page 1
// of every listing and the recent comics strip. Failures are only logged
func Warm(ctx context.Context, svc catalogdom.ServicePort) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	log := logger.C(ctx)

	for _, t := range catdom.AllTypes {
		if _, err := svc.List(ctx, t, 1, 0); err != nil {
			log.Warn().Err(err).Str("entity", t.String()).Msg("api: cache warm failed")
		}
	}
	if _, err := svc.TopRecentComics(ctx, 0); err != nil {
		log.Warn().Err(err).Msg("api: cache warm failed for recent comics")
	}
}
