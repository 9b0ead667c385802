// @title         comicvault API
// @version       1.0
// @description   Read only endpoints over the mirrored comics catalog

package main

import (
	"context"
	"os/signal"
	"syscall"

	"comicvault/internal/modkit/repokit"
	"comicvault/internal/platform/config"
	"comicvault/internal/platform/logger"
	"comicvault/internal/platform/metrics"
	phttp "comicvault/internal/platform/net/http"
	"comicvault/internal/platform/store"

	"comicvault/internal/services/api"
)

func main() {
	config.LoadDotEnv()
	logger.Init(logger.FromEnv())

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres is required; redis and elasticsearch are optional
	stCfg := store.ConfigFromEnv(root, "comicvault-api")
	if !stCfg.PG.Enabled {
		l.Fatal().Msg("SERVICE_PGSQL_DBURL is required")
	}
	st, err := store.Open(ctx, stCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// postgres must answer before serving; the rest may degrade unless strict
	repokit.MustPing(ctx, "pg", st.Pingers()["pg"])
	if apiCfg.MayBool("STRICT_DEPS", false) {
		repokit.MustGuard(ctx, st)
	}

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)
	r := srv.Router()
	r.Handle("/metrics", metrics.Handler())

	api.Mount(r, api.Options{
		Config:         root,
		Store:          st,
		Logger:         l,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		Stack:          api.StackFrom(root),
	})

	// returns once ctx is canceled and in-flight requests drained
	// (CORE_API_SHUTDOWN_GRACE, default 15s)
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("bye")
}
