package main

import (
	"context"
	"time"

	"comicvault/internal/platform/logger"
	"comicvault/internal/services/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newScheduleCmd(a *app) *cobra.Command {
	var (
		spec     string
		lookback time.Duration
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the full pipeline on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if spec == "" {
				spec = a.root.Prefix("CORE_SCHEDULE_").MayString("CRON", "0 3 * * *")
			}
			types, err := a.types(nil)
			if err != nil {
				return err
			}
			p, err := a.pipeline()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := newScheduler(ctx, spec, func(ctx context.Context) {
				plan := pipeline.Plan{Types: types, Link: true, Reindex: true}
				if lookback > 0 {
					since := time.Now().Add(-lookback)
					plan.ModifiedSince = &since
				}
				_, _ = p.Run(ctx, plan)
			})
			if err != nil {
				return err
			}

			a.log.Info().Str("cron", spec).Time("next", c.Entries()[0].Schedule.Next(time.Now())).Msg("scheduler started")
			c.Start()
			<-ctx.Done()
			<-c.Stop().Done()
			a.log.Info().Msg("scheduler stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "cron expression (default CORE_SCHEDULE_CRON or 0 3 * * *)")
	cmd.Flags().DurationVar(&lookback, "lookback", 0, "import only records modified within this window (0 imports everything)")
	return cmd
}

// newScheduler registers job under spec; a run still in progress makes the
// next tick a no-op
func newScheduler(ctx context.Context, spec string, job func(context.Context)) (*cron.Cron, error) {
	cl := cronLogger{log: logger.Named("cron")}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return nil, err
	}
	return c, nil
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, kv ...any) {
	l.log.Debug().Fields(kv).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error().Err(err).Fields(kv).Msg(msg)
}
