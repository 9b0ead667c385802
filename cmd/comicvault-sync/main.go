// Command comicvault-sync mirrors the upstream catalog into postgres, links
// relations and rebuilds the search projection
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"comicvault/internal/platform/config"
	"comicvault/internal/platform/logger"

	"github.com/spf13/cobra"
)

func main() {
	config.LoadDotEnv()
	logger.Init(logger.FromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("comicvault-sync failed")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{root: config.New()}

	root := &cobra.Command{
		Use:           "comicvault-sync",
		Short:         "Mirror, link and index the comics catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.close()
		},
	}

	root.AddCommand(
		newSchemaCmd(a),
		newImportCmd(a),
		newLinkCmd(a),
		newSlugsCmd(a),
		newReindexCmd(a),
		newRunCmd(a),
		newRunsCmd(a),
		newScheduleCmd(a),
	)
	return root
}
