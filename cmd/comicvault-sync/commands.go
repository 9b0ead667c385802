package main

import (
	"encoding/json"
	"time"

	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/store/schema"
	catdom "comicvault/internal/services/catalog/domain"
	impdom "comicvault/internal/services/importer/domain"
	linkdom "comicvault/internal/services/linker/domain"
	"comicvault/internal/services/pipeline"
	syncdom "comicvault/internal/services/searchsync/domain"

	"github.com/spf13/cobra"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Apply the catalog DDL, the run ledger table and the search indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := schema.Apply(ctx, a.deps.PG); err != nil {
				return err
			}
			a.log.Info().Int("statements", len(schema.Statements())).Msg("schema applied")

			if a.deps.CH != nil {
				if err := a.ledger().EnsureTable(ctx); err != nil {
					return err
				}
			}

			search, err := a.searchSync()
			if err != nil || search == nil {
				return err
			}
			for _, t := range catdom.Searchable {
				created, err := search.EnsureIndex(ctx, t)
				if err != nil {
					return err
				}
				a.log.Info().Str("entity", t.String()).Bool("created", created).Msg("search index ready")
			}
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var since string
	cmd := &cobra.Command{
		Use:   "import [type...]",
		Short: "Import characters, series, creators and comics from the upstream catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := a.types(args)
			if err != nil {
				return err
			}
			ms, err := parseSince(since, time.Now())
			if err != nil {
				return err
			}
			reps, err := a.importer().ImportAll(cmd.Context(), types, impdom.ImportOptions{ModifiedSince: ms})
			for _, t := range types {
				if r, ok := reps[t]; ok {
					logImport(a, r)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only records modified since a date (2006-01-02) or a duration ago (72h)")
	return cmd
}

func newLinkCmd(a *app) *cobra.Command {
	var pass string
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link comics to series and characters to comics and series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch linkdom.Pass(pass) {
			case "", linkdom.PassComicSeries, linkdom.PassComicCharacters, linkdom.PassSerieCharacters:
			default:
				return perr.WithField(perr.InvalidArgf("unknown pass %q", pass), "pass")
			}

			ctx := cmd.Context()
			l := a.linker()

			var (
				reps []linkdom.Report
				err  error
			)
			switch linkdom.Pass(pass) {
			case "":
				reps, err = l.Run(ctx)
			case linkdom.PassComicSeries:
				reps, err = one(l.LinkComicSeries(ctx))
			case linkdom.PassComicCharacters:
				reps, err = one(l.LinkComicCharacters(ctx))
			case linkdom.PassSerieCharacters:
				reps, err = one(l.LinkSerieCharacters(ctx))
			}
			for _, r := range reps {
				logLink(a, r)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&pass, "pass", "", "run a single pass: comic_series, comic_characters or serie_characters")
	return cmd
}

func newSlugsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "slugs",
		Short: "Fill missing comic slugs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.linker().BackfillSlugs(cmd.Context())
			logLink(a, r)
			return err
		},
	}
}

func newReindexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex [type...]",
		Short: "Rebuild the search projection for characters, comics and series",
		RunE: func(cmd *cobra.Command, args []string) error {
			types := catdom.Searchable
			if len(args) > 0 {
				parsed, err := catdom.ParseTypes(args)
				if err != nil {
					return err
				}
				types = parsed
			}
			search, err := a.searchSync()
			if err != nil {
				return err
			}
			if search == nil {
				return perr.IndexUnavailablef(nil, "SERVICE_ELASTIC_URLS is not set")
			}
			reps, err := search.SyncAll(cmd.Context(), types)
			for _, r := range reps {
				logReindex(a, r)
			}
			return err
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var (
		since     string
		noLink    bool
		noReindex bool
	)
	cmd := &cobra.Command{
		Use:   "run [type...]",
		Short: "Import, link and reindex in one recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := a.types(args)
			if err != nil {
				return err
			}
			ms, err := parseSince(since, time.Now())
			if err != nil {
				return err
			}
			p, err := a.pipeline()
			if err != nil {
				return err
			}
			_, err = p.Run(cmd.Context(), pipeline.Plan{
				Types:         types,
				ModifiedSince: ms,
				Link:          !noLink,
				Reindex:       !noReindex,
			})
			return err
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only records modified since a date (2006-01-02) or a duration ago (72h)")
	cmd.Flags().BoolVar(&noLink, "no-link", false, "skip the linker")
	cmd.Flags().BoolVar(&noReindex, "no-reindex", false, "skip the search rebuild")
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Print recent run ledger records as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.deps.CH == nil {
				return perr.Unavailablef("SERVICE_CLICKHOUSE_DBURL is not set")
			}
			recs, err := a.ledger().Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range recs {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records")
	return cmd
}

// types resolves positional args, then CORE_IMPORT_TYPES, then every type
func (a *app) types(args []string) ([]catdom.EntityType, error) {
	if len(args) == 0 {
		args = a.importTypes()
	}
	if len(args) == 0 {
		return catdom.AllTypes, nil
	}
	return catdom.ParseTypes(args)
}

func one(r linkdom.Report, err error) ([]linkdom.Report, error) {
	return []linkdom.Report{r}, err
}

func logImport(a *app, r impdom.Report) {
	ev := a.log.Info()
	if r.Err != nil {
		ev = a.log.Error().Err(r.Err)
	}
	ev.Str("entity", r.Entity.String()).
		Int("pages", r.Pages).Int("fetched", r.Fetched).Int("inserted", r.Inserted).
		Int("skipped", r.Skipped).Int("dropped", r.Dropped).Dur("took", r.Duration).
		Msg("import finished")
}

func logLink(a *app, r linkdom.Report) {
	ev := a.log.Info()
	if r.Err != nil {
		ev = a.log.Error().Err(r.Err)
	}
	ev.Str("pass", string(r.Pass)).Bool("locked", r.Locked).
		Int("roots", r.Roots).Int("linked", r.Linked).Int("placeholders", r.Placeholders).
		Int("skipped", r.Skipped).Int("unresolved", r.Unresolved).Dur("took", r.Duration).
		Msg("link finished")
}

func logReindex(a *app, r syncdom.Report) {
	ev := a.log.Info()
	if r.Err != nil {
		ev = a.log.Error().Err(r.Err)
	}
	ev.Str("entity", r.Entity.String()).Bool("locked", r.Locked).Bool("created", r.Created).
		Int("docs", r.Docs).Int("indexed", r.Indexed).Int("failed", r.Failed).Dur("took", r.Duration).
		Msg("reindex finished")
}
