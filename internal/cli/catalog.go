package cli

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"songquiz-service/internal/config"
	"songquiz-service/internal/infra/memory"
	"songquiz-service/internal/infra/postgres"
	"songquiz-service/internal/infra/youtube"
)

// NewCatalogCmd groups catalog maintenance commands.
func NewCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the song catalog",
	}
	cmd.AddCommand(newCatalogImportCmd(configPath))
	cmd.AddCommand(newCatalogEnrichCmd())
	return cmd
}

func newCatalogImportCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a songs.json document into postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			catalog, err := memory.ReadCatalogFile(file)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}

			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			if err := postgres.NewCatalogStore(pool).SaveCatalog(cmd.Context(), catalog); err != nil {
				return err
			}
			log.Printf("imported %d tracks from %s", catalog.TrackCount(), file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "data/songs.json", "catalog document to import")
	return cmd
}

func newCatalogEnrichCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill missing track durations from YouTube metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := memory.ReadCatalogFile(in)
			if err != nil {
				return err
			}
			enriched, report, err := youtube.NewEnricher(youtube.NewClient()).Enrich(cmd.Context(), catalog)
			if err != nil {
				return err
			}
			if out == "" {
				out = in
			}
			if err := memory.WriteCatalogFile(out, enriched); err != nil {
				return err
			}
			log.Printf("enriched %s: %d updated, %d skipped, %d failed", out, report.Updated, report.Skipped, report.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "file", "data/songs.json", "catalog document to read")
	cmd.Flags().StringVar(&out, "out", "", "where to write the result (default: overwrite --file)")
	return cmd
}
