package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"songquiz-service/internal/app"
	"songquiz-service/internal/config"
	"songquiz-service/internal/engine"
)

// NewQuizCmd groups offline quiz tooling.
func NewQuizCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz tooling",
	}
	cmd.AddCommand(newQuizGenerateCmd(configPath))
	return cmd
}

func newQuizGenerateCmd(configPath *string) *cobra.Command {
	var (
		albums []string
		count  int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a free-mode question list as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			service := app.NewQuizService(b.catalogRepository(cfg), sharedRandom(seed))
			questions, err := service.Generate(cmd.Context(), albums, count)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(questions)
		},
	}
	cmd.Flags().StringSliceVar(&albums, "albums", nil, "album ids to draw from (default: whole catalog)")
	cmd.Flags().IntVar(&count, "count", engine.DefaultQuestionCount, "number of questions")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	return cmd
}

