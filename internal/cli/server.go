package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"songquiz-service/internal/app"
	"songquiz-service/internal/config"
	"songquiz-service/internal/engine"
	transport "songquiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	handler, b, err := buildHandler(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: it would cut long-lived websocket streams
	}

	go func() {
		log.Printf("starting song quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildHandler wires stores, services and routes from config.
func buildHandler(ctx context.Context, cfg config.Config) (http.Handler, *backends, error) {
	strategy, err := engine.NewRankStrategy(cfg.Scoring.RankStrategy, cfg.Scoring.MaxScore)
	if err != nil {
		return nil, nil, err
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	rankingRepo, err := b.rankingRepository(cfg)
	if err != nil {
		b.Close()
		return nil, nil, err
	}

	questionCount := cfg.Challenge.QuestionCount
	if questionCount <= 0 {
		questionCount = engine.DefaultQuestionCount
	}

	catalogs := b.catalogRepository(cfg)
	rnd := sharedRandom(0)
	rankings := app.NewRankingService(rankingRepo)
	challenges := app.NewChallengeService(catalogs, b.sessionRepository(cfg), rankings, app.ChallengeOptions{
		QuestionCount: questionCount,
		RankStrategy:  strategy,
		Random:        rnd,
	})
	log.Printf("rank strategy %s, %d questions per challenge", strategy.Name(), questionCount)

	return transport.NewRouter(app.NewQuizService(catalogs, rnd), challenges, rankings), b, nil
}
