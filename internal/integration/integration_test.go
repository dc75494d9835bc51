package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"songquiz-service/internal/app"
	"songquiz-service/internal/domain"
	"songquiz-service/internal/engine"
	"songquiz-service/internal/infra/postgres"
	infraredis "songquiz-service/internal/infra/redis"
)

func TestChallengeEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL := startPostgres(t, ctx)
	redisURL := startRedis(t, ctx)

	db := postgres.OpenBun(pgURL)
	defer db.Close()
	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected 2 migrations, got %v", applied)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := postgres.NewCatalogStore(pool)
	if _, err := store.LoadCatalog(ctx); !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected empty catalog table, got %v", err)
	}
	if err := store.SaveCatalog(ctx, sampleCatalog()); err != nil {
		t.Fatalf("save catalog: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	catalogs := infraredis.NewCatalogRepository(redisClient, store, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	rankings := app.NewRankingService(postgres.NewRankingRepository(db))
	service := app.NewChallengeService(catalogs, sessions, rankings, app.ChallengeOptions{
		QuestionCount: 2,
		Random:        engine.NewLockedRandom(engine.NewRandom(11)),
	})

	state, err := service.Start(ctx, []string{"al1"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for !state.Completed {
		outcome, err := service.Answer(ctx, state.SessionID, titles[state.Question.MediaURL], 2)
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
		if !outcome.Correct {
			t.Fatalf("expected correct answer for %s", state.Question.MediaURL)
		}
		state = outcome.State
	}

	result, err := service.Result(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if len(result.Scores) != 2 || result.TotalScore <= 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	if _, err := service.Register(ctx, state.SessionID, "alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := rankings.Submit(ctx, domain.ScoreSubmission{Username: "bob", Score: result.TotalScore + 1, Rank: domain.RankF}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	entries, err := rankings.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Username != "bob" || entries[1].Username != "alice" {
		t.Fatalf("unexpected leaderboard %+v", entries)
	}
	if len(entries[1].Details) != 2 || entries[1].Details[0].TrackName == "" {
		t.Fatalf("expected details to be stored as jsonb, got %+v", entries[1].Details)
	}
}

var titles = map[string]string{
	"https://youtu.be/aaaaaaaaaaa": "Harbor Lights",
	"https://youtu.be/bbbbbbbbbbb": "Paper Planes",
}

func sampleCatalog() domain.Catalog {
	duration := 180.0
	return domain.Catalog{Artists: []domain.Artist{{
		ID:   "ar1",
		Name: "Integration Band",
		Albums: []domain.Album{{
			ID:   "al1",
			Name: "Docks",
			Tracks: []domain.Track{
				{ID: "t1", Title: "Harbor Lights", MediaURL: "https://youtu.be/aaaaaaaaaaa", DurationSeconds: &duration},
				{ID: "t2", Title: "Paper Planes", MediaURL: "https://youtu.be/bbbbbbbbbbb"},
			},
		}},
	}}}
}

func startPostgres(t *testing.T, ctx context.Context) string {
	host, port := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")
	return fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port)
}

func startRedis(t *testing.T, ctx context.Context) string {
	host, port := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}, "6379/tcp")
	return fmt.Sprintf("redis://%s:%s", host, port)
}

// startContainer runs req until the test ends and returns its mapped address.
func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest, exposed string) (string, string) {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("%s host: %v", req.Image, err)
	}
	port, err := container.MappedPort(ctx, exposed)
	if err != nil {
		t.Fatalf("%s port: %v", req.Image, err)
	}
	return host, port.Port()
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
