package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"songquiz-service/internal/app"
	"songquiz-service/internal/config"
	"songquiz-service/internal/domain"
	"songquiz-service/internal/engine"
	"songquiz-service/internal/infra/memory"
	"songquiz-service/internal/infra/postgres"
	redisstore "songquiz-service/internal/infra/redis"
	"songquiz-service/internal/infra/sqlite"
)

const (
	rankingEngineMemory   = "memory"
	rankingEngineSQLite   = "sqlite"
	rankingEnginePostgres = "postgres"

	defaultSQLitePath = "data/rankings.db"
)

// backends holds the connections opened for a command.
type backends struct {
	pool    *pgxpool.Pool
	redis   *redis.Client
	closers []func() error
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
		b.closers = append(b.closers, func() error { pool.Close(); return nil })
	}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, b.redis.Close)
	}
	return b, nil
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Printf("close backend: %v", err)
		}
	}
}

// catalogLoader prefers postgres, then a songs.json file, then the built-in sample.
func (b *backends) catalogLoader(cfg config.Config) memory.CatalogLoader {
	switch {
	case b.pool != nil:
		return postgres.NewCatalogStore(b.pool)
	case cfg.Catalog.Path != "":
		return memory.NewFileCatalogLoader(cfg.Catalog.Path)
	default:
		log.Printf("no catalog source configured, serving the built-in sample")
		return memory.NewStaticCatalogLoader(sampleCatalog())
	}
}

func (b *backends) catalogRepository(cfg config.Config) app.CatalogRepository {
	loader := b.catalogLoader(cfg)
	ttl := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	if b.redis != nil {
		return redisstore.NewCatalogRepository(b.redis, loader, ttl)
	}
	return memory.NewCatalogRepository(loader, ttl)
}

func (b *backends) sessionRepository(cfg config.Config) app.SessionRepository {
	ttl := config.TTLDuration(cfg.Challenge.ResultTTL, 5*time.Minute)
	if b.redis != nil {
		return redisstore.NewSessionStore(b.redis, ttl)
	}
	return memory.NewSessionStore(ttl)
}

// rankingRepository picks the leaderboard store by engine name.
func (b *backends) rankingRepository(cfg config.Config) (app.RankingRepository, error) {
	name := cfg.Ranking.Engine
	if name == "" {
		name = rankingEngineMemory
		if cfg.Postgres.URL != "" {
			name = rankingEnginePostgres
		}
	}

	switch name {
	case rankingEngineMemory:
		return memory.NewRankingRepository(), nil
	case rankingEngineSQLite:
		path := cfg.Ranking.SQLitePath
		if path == "" {
			path = defaultSQLitePath
		}
		repo, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, repo.Close)
		return repo, nil
	case rankingEnginePostgres:
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("ranking engine postgres requires postgres.url")
		}
		db := postgres.OpenBun(cfg.Postgres.URL)
		b.closers = append(b.closers, db.Close)
		return postgres.NewRankingRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown ranking engine %q", name)
	}
}

// sharedRandom seeds one generator for the whole process.
func sharedRandom(seed uint64) engine.Random {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return engine.NewLockedRandom(engine.NewRandom(seed))
}

// sampleCatalog is a minimal catalog so the service can run without any store.
func sampleCatalog() domain.Catalog {
	duration := 213.0
	midpoint := 75.0
	return domain.Catalog{
		Artists: []domain.Artist{
			{
				ID:   "sample-artist",
				Name: "Sample Artist",
				Albums: []domain.Album{
					{
						ID:   "sample-album",
						Name: "Sample Album",
						Tracks: []domain.Track{
							{ID: "sample-1", Title: "First Light", MediaURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", DurationSeconds: &duration},
							{ID: "sample-2", Title: "Second Wind", MediaURL: "https://www.youtube.com/watch?v=9bZkp7q19f0", MidpointStartSeconds: &midpoint},
							{ID: "sample-3", Title: "Third Time", MediaURL: "https://www.youtube.com/watch?v=kJQP7kiw5Fk"},
						},
					},
				},
			},
		},
	}
}
