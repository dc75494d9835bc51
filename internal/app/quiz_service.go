package app

import (
	"context"
	"time"

	"songquiz-service/internal/domain"
	"songquiz-service/internal/engine"
)

// CatalogRepository loads the song catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
}

// SessionRepository abstracts how challenge sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Save(ctx context.Context, session domain.ChallengeSession) error
	Get(ctx context.Context, id string) (domain.ChallengeSession, error)
	Delete(ctx context.Context, id string) error
}

// RankingRepository persists leaderboard rows.
type RankingRepository interface {
	Create(ctx context.Context, submission domain.ScoreSubmission) (domain.RankingEntry, error)
	// List returns at most limit entries ordered by score desc, then creation time asc.
	List(ctx context.Context, limit int) ([]domain.RankingEntry, error)
}

// QuizService serves free-mode quizzes.
type QuizService struct {
	catalogs  CatalogRepository
	generator *engine.Generator
}

// NewQuizService builds the free-mode service. rnd must be safe for concurrent use.
func NewQuizService(catalogs CatalogRepository, rnd engine.Random) *QuizService {
	return &QuizService{catalogs: catalogs, generator: engine.NewGenerator(rnd)}
}

// Catalog returns the catalog for album selection.
func (s *QuizService) Catalog(ctx context.Context) (domain.Catalog, error) {
	return s.catalogs.GetCatalog(ctx)
}

// Generate builds a question set. An empty albumIDs draws from the whole catalog.
func (s *QuizService) Generate(ctx context.Context, albumIDs []string, count int) ([]domain.QuizQuestion, error) {
	catalog, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return generate(s.generator, catalog, albumIDs, count)
}

func generate(gen *engine.Generator, catalog domain.Catalog, albumIDs []string, count int) ([]domain.QuizQuestion, error) {
	if len(albumIDs) == 0 {
		return gen.FromAll(catalog, count)
	}
	return gen.FromAlbums(catalog, albumIDs, count)
}

func defaultNow() time.Time {
	return time.Now().UTC()
}
