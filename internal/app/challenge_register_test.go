package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"songquiz-service/internal/app"
	"songquiz-service/internal/domain"
	"songquiz-service/internal/engine"
	"songquiz-service/internal/infra/memory"
)

// flakySessions fails the next failSaves saves.
type flakySessions struct {
	*memory.SessionStore
	failSaves int
}

func (f *flakySessions) Save(ctx context.Context, session domain.ChallengeSession) error {
	if f.failSaves > 0 {
		f.failSaves--
		return errors.New("store unavailable")
	}
	return f.SessionStore.Save(ctx, session)
}

// flakyRankings fails the next failCreates inserts.
type flakyRankings struct {
	*memory.RankingRepository
	failCreates int
}

func (f *flakyRankings) Create(ctx context.Context, sub domain.ScoreSubmission) (domain.RankingEntry, error) {
	if f.failCreates > 0 {
		f.failCreates--
		return domain.RankingEntry{}, errors.New("insert failed")
	}
	return f.RankingRepository.Create(ctx, sub)
}

func newRegisterFixture(t *testing.T, sessions app.SessionRepository, rankings app.RankingRepository) (*app.ChallengeService, string) {
	t.Helper()
	service := app.NewChallengeService(newCatalogRepo(sampleCatalog()), sessions, app.NewRankingService(rankings), app.ChallengeOptions{
		QuestionCount: 1,
		Random:        engine.NewLockedRandom(engine.NewRandom(9)),
	})
	ctx := context.Background()
	state, err := service.Start(ctx, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.Finish(ctx, state.SessionID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	return service, state.SessionID
}

func TestRegisterSaveFailureLeavesNoEntry(t *testing.T) {
	ctx := context.Background()
	sessions := &flakySessions{SessionStore: memory.NewSessionStore(5 * time.Minute)}
	rankings := memory.NewRankingRepository()
	service, id := newRegisterFixture(t, sessions, rankings)

	sessions.failSaves = 1
	if _, err := service.Register(ctx, id, "alice"); err == nil {
		t.Fatalf("expected register to fail when the session cannot be saved")
	}
	if entries, _ := rankings.List(ctx, 10); len(entries) != 0 {
		t.Fatalf("expected no leaderboard row after failed save, got %+v", entries)
	}

	if _, err := service.Register(ctx, id, "alice"); err != nil {
		t.Fatalf("retry register: %v", err)
	}
	if entries, _ := rankings.List(ctx, 10); len(entries) != 1 {
		t.Fatalf("expected exactly one leaderboard row after retry, got %d", len(entries))
	}
}

func TestRegisterSubmitFailureReleasesSession(t *testing.T) {
	ctx := context.Background()
	rankings := &flakyRankings{RankingRepository: memory.NewRankingRepository(), failCreates: 1}
	service, id := newRegisterFixture(t, memory.NewSessionStore(5*time.Minute), rankings)

	if _, err := service.Register(ctx, id, "bob"); err == nil {
		t.Fatalf("expected register to fail when the insert fails")
	}
	if result, err := service.Result(ctx, id); err != nil || result.Registered {
		t.Fatalf("expected session to stay unregistered, got %+v (%v)", result, err)
	}

	if _, err := service.Register(ctx, id, "bob"); err != nil {
		t.Fatalf("retry register: %v", err)
	}
	if _, err := service.Register(ctx, id, "bob"); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("expected already registered, got %v", err)
	}
	if entries, _ := rankings.List(ctx, 10); len(entries) != 1 {
		t.Fatalf("expected one leaderboard row, got %d", len(entries))
	}
}
