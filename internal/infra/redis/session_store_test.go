package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"songquiz-service/internal/domain"
)

func TestSessionStoreRoundTripAndExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), 5*time.Minute)

	session := domain.ChallengeSession{
		ID:           "s1",
		CurrentIndex: 3,
		Scores:       []domain.ChallengeScore{{QuestionIndex: 0, TrackID: "t1", TotalScore: 1100}},
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("challenge:session:s1") {
		t.Fatalf("expected redis key to be set")
	}

	loaded, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.CurrentIndex != 3 || len(loaded.Scores) != 1 || loaded.Scores[0].TotalScore != 1100 {
		t.Fatalf("unexpected session %+v", loaded)
	}

	mr.FastForward(6 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestSessionStoreDelete(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)
	_ = store.Save(ctx, domain.ChallengeSession{ID: "s1"})

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("challenge:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
}
