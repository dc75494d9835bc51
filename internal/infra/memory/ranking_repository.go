package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"songquiz-service/internal/domain"
)

// RankingRepository keeps leaderboard rows in memory.
type RankingRepository struct {
	clock func() time.Time

	mu      sync.RWMutex
	nextID  int64
	entries []domain.RankingEntry
}

func NewRankingRepository() *RankingRepository {
	return NewRankingRepositoryWithClock(func() time.Time { return time.Now().UTC() })
}

// NewRankingRepositoryWithClock allows deterministic creation times in tests.
func NewRankingRepositoryWithClock(clock func() time.Time) *RankingRepository {
	return &RankingRepository{clock: clock, nextID: 1}
}

func (r *RankingRepository) Create(_ context.Context, submission domain.ScoreSubmission) (domain.RankingEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := domain.RankingEntry{
		ID:        r.nextID,
		Username:  submission.Username,
		Score:     submission.Score,
		Rank:      submission.Rank,
		CreatedAt: r.clock(),
		Details:   submission.Details,
	}
	r.nextID++
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *RankingRepository) List(_ context.Context, limit int) ([]domain.RankingEntry, error) {
	r.mu.RLock()
	entries := make([]domain.RankingEntry, len(r.entries))
	copy(entries, r.entries)
	r.mu.RUnlock()

	// score desc, then the earlier registration wins the tie
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
