package app

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"songquiz-service/internal/domain"
)

const (
	DefaultRankingLimit = 100
	MaxRankingLimit     = 1000
	MaxUsernameLength   = 20

	// leaderboardSize is the number of entries pushed to subscribers.
	leaderboardSize = 10
)

// RankingService validates challenge results and maintains the leaderboard.
type RankingService struct {
	repo RankingRepository
	now  func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewRankingService(repo RankingRepository) *RankingService {
	return NewRankingServiceWithClock(repo, defaultNow)
}

// NewRankingServiceWithClock allows deterministic timestamps in tests.
func NewRankingServiceWithClock(repo RankingRepository, now func() time.Time) *RankingService {
	return &RankingService{
		repo:        repo,
		now:         now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Submit validates and stores a result, then pushes the refreshed leaderboard to subscribers.
func (s *RankingService) Submit(ctx context.Context, submission domain.ScoreSubmission) (domain.RankingEntry, error) {
	submission.Username = strings.TrimSpace(submission.Username)
	if err := validateSubmission(submission); err != nil {
		return domain.RankingEntry{}, err
	}

	entry, err := s.repo.Create(ctx, submission)
	if err != nil {
		return domain.RankingEntry{}, err
	}

	if lb, err := s.leaderboard(ctx); err != nil {
		log.Printf("leaderboard refresh failed: %v", err)
	} else {
		s.broadcast(lb)
	}
	return entry, nil
}

// List returns the top entries. A zero limit selects DefaultRankingLimit.
func (s *RankingService) List(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	if limit == 0 {
		limit = DefaultRankingLimit
	}
	if limit < 1 || limit > MaxRankingLimit {
		return nil, domain.ErrInvalidLimit
	}
	return s.repo.List(ctx, limit)
}

// Subscribe returns a channel that receives leaderboard updates.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *RankingService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *RankingService) leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	entries, err := s.repo.List(ctx, leaderboardSize)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}

func (s *RankingService) broadcast(lb domain.Leaderboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// slow subscriber: replace its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func validateSubmission(sub domain.ScoreSubmission) error {
	if sub.Username == "" {
		return &domain.ValidationError{Field: "username", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(sub.Username) > MaxUsernameLength {
		return &domain.ValidationError{Field: "username", Message: "must be at most 20 characters"}
	}
	if sub.Score < 0 {
		return &domain.ValidationError{Field: "score", Message: "must not be negative"}
	}
	if !sub.Rank.Valid() {
		return &domain.ValidationError{Field: "rank", Message: "unknown rank " + string(sub.Rank)}
	}
	return nil
}
