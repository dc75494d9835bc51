package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"songquiz-service/internal/domain"
	"songquiz-service/internal/engine"
)

// ChallengeOptions tunes a ChallengeService. Zero values fall back to production defaults.
type ChallengeOptions struct {
	QuestionCount int
	RankStrategy  engine.RankStrategy
	Random        engine.Random // must be safe for concurrent use
	Clock         engine.Clock
	Now           func() time.Time
	NewID         func() string
}

// ChallengeService runs time-attack sessions: it owns the per-session score accumulator
// while the engine computes each score.
type ChallengeService struct {
	catalogs      CatalogRepository
	sessions      SessionRepository
	rankings      *RankingService
	generator     *engine.Generator
	strategy      engine.RankStrategy
	clock         engine.Clock
	now           func() time.Time
	newID         func() string
	questionCount int
	locks         keyedMutex
}

func NewChallengeService(catalogs CatalogRepository, sessions SessionRepository, rankings *RankingService, opts ChallengeOptions) *ChallengeService {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = engine.DefaultQuestionCount
	}
	if opts.RankStrategy == nil {
		opts.RankStrategy = engine.FixedThresholds{}
	}
	if opts.Random == nil {
		opts.Random = engine.NewLockedRandom(engine.NewRandom(uint64(time.Now().UnixNano())))
	}
	if opts.Clock == nil {
		opts.Clock = engine.NewMonotonicClock()
	}
	if opts.Now == nil {
		opts.Now = defaultNow
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &ChallengeService{
		catalogs:      catalogs,
		sessions:      sessions,
		rankings:      rankings,
		generator:     engine.NewGenerator(opts.Random),
		strategy:      opts.RankStrategy,
		clock:         opts.Clock,
		now:           opts.Now,
		newID:         opts.NewID,
		questionCount: opts.QuestionCount,
		locks:         keyedMutex{locks: make(map[string]*lockEntry)},
	}
}

// QuestionView is a challenge question without its answer.
type QuestionView struct {
	Index            int     `json:"index"`
	Total            int     `json:"total"`
	MediaURL         string  `json:"mediaUrl"`
	StartTimeSeconds float64 `json:"startTime"`
	AlbumName        string  `json:"albumName"`
	ArtistName       string  `json:"artistName"`
	CoverURL         string  `json:"coverUrl"`
}

// ChallengeState is the client-facing progress of a session.
type ChallengeState struct {
	SessionID  string        `json:"sessionId"`
	Question   *QuestionView `json:"question,omitempty"`
	TotalScore int           `json:"totalScore"`
	Revealed   bool          `json:"revealed"`
	Completed  bool          `json:"completed"`
}

// AnswerOutcome reports a guess. Score is set only for correct guesses.
type AnswerOutcome struct {
	Correct bool                   `json:"correct"`
	Score   *domain.ChallengeScore `json:"score,omitempty"`
	State   ChallengeState         `json:"state"`
}

// RevealOutcome carries the shown title and the penalized score.
type RevealOutcome struct {
	Title string                `json:"title"`
	Score domain.ChallengeScore `json:"score"`
	State ChallengeState        `json:"state"`
}

// Start creates a session. An empty albumIDs draws from the whole catalog.
func (s *ChallengeService) Start(ctx context.Context, albumIDs []string) (ChallengeState, error) {
	catalog, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return ChallengeState{}, err
	}
	questions, err := generate(s.generator, catalog, albumIDs, s.questionCount)
	if err != nil {
		return ChallengeState{}, err
	}

	session := domain.ChallengeSession{
		ID:                s.newID(),
		Questions:         questions,
		Scores:            []domain.ChallengeScore{},
		QuestionStartedAt: s.clock.NowMillis(),
		CreatedAt:         s.now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return ChallengeState{}, err
	}
	return stateOf(&session), nil
}

// State returns the current progress of a session.
func (s *ChallengeService) State(ctx context.Context, id string) (ChallengeState, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return ChallengeState{}, err
	}
	return stateOf(&session), nil
}

// Answer checks a guess. A correct guess is scored and moves to the next question;
// a wrong guess leaves the session untouched so the player can retry.
func (s *ChallengeService) Answer(ctx context.Context, id, guess string, clipDurationSeconds float64) (AnswerOutcome, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, question, err := s.playable(ctx, id)
	if err != nil {
		return AnswerOutcome{}, err
	}
	if !engine.IsMatch(guess, question.Track.Title) {
		return AnswerOutcome{Correct: false, State: stateOf(&session)}, nil
	}

	score := s.score(&session, question, clipDurationSeconds)
	s.advance(&session)
	if err := s.sessions.Save(ctx, session); err != nil {
		return AnswerOutcome{}, err
	}
	return AnswerOutcome{Correct: true, Score: &score, State: stateOf(&session)}, nil
}

// Reveal shows the title at the cost of the reveal penalty. The player moves on with Next;
// revealing the last question completes the session.
func (s *ChallengeService) Reveal(ctx context.Context, id string, clipDurationSeconds float64) (RevealOutcome, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, question, err := s.playable(ctx, id)
	if err != nil {
		return RevealOutcome{}, err
	}

	session.Revealed = true
	score := s.score(&session, question, clipDurationSeconds)
	if session.IsLastQuestion() {
		s.complete(&session)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return RevealOutcome{}, err
	}
	return RevealOutcome{Title: question.Track.Title, Score: score, State: stateOf(&session)}, nil
}

// Next moves past a revealed question.
func (s *ChallengeService) Next(ctx context.Context, id string) (ChallengeState, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return ChallengeState{}, err
	}
	if session.Completed {
		return ChallengeState{}, domain.ErrSessionCompleted
	}
	if !session.Revealed {
		return ChallengeState{}, domain.ErrNotRevealed
	}
	s.advance(&session)
	if err := s.sessions.Save(ctx, session); err != nil {
		return ChallengeState{}, err
	}
	return stateOf(&session), nil
}

// Finish ends a session early, keeping the scores gathered so far.
func (s *ChallengeService) Finish(ctx context.Context, id string) (ChallengeState, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return ChallengeState{}, err
	}
	if !session.Completed {
		s.complete(&session)
		if err := s.sessions.Save(ctx, session); err != nil {
			return ChallengeState{}, err
		}
	}
	return stateOf(&session), nil
}

// Abandon drops a session that was never completed. Completed sessions are kept
// so their result can still be fetched and registered.
func (s *ChallengeService) Abandon(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if session.Completed {
		return nil
	}
	return s.sessions.Delete(ctx, id)
}

// Result returns the final score, rank and breakdown of a completed session.
func (s *ChallengeService) Result(ctx context.Context, id string) (domain.ChallengeResult, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.ChallengeResult{}, err
	}
	if !session.Completed {
		return domain.ChallengeResult{}, domain.ErrSessionNotCompleted
	}
	return s.resultOf(&session), nil
}

// Register submits a completed session to the leaderboard once.
func (s *ChallengeService) Register(ctx context.Context, id, username string) (domain.RankingEntry, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.RankingEntry{}, err
	}
	if !session.Completed {
		return domain.RankingEntry{}, domain.ErrSessionNotCompleted
	}
	if session.Registered {
		return domain.RankingEntry{}, domain.ErrAlreadyRegistered
	}

	result := s.resultOf(&session)

	// The session is marked before the row is written; a failed insert clears the mark.
	session.Registered = true
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.RankingEntry{}, err
	}

	entry, err := s.rankings.Submit(ctx, domain.ScoreSubmission{
		Username: username,
		Score:    result.TotalScore,
		Rank:     result.Rank,
		Details:  result.Details,
	})
	if err != nil {
		session.Registered = false
		if rollbackErr := s.sessions.Save(ctx, session); rollbackErr != nil {
			log.Printf("release registration of %s: %v", id, rollbackErr)
		}
		return domain.RankingEntry{}, err
	}
	return entry, nil
}

// playable loads a session that still accepts an answer or a reveal.
func (s *ChallengeService) playable(ctx context.Context, id string) (domain.ChallengeSession, domain.QuizQuestion, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.ChallengeSession{}, domain.QuizQuestion{}, err
	}
	question, ok := session.CurrentQuestion()
	if !ok {
		return domain.ChallengeSession{}, domain.QuizQuestion{}, domain.ErrSessionCompleted
	}
	if session.Revealed {
		return domain.ChallengeSession{}, domain.QuizQuestion{}, domain.ErrAlreadyRevealed
	}
	return session, question, nil
}

func (s *ChallengeService) score(session *domain.ChallengeSession, question domain.QuizQuestion, clip float64) domain.ChallengeScore {
	elapsed := engine.ElapsedSeconds(session.QuestionStartedAt, s.clock.NowMillis())
	score := engine.ScoreQuestion(session.CurrentIndex, question.Track.ID, elapsed, clip, session.Revealed)
	session.Scores = append(session.Scores, score)
	return score
}

func (s *ChallengeService) advance(session *domain.ChallengeSession) {
	if session.IsLastQuestion() {
		s.complete(session)
		return
	}
	session.CurrentIndex++
	session.Revealed = false
	session.QuestionStartedAt = s.clock.NowMillis()
}

func (s *ChallengeService) complete(session *domain.ChallengeSession) {
	now := s.now()
	session.Completed = true
	session.CompletedAt = &now
}

func (s *ChallengeService) resultOf(session *domain.ChallengeSession) domain.ChallengeResult {
	total := engine.AggregateScore(session.Scores)
	rank := s.strategy.Rank(total)

	details := make([]domain.ScoreDetail, 0, len(session.Scores))
	for _, score := range session.Scores {
		detail := domain.ScoreDetail{
			TrackID:                 score.TrackID,
			AnswerTimeSeconds:       score.ElapsedSeconds,
			PlaybackDurationSeconds: score.ClipDurationSeconds,
			WasRevealed:             score.WasRevealed,
		}
		if score.QuestionIndex >= 0 && score.QuestionIndex < len(session.Questions) {
			q := session.Questions[score.QuestionIndex]
			detail.TrackName = q.Track.Title
			detail.AlbumName = q.Album.Name
			detail.ArtistName = q.Artist.Name
		}
		details = append(details, detail)
	}

	return domain.ChallengeResult{
		SessionID:  session.ID,
		TotalScore: total,
		Rank:       rank,
		Message:    engine.MessageFor(rank),
		Scores:     session.Scores,
		Details:    details,
		Registered: session.Registered,
	}
}

func stateOf(session *domain.ChallengeSession) ChallengeState {
	state := ChallengeState{
		SessionID:  session.ID,
		TotalScore: engine.AggregateScore(session.Scores),
		Revealed:   session.Revealed,
		Completed:  session.Completed,
	}
	if q, ok := session.CurrentQuestion(); ok {
		state.Question = &QuestionView{
			Index:            session.CurrentIndex,
			Total:            len(session.Questions),
			MediaURL:         q.Track.MediaURL,
			StartTimeSeconds: q.StartTimeSeconds,
			AlbumName:        q.Album.Name,
			ArtistName:       q.Artist.Name,
			CoverURL:         q.Album.CoverURL,
		}
	}
	return state
}

// keyedMutex serializes operations on the same session id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
