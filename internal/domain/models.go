package domain

import "time"

// Track is a single song in the catalog. Title is the answer key.
type Track struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	MediaURL             string   `json:"youtubeUrl"`
	DurationSeconds      *float64 `json:"duration,omitempty"`
	MidpointStartSeconds *float64 `json:"midpointStart,omitempty"`
}

// HintKind tells which timing metadata drives the clip start of a track.
type HintKind int

const (
	// HintNone means the track carries no usable timing metadata.
	HintNone HintKind = iota
	// HintDuration means only the track length is known.
	HintDuration
	// HintMidpoint means the author picked the clip start explicitly.
	HintMidpoint
)

// StartHint is the resolved timing metadata of a track.
type StartHint struct {
	Kind    HintKind
	Seconds float64
}

// StartHint resolves the optional timing fields in priority order:
// midpoint override, then duration, then nothing. A non-positive duration counts as unknown.
func (t Track) StartHint() StartHint {
	if t.MidpointStartSeconds != nil {
		return StartHint{Kind: HintMidpoint, Seconds: *t.MidpointStartSeconds}
	}
	if t.DurationSeconds != nil && *t.DurationSeconds > 0 {
		return StartHint{Kind: HintDuration, Seconds: *t.DurationSeconds}
	}
	return StartHint{Kind: HintNone}
}

// Album owns an ordered list of tracks.
type Album struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	CoverURL string  `json:"jacketUrl"`
	Tracks   []Track `json:"tracks"`
}

// Artist owns an ordered list of albums.
type Artist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Albums []Album `json:"albums"`
}

// Catalog is the read-only root of all quiz content.
type Catalog struct {
	Artists []Artist `json:"artists"`
}

// TrackCount returns the number of tracks across all artists and albums.
func (c Catalog) TrackCount() int {
	n := 0
	for _, artist := range c.Artists {
		for _, album := range artist.Albums {
			n += len(album.Tracks)
		}
	}
	return n
}

// QuizQuestion binds a track to its album, artist and chosen clip start.
type QuizQuestion struct {
	Track            Track   `json:"track"`
	Album            Album   `json:"album"`
	Artist           Artist  `json:"artist"`
	StartTimeSeconds float64 `json:"startTime"`
}

// ChallengeScore is the per-question score breakdown of a challenge run.
type ChallengeScore struct {
	QuestionIndex       int     `json:"questionIndex"`
	TrackID             string  `json:"trackId"`
	ElapsedSeconds      float64 `json:"timeElapsed"`
	ClipDurationSeconds float64 `json:"playDuration"`
	WasRevealed         bool    `json:"wasRevealed"`
	BaseScore           int     `json:"baseScore"`
	TimeBonus           int     `json:"timeBonus"`
	ClipDurationBonus   int     `json:"playDurationBonus"`
	RevealPenalty       int     `json:"revealPenalty"`
	TotalScore          int     `json:"totalScore"`
}

// Rank is the letter grade of a finished challenge.
type Rank string

const (
	RankSS Rank = "SS"
	RankS  Rank = "S"
	RankA  Rank = "A"
	RankB  Rank = "B"
	RankC  Rank = "C"
	RankD  Rank = "D"
	RankF  Rank = "F"
)

// Ranks lists every grade from best to worst.
var Ranks = []Rank{RankSS, RankS, RankA, RankB, RankC, RankD, RankF}

// Valid reports whether r is one of the known grades.
func (r Rank) Valid() bool {
	for _, known := range Ranks {
		if r == known {
			return true
		}
	}
	return false
}

// ScoreDetail is the per-question record handed to the ranking store.
type ScoreDetail struct {
	TrackID                 string  `json:"trackId"`
	TrackName               string  `json:"trackName,omitempty"`
	AlbumName               string  `json:"albumName,omitempty"`
	ArtistName              string  `json:"artistName,omitempty"`
	AnswerTimeSeconds       float64 `json:"answerTime"`
	PlaybackDurationSeconds float64 `json:"playbackDuration"`
	WasRevealed             bool    `json:"wasRevealed"`
}

// ScoreSubmission is a finished challenge offered to the leaderboard.
type ScoreSubmission struct {
	Username string        `json:"username"`
	Score    int           `json:"score"`
	Rank     Rank          `json:"rank"`
	Details  []ScoreDetail `json:"details,omitempty"`
}

// RankingEntry is a persisted leaderboard row.
type RankingEntry struct {
	ID        int64         `json:"id"`
	Username  string        `json:"username"`
	Score     int           `json:"score"`
	Rank      Rank          `json:"rank"`
	CreatedAt time.Time     `json:"created_at"`
	Details   []ScoreDetail `json:"details,omitempty"`
}

// Leaderboard is an ordered snapshot of the top ranking entries.
type Leaderboard struct {
	Entries   []RankingEntry `json:"entries"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ChallengeSession is the serializable state of one time-attack run.
type ChallengeSession struct {
	ID                string           `json:"id"`
	Questions         []QuizQuestion   `json:"questions"`
	CurrentIndex      int              `json:"currentIndex"`
	Scores            []ChallengeScore `json:"scores"`
	QuestionStartedAt float64          `json:"questionStartedAt"` // Unix epoch milliseconds
	Revealed          bool             `json:"revealed"`
	Completed         bool             `json:"completed"`
	Registered        bool             `json:"registered"`
	CreatedAt         time.Time        `json:"createdAt"`
	CompletedAt       *time.Time       `json:"completedAt,omitempty"`
}

// CurrentQuestion returns the question being played, if any.
func (s *ChallengeSession) CurrentQuestion() (QuizQuestion, bool) {
	if s.Completed || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return QuizQuestion{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// IsLastQuestion reports whether the current question is the final one.
func (s *ChallengeSession) IsLastQuestion() bool {
	return s.CurrentIndex >= len(s.Questions)-1
}

// ChallengeResult is what the result screen and the ranking submission need.
type ChallengeResult struct {
	SessionID  string           `json:"sessionId"`
	TotalScore int              `json:"totalScore"`
	Rank       Rank             `json:"rank"`
	Message    string           `json:"message"`
	Scores     []ChallengeScore `json:"scores"`
	Details    []ScoreDetail    `json:"details"`
	Registered bool             `json:"isRegistered"`
}
