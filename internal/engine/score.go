package engine

import "songquiz-service/internal/domain"

const (
	// BaseScore is awarded for every question before bonuses and penalties.
	BaseScore = 1000
	// RevealPenalty applies when the player asked for the answer.
	RevealPenalty = -1000
)

// clipDurationBonuses maps the selectable clip lengths to their bonus.
// Any other length earns nothing; stored sessions may carry such values, so it is not an error.
var clipDurationBonuses = map[float64]int{
	1:   500,
	1.5: 300,
	2:   100,
	3:   0,
	5:   -100,
}

// ClipDurations lists the selectable clip lengths, shortest first.
var ClipDurations = []float64{1, 1.5, 2, 3, 5}

// TimeBonus tiers the answer time. Elapsed time is trusted as given.
func TimeBonus(elapsedSeconds float64) int {
	switch {
	case elapsedSeconds <= 10:
		return 200
	case elapsedSeconds <= 15:
		return 100
	case elapsedSeconds <= 20:
		return 0
	case elapsedSeconds <= 30:
		return -100
	default:
		return -300
	}
}

// ClipDurationBonus rewards shorter clips.
func ClipDurationBonus(clipDurationSeconds float64) int {
	return clipDurationBonuses[clipDurationSeconds]
}

// ScoreQuestion computes the score of one answered or revealed question.
func ScoreQuestion(index int, trackID string, elapsedSeconds, clipDurationSeconds float64, wasRevealed bool) domain.ChallengeScore {
	timeBonus := TimeBonus(elapsedSeconds)
	clipBonus := ClipDurationBonus(clipDurationSeconds)
	penalty := 0
	if wasRevealed {
		penalty = RevealPenalty
	}

	return domain.ChallengeScore{
		QuestionIndex:       index,
		TrackID:             trackID,
		ElapsedSeconds:      elapsedSeconds,
		ClipDurationSeconds: clipDurationSeconds,
		WasRevealed:         wasRevealed,
		BaseScore:           BaseScore,
		TimeBonus:           timeBonus,
		ClipDurationBonus:   clipBonus,
		RevealPenalty:       penalty,
		TotalScore:          max(0, BaseScore+timeBonus+clipBonus+penalty),
	}
}

// AggregateScore sums the per-question totals.
func AggregateScore(scores []domain.ChallengeScore) int {
	total := 0
	for _, s := range scores {
		total += s.TotalScore
	}
	return total
}
