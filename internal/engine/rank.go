package engine

import (
	"fmt"

	"songquiz-service/internal/domain"
)

// Rank strategy names accepted by NewRankStrategy.
const (
	RankStrategyFixed      = "fixed"
	RankStrategyPercentage = "percentage"
)

// RankStrategy grades a challenge total.
type RankStrategy interface {
	Name() string
	Rank(totalScore int) domain.Rank
}

type threshold struct {
	min  int
	rank domain.Rank
}

// FixedThresholds grades on absolute totals tuned for a 10-question challenge.
type FixedThresholds struct{}

var fixedThresholds = []threshold{
	{15500, domain.RankSS},
	{14000, domain.RankS},
	{12500, domain.RankA},
	{9000, domain.RankB},
	{7000, domain.RankC},
	{5000, domain.RankD},
}

func (FixedThresholds) Name() string { return RankStrategyFixed }

func (FixedThresholds) Rank(totalScore int) domain.Rank {
	for _, t := range fixedThresholds {
		if totalScore >= t.min {
			return t.rank
		}
	}
	return domain.RankF
}

// PercentageOfMax grades on the share of a maximum score. It predates FixedThresholds
// and has no SS tier.
type PercentageOfMax struct {
	MaxScore int
}

var percentageThresholds = []threshold{
	{90, domain.RankS},
	{80, domain.RankA},
	{70, domain.RankB},
	{60, domain.RankC},
	{50, domain.RankD},
}

func (PercentageOfMax) Name() string { return RankStrategyPercentage }

func (p PercentageOfMax) Rank(totalScore int) domain.Rank {
	if p.MaxScore <= 0 {
		return domain.RankF
	}
	// integer cross-multiplication keeps the boundaries exact
	for _, t := range percentageThresholds {
		if totalScore*100 >= t.min*p.MaxScore {
			return t.rank
		}
	}
	return domain.RankF
}

// NewRankStrategy resolves a configured strategy by name. An empty name selects FixedThresholds.
func NewRankStrategy(name string, maxScore int) (RankStrategy, error) {
	switch name {
	case "", RankStrategyFixed:
		return FixedThresholds{}, nil
	case RankStrategyPercentage:
		if maxScore <= 0 {
			return nil, fmt.Errorf("rank strategy %q needs a positive max score", name)
		}
		return PercentageOfMax{MaxScore: maxScore}, nil
	default:
		return nil, fmt.Errorf("unknown rank strategy %q", name)
	}
}

var rankMessages = map[domain.Rank]string{
	domain.RankSS: "Perfect! You have reached the realm of the gods!",
	domain.RankS:  "Amazing! You really know your music!",
	domain.RankA:  "Well done! Aim even higher next time!",
	domain.RankB:  "Almost there! A little practice will take you further!",
	domain.RankC:  "Close! Brush up on the basics and try again!",
	domain.RankD:  "Keep going! Don't give up!",
	domain.RankF:  "Thanks for playing!",
}

// MessageFor returns the result-screen message of a rank.
func MessageFor(rank domain.Rank) string {
	if msg, ok := rankMessages[rank]; ok {
		return msg
	}
	return rankMessages[domain.RankF]
}
