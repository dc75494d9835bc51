package engine_test

import (
	"testing"

	"songquiz-service/internal/domain"
	"songquiz-service/internal/engine"
)

func TestFixedThresholds(t *testing.T) {
	tests := []struct {
		total int
		want  domain.Rank
	}{
		{17000, domain.RankSS},
		{15500, domain.RankSS},
		{15499, domain.RankS},
		{14000, domain.RankS},
		{13999, domain.RankA},
		{12500, domain.RankA},
		{12499, domain.RankB},
		{9000, domain.RankB},
		{8999, domain.RankC},
		{7000, domain.RankC},
		{6999, domain.RankD},
		{5000, domain.RankD},
		{4999, domain.RankF},
		{0, domain.RankF},
	}
	strategy := engine.FixedThresholds{}
	for _, tc := range tests {
		if got := strategy.Rank(tc.total); got != tc.want {
			t.Fatalf("Rank(%d) = %s, want %s", tc.total, got, tc.want)
		}
	}
}

func TestPercentageOfMax(t *testing.T) {
	tests := []struct {
		total int
		want  domain.Rank
	}{
		{10000, domain.RankS},
		{9500, domain.RankS},
		{9000, domain.RankS},
		{8999, domain.RankA},
		{8000, domain.RankA},
		{7500, domain.RankB},
		{7000, domain.RankB},
		{6500, domain.RankC},
		{6000, domain.RankC},
		{5500, domain.RankD},
		{5000, domain.RankD},
		{4500, domain.RankF},
	}
	strategy := engine.PercentageOfMax{MaxScore: 10000}
	for _, tc := range tests {
		if got := strategy.Rank(tc.total); got != tc.want {
			t.Fatalf("Rank(%d) = %s, want %s", tc.total, got, tc.want)
		}
	}
	if got := (engine.PercentageOfMax{}).Rank(10000); got != domain.RankF {
		t.Fatalf("zero max score should grade F, got %s", got)
	}
}

func TestNewRankStrategy(t *testing.T) {
	s, err := engine.NewRankStrategy("", 0)
	if err != nil || s.Name() != engine.RankStrategyFixed {
		t.Fatalf("expected fixed default, got %v, %v", s, err)
	}
	s, err = engine.NewRankStrategy("percentage", 17000)
	if err != nil || s.Name() != engine.RankStrategyPercentage {
		t.Fatalf("expected percentage strategy, got %v, %v", s, err)
	}
	if _, err := engine.NewRankStrategy("percentage", 0); err == nil {
		t.Fatalf("expected error for percentage without max score")
	}
	if _, err := engine.NewRankStrategy("auto", 0); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestMessageForIsDistinctPerRank(t *testing.T) {
	seen := map[string]domain.Rank{}
	for _, rank := range domain.Ranks {
		msg := engine.MessageFor(rank)
		if msg == "" {
			t.Fatalf("empty message for %s", rank)
		}
		if other, dup := seen[msg]; dup {
			t.Fatalf("ranks %s and %s share a message", rank, other)
		}
		seen[msg] = rank
	}
}
