package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"songquiz-service/internal/domain"
)

type rankingRow struct {
	bun.BaseModel `bun:"table:rankings"`

	ID        int64                `bun:"id,pk,autoincrement"`
	Username  string               `bun:"username,notnull"`
	Score     int                  `bun:"score,notnull"`
	Rank      string               `bun:"rank,notnull"`
	Details   []domain.ScoreDetail `bun:"details,type:jsonb,nullzero"`
	CreatedAt time.Time            `bun:"created_at,notnull,nullzero,default:current_timestamp"`
}

func (r rankingRow) entry() domain.RankingEntry {
	return domain.RankingEntry{
		ID:        r.ID,
		Username:  r.Username,
		Score:     r.Score,
		Rank:      domain.Rank(r.Rank),
		CreatedAt: r.CreatedAt.UTC(),
		Details:   r.Details,
	}
}

// RankingRepository stores leaderboard rows with bun.
type RankingRepository struct {
	db *bun.DB
}

func NewRankingRepository(db *bun.DB) *RankingRepository {
	return &RankingRepository{db: db}
}

func (r *RankingRepository) Create(ctx context.Context, submission domain.ScoreSubmission) (domain.RankingEntry, error) {
	row := &rankingRow{
		Username: submission.Username,
		Score:    submission.Score,
		Rank:     string(submission.Rank),
		Details:  submission.Details,
	}
	if _, err := r.db.NewInsert().Model(row).Returning("id, created_at").Exec(ctx); err != nil {
		return domain.RankingEntry{}, fmt.Errorf("insert ranking: %w", err)
	}
	return row.entry(), nil
}

func (r *RankingRepository) List(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	var rows []rankingRow
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("score DESC").
		OrderExpr("created_at ASC").
		OrderExpr("id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	entries := make([]domain.RankingEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry())
	}
	return entries, nil
}
