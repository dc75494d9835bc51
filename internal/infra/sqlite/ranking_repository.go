package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"songquiz-service/internal/domain"
)

// RankingRepository stores leaderboard rows in a local SQLite file.
type RankingRepository struct {
	db    *sql.DB
	clock func() time.Time
}

// Open creates the database directory and schema if needed.
func Open(dbPath string) (*RankingRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	repo := &RankingRepository{db: db, clock: func() time.Time { return time.Now().UTC() }}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return repo, nil
}

func (r *RankingRepository) createTables() error {
	_, err := r.db.Exec(`
	CREATE TABLE IF NOT EXISTS rankings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		score INTEGER NOT NULL,
		rank TEXT NOT NULL,
		details TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rankings_score ON rankings(score DESC, created_at ASC);`)
	return err
}

// Close closes the database connection.
func (r *RankingRepository) Close() error {
	return r.db.Close()
}

func (r *RankingRepository) Create(ctx context.Context, submission domain.ScoreSubmission) (domain.RankingEntry, error) {
	var details sql.NullString
	if len(submission.Details) > 0 {
		data, err := json.Marshal(submission.Details)
		if err != nil {
			return domain.RankingEntry{}, fmt.Errorf("marshal details: %w", err)
		}
		details = sql.NullString{String: string(data), Valid: true}
	}

	createdAt := r.clock()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rankings (username, score, rank, details, created_at) VALUES (?, ?, ?, ?, ?)`,
		submission.Username, submission.Score, string(submission.Rank), details, createdAt)
	if err != nil {
		return domain.RankingEntry{}, fmt.Errorf("insert ranking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.RankingEntry{}, fmt.Errorf("insert ranking id: %w", err)
	}
	return domain.RankingEntry{
		ID:        id,
		Username:  submission.Username,
		Score:     submission.Score,
		Rank:      submission.Rank,
		CreatedAt: createdAt,
		Details:   submission.Details,
	}, nil
}

func (r *RankingRepository) List(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, score, rank, details, created_at FROM rankings
		ORDER BY score DESC, created_at ASC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankingEntry
	for rows.Next() {
		var (
			entry   domain.RankingEntry
			rank    string
			details sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Username, &entry.Score, &rank, &details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		entry.Rank = domain.Rank(rank)
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
