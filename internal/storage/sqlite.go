// Package storage persists the player profile, the learned difficulty model
// and the score log. The score log uses the pure-Go modernc.org/sqlite
// driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ScoreLog records every finished run in SQLite.
type ScoreLog struct {
	db *sql.DB
}

// ScoreEntry represents a single logged run.
type ScoreEntry struct {
	ID        int64
	Score     int
	Tier      string
	Duration  float64 // Seconds
	CreatedAt time.Time
}

// ScoreStats contains aggregated statistics over all runs.
type ScoreStats struct {
	GamesCount  int
	HighScore   int
	AvgScore    float64
	TotalScore  int64
	AvgDuration float64
	LastPlayed  time.Time
}

// OpenScoreLog creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func OpenScoreLog(dbPath string) (*ScoreLog, error) {
	dbPath, err := ExpandHome(dbPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	l := &ScoreLog{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return l, nil
}

// migrate creates the database schema if it doesn't exist.
func (l *ScoreLog) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			score INTEGER NOT NULL,
			tier TEXT NOT NULL DEFAULT '',
			duration_secs REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (l *ScoreLog) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// AddScore records a finished run. Implements dda.ScoreLog.
func (l *ScoreLog) AddScore(score int, tier string, duration float64) error {
	_, err := l.SaveScore(score, tier, duration)
	return err
}

// SaveScore records a finished run and returns the ID of the inserted record.
func (l *ScoreLog) SaveScore(score int, tier string, duration float64) (int64, error) {
	result, err := l.db.Exec(
		"INSERT INTO scores (score, tier, duration_secs) VALUES (?, ?, ?)",
		score, tier, duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopScores retrieves the top N runs ordered by score descending.
func (l *ScoreLog) TopScores(limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := l.db.Query(
		`SELECT id, score, tier, duration_secs, created_at
		 FROM scores
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Score, &e.Tier, &e.Duration, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseDatetime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// HighScore returns the highest logged score, or 0 if none exist.
func (l *ScoreLog) HighScore() (int, error) {
	var score sql.NullInt64
	if err := l.db.QueryRow("SELECT MAX(score) FROM scores").Scan(&score); err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearScores deletes all logged runs.
func (l *ScoreLog) ClearScores() error {
	if _, err := l.db.Exec("DELETE FROM scores"); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// Stats retrieves aggregated statistics over all runs.
func (l *ScoreLog) Stats() (*ScoreStats, error) {
	stats := &ScoreStats{}

	err := l.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(SUM(score), 0), COALESCE(AVG(duration_secs), 0)
		 FROM scores`,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &stats.AvgDuration)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get score stats: %w", err)
	}

	var lastPlayed any
	err = l.db.QueryRow(`SELECT created_at FROM scores ORDER BY id DESC LIMIT 1`).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseDatetime(lastPlayed)
	}
	return stats, nil
}

// parseDatetime handles both time.Time and string values from the driver.
func parseDatetime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
