package storage

import (
	"time"

	"github.com/vovakirdan/lane-runner/internal/dda"
	"github.com/vovakirdan/lane-runner/internal/profiler"
)

// PlayerProfile is the persisted per-install player record.
type PlayerProfile struct {
	TotalPlayTime      float64             `json:"total_play_time"` // Seconds
	HighScore          int                 `json:"high_score"`
	GamesPlayed        int                 `json:"games_played"`
	LastSession        *float64            `json:"last_session"` // Unix seconds, null before the first session
	DifficultyHistory  []SessionRecord     `json:"difficulty_history"`
	PerformanceHistory []PerformanceRecord `json:"performance_history"`
}

// SessionRecord is one entry of the difficulty history.
type SessionRecord struct {
	ID        string            `json:"id"`
	Timestamp float64           `json:"timestamp"` // Unix seconds
	Metrics   profiler.Snapshot `json:"metrics"`
	Params    dda.Params        `json:"params"`
	Score     int               `json:"score"`
	Duration  float64           `json:"duration"`
}

// PerformanceRecord is one entry of the performance history.
type PerformanceRecord struct {
	ID            string  `json:"id"`
	Timestamp     float64 `json:"timestamp"`
	Score         int     `json:"score"`
	Duration      float64 `json:"duration"`
	SuccessRating float64 `json:"success_rating"`
	Tier          string  `json:"tier"`
}

// Stats summarizes a profile for display.
type Stats struct {
	TotalPlayTime time.Duration
	HighScore     int
	GamesPlayed   int
	LastSession   time.Time // Zero if the player never finished a session
	HistoryLen    int
}

func newProfile() PlayerProfile {
	return PlayerProfile{
		DifficultyHistory:  []SessionRecord{},
		PerformanceHistory: []PerformanceRecord{},
	}
}

// Time returns the record's timestamp.
func (r SessionRecord) Time() time.Time {
	return unixTime(r.Timestamp)
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func unixTime(sec float64) time.Time {
	return time.Unix(0, int64(sec*1e9))
}

// appendCapped appends v and keeps only the newest limit entries.
func appendCapped[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if limit > 0 && len(s) > limit {
		s = append(s[:0:0], s[len(s)-limit:]...)
	}
	return s
}
