// Package dda implements dynamic difficulty adjustment: a heuristic and a
// learned policy mapping player metrics to game parameters, a controller
// that smooths live parameters towards the policy's targets, and a recorder
// that feeds finished sessions back into storage and training.
package dda

import (
	"math"

	"github.com/vovakirdan/lane-runner/internal/core"
)

// Safe operating ranges for the live parameters.
const (
	MinSpeed             = 3.0
	MaxSpeed             = 10.0
	MinObstacleFrequency = 15 // ticks between spawns; smaller is harder
	MaxObstacleFrequency = 60
	MinPatternComplexity = 1.0
	MaxPatternComplexity = 3.0
	MinCoinValue         = 1
)

// Params are the difficulty parameters consumed by the game loop.
type Params struct {
	Speed             float64 `json:"speed"`              // Pixels per tick
	ObstacleFrequency int     `json:"obstacle_frequency"` // Ticks between spawns
	PatternComplexity float64 `json:"pattern_complexity"` // Rounds to pattern tier 1..3
	CoinValue         int     `json:"coin_value"`         // Points per coin
}

// Clamp returns p with every field inside its safe range.
// Non-finite floats collapse to the easiest setting.
func (p Params) Clamp() Params {
	return Params{
		Speed:             clampFinite(p.Speed, MinSpeed, MaxSpeed),
		ObstacleFrequency: core.Clamp(p.ObstacleFrequency, MinObstacleFrequency, MaxObstacleFrequency),
		PatternComplexity: clampFinite(p.PatternComplexity, MinPatternComplexity, MaxPatternComplexity),
		CoinValue:         max(p.CoinValue, MinCoinValue),
	}
}

// Valid reports whether every field is inside its safe range.
func (p Params) Valid() bool {
	return p == p.Clamp()
}

// PatternTier rounds the complexity to a spawn pattern tier in 1..3.
func (p Params) PatternTier() int {
	c := clampFinite(p.PatternComplexity, MinPatternComplexity, MaxPatternComplexity)
	return int(math.Round(c))
}

// SpawnInterval returns the tick interval to spawn at for a raw frequency.
// The result is always a usable modulo divisor, even for zero or negative input.
func SpawnInterval(obstacleFrequency int) int {
	return max(obstacleFrequency, MinObstacleFrequency)
}

func clampFinite(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return core.Clamp(v, lo, hi)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
