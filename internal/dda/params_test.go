package dda

import (
	"math"
	"testing"
)

func TestParamsClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{"in range", Params{5, 30, 2, 1}, Params{5, 30, 2, 1}},
		{"below", Params{0, 0, 0, 0}, Params{MinSpeed, MinObstacleFrequency, MinPatternComplexity, MinCoinValue}},
		{"above", Params{50, 500, 9, 3}, Params{MaxSpeed, MaxObstacleFrequency, MaxPatternComplexity, 3}},
		{"negative frequency", Params{4, -10, 1.5, 1}, Params{4, MinObstacleFrequency, 1.5, 1}},
		{"nan", Params{math.NaN(), 20, math.NaN(), 1}, Params{MinSpeed, 20, MinPatternComplexity, 1}},
		{"inf", Params{math.Inf(1), 20, math.Inf(-1), 1}, Params{MaxSpeed, 20, MinPatternComplexity, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamp()
			if got != tt.want {
				t.Errorf("Clamp() = %+v, expected %+v", got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("Clamp() result %+v is not valid", got)
			}
		})
	}
}

func TestSpawnIntervalNeverBelowMinimum(t *testing.T) {
	for _, freq := range []int{-100, -1, 0, 1, 14} {
		if got := SpawnInterval(freq); got != MinObstacleFrequency {
			t.Errorf("SpawnInterval(%d) = %d, expected %d", freq, got, MinObstacleFrequency)
		}
	}
	if got := SpawnInterval(42); got != 42 {
		t.Errorf("SpawnInterval(42) = %d, expected 42", got)
	}
	// Usable as a modulo divisor
	_ = 1000 % SpawnInterval(0)
}

func TestPatternTier(t *testing.T) {
	tests := []struct {
		complexity float64
		want       int
	}{
		{1.0, 1}, {1.49, 1}, {1.5, 2}, {2.4, 2}, {2.5, 3}, {3.0, 3}, {math.NaN(), 1}, {10, 3},
	}
	for _, tt := range tests {
		if got := (Params{PatternComplexity: tt.complexity}).PatternTier(); got != tt.want {
			t.Errorf("PatternTier(%v) = %d, expected %d", tt.complexity, got, tt.want)
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		speed, complexity float64
		want              Tier
	}{
		{3, 1, TierNovice},
		{5.45, 1.7, TierEasy}, // 17.5 + 17.5
		{6.5, 2, TierMedium},  // 25 + 25
		{8, 2.4, TierHard},    // 35.7 + 35
		{10, 3, TierExpert},
	}
	for _, tt := range tests {
		got := TierFor(Params{Speed: tt.speed, ObstacleFrequency: 30, PatternComplexity: tt.complexity, CoinValue: 1})
		if got != tt.want {
			t.Errorf("TierFor(speed=%v, complexity=%v) = %s, expected %s", tt.speed, tt.complexity, got, tt.want)
		}
	}
}

func TestSuccessRating(t *testing.T) {
	tests := []struct {
		score    int
		duration float64
		want     float64
	}{
		{0, 60, 0},
		{3, 60, 0.5},
		{100, 60, 1},
		{1, 0, 1},  // duration floor of 1
		{0, 0, 0},
		{-5, 30, 0},
	}
	for _, tt := range tests {
		if got := SuccessRating(tt.score, tt.duration); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SuccessRating(%d, %v) = %v, expected %v", tt.score, tt.duration, got, tt.want)
		}
	}
}
