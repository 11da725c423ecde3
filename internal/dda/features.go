package dda

import (
	"math"

	"github.com/vovakirdan/lane-runner/internal/profiler"
)

// Dimensions of the learned policy's input and output.
const (
	NumFeatures = 5
	NumTargets  = 3
)

// Features is the regressor input derived from a snapshot:
// reaction time, near miss distance, coin rate, lane changes per minute
// and obstacles avoided per minute.
type Features [NumFeatures]float64

// Targets are speed, obstacle frequency and pattern complexity.
type Targets [NumTargets]float64

// TrainingExample is one finished session as seen by the learned policy.
type TrainingExample struct {
	Features      Features `json:"features"`
	Targets       Targets  `json:"targets"`
	SuccessRating float64  `json:"success_rating"`
}

// FeaturesFrom derives the feature vector of s. Play time is floored at one
// second before converting to minutes.
func FeaturesFrom(s profiler.Snapshot) Features {
	minutes := math.Max(s.PlayTime, 1) / 60
	return Features{
		s.ReactionTime,
		s.NearMissDistance,
		s.CoinCollectionRate,
		s.LaneChangesPerMinute,
		float64(s.ObstaclesAvoided) / minutes,
	}
}

// OutcomeMultiplier scales the parameters used in a session before they
// become labels: sessions the player struggled with are relabeled easier.
func OutcomeMultiplier(successRating float64) float64 {
	switch {
	case successRating > 0.7:
		return 1.0
	case successRating > 0.4:
		return 0.8
	default:
		return 0.6
	}
}

// NewTrainingExample builds the example for a session played with used.
func NewTrainingExample(s profiler.Snapshot, used Params, successRating float64) TrainingExample {
	m := OutcomeMultiplier(successRating)
	return TrainingExample{
		Features: FeaturesFrom(s),
		Targets: Targets{
			used.Speed * m,
			float64(used.ObstacleFrequency) * m,
			used.PatternComplexity * m,
		},
		SuccessRating: successRating,
	}
}

func (e TrainingExample) finite() bool {
	for _, v := range e.Features {
		if !finite(v) {
			return false
		}
	}
	for _, v := range e.Targets {
		if !finite(v) {
			return false
		}
	}
	return finite(e.SuccessRating)
}

// SuccessRating is roughly points per ten seconds, capped at 1.
func SuccessRating(score int, durationSeconds float64) float64 {
	if !finite(durationSeconds) {
		durationSeconds = 0
	}
	rating := float64(score) / math.Max(1, durationSeconds*0.1)
	return math.Min(1.0, math.Max(rating, 0))
}
