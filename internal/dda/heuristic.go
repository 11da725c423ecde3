package dda

import (
	"math"

	"github.com/vovakirdan/lane-runner/internal/profiler"
)

// Heuristic skill weights.
const (
	reactionWeight = 0.4
	coinWeight     = 0.3
	laneWeight     = 0.3

	reactionReference = 0.5  // Seconds scoring a full reaction term
	reactionFloor     = 0.1  // Faster samples are treated as this
	laneReference     = 20.0 // Lane changes per minute scoring a full lane term
)

// Predictor maps a metrics snapshot to target parameters.
type Predictor interface {
	Predict(s profiler.Snapshot) Params
}

// Heuristic is the always-available fixed-formula policy. It is stateless
// and deterministic for a given snapshot.
type Heuristic struct {
	ReactionCap       float64 // Upper bound of the reaction term before weighting
	ExperienceSeconds float64 // Play time after which no dampening applies
	Coins             CoinPolicy
}

// NewHeuristic returns a heuristic with the default tuning and fixed coins.
func NewHeuristic() *Heuristic {
	return &Heuristic{
		ReactionCap:       1.0,
		ExperienceSeconds: 300,
		Coins:             FixedCoins{Value: 1},
	}
}

// SkillScore estimates proficiency in [0, ReactionCap*0.4+0.6] from recent behavior.
// With the default cap of 1 the score lies in [0, 1].
func (h *Heuristic) SkillScore(s profiler.Snapshot) float64 {
	s = sanitize(s)

	reaction := reactionReference / math.Max(s.ReactionTime, reactionFloor)
	reaction = math.Min(math.Max(reaction, 0), h.reactionCap())

	coins := math.Min(math.Max(s.CoinCollectionRate, 0), 1)
	lanes := math.Min(1.0, math.Max(s.LaneChangesPerMinute, 0)/laneReference)

	return reactionWeight*reaction + coinWeight*coins + laneWeight*lanes
}

// AdjustedSkill dampens the skill score for inexperienced players so new
// players start on easier settings regardless of raw skill.
func (h *Heuristic) AdjustedSkill(s profiler.Snapshot) float64 {
	s = sanitize(s)
	experience := 1.0
	if h.ExperienceSeconds > 0 {
		experience = math.Min(1.0, math.Max(s.PlayTime, 0)/h.ExperienceSeconds)
	}
	return h.SkillScore(s) * (0.5 + 0.5*experience)
}

// Predict implements Predictor.
func (h *Heuristic) Predict(s profiler.Snapshot) Params {
	skill := h.AdjustedSkill(s)
	p := Params{
		Speed:             MinSpeed + skill*(MaxSpeed-MinSpeed),
		ObstacleFrequency: int(math.Round(MaxObstacleFrequency - skill*(MaxObstacleFrequency-MinObstacleFrequency))),
		PatternComplexity: MinPatternComplexity + skill*(MaxPatternComplexity-MinPatternComplexity),
		CoinValue:         h.coinValue(s),
	}
	return p.Clamp()
}

func (h *Heuristic) coinValue(s profiler.Snapshot) int {
	if h.Coins == nil {
		return MinCoinValue
	}
	return h.Coins.CoinValue(s)
}

func (h *Heuristic) reactionCap() float64 {
	if h.ReactionCap <= 0 {
		return 1.0
	}
	return h.ReactionCap
}

// sanitize replaces non-finite fields with cold-start values.
func sanitize(s profiler.Snapshot) profiler.Snapshot {
	if !finite(s.ReactionTime) {
		s.ReactionTime = profiler.DefaultReactionTime
	}
	if !finite(s.NearMissDistance) {
		s.NearMissDistance = profiler.DefaultNearMiss
	}
	if !finite(s.CoinCollectionRate) {
		s.CoinCollectionRate = 0
	}
	if !finite(s.LaneChangesPerMinute) {
		s.LaneChangesPerMinute = 0
	}
	if !finite(s.PlayTime) {
		s.PlayTime = 0
	}
	return s
}
