package config

// DifficultyPreset represents a named starting difficulty for a player
// with no recorded history.
type DifficultyPreset string

const (
	DifficultyEasy     DifficultyPreset = "easy"
	DifficultyNormal   DifficultyPreset = "normal"
	DifficultyHard     DifficultyPreset = "hard"
	DifficultyAdaptive DifficultyPreset = "" // Cold-start heuristic defaults
)

// ParsePreset maps a CLI value to a preset. Unknown values select adaptive.
func ParsePreset(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return DifficultyPreset(s)
	default:
		return DifficultyAdaptive
	}
}

// PresetMetrics describes the assumed player behavior for a preset.
// The controller feeds these to the heuristic to seed a first session.
type PresetMetrics struct {
	ReactionTime         float64
	CoinCollectionRate   float64
	LaneChangesPerMinute float64
	PlayTime             float64
}

// MetricsForPreset returns the assumed metrics for a preset.
// The second return value is false for the adaptive preset.
func MetricsForPreset(preset DifficultyPreset) (PresetMetrics, bool) {
	switch preset {
	case DifficultyEasy:
		return PresetMetrics{ReactionTime: 1.0, CoinCollectionRate: 0.2, LaneChangesPerMinute: 4}, true
	case DifficultyNormal:
		return PresetMetrics{ReactionTime: 0.6, CoinCollectionRate: 0.5, LaneChangesPerMinute: 10, PlayTime: 150}, true
	case DifficultyHard:
		return PresetMetrics{ReactionTime: 0.4, CoinCollectionRate: 0.8, LaneChangesPerMinute: 18, PlayTime: 300}, true
	default:
		return PresetMetrics{}, false
	}
}
