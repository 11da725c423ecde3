package dda

// Tier is a human-readable difficulty bucket shown in the HUD.
type Tier string

const (
	TierNovice Tier = "Novice"
	TierEasy   Tier = "Easy"
	TierMedium Tier = "Medium"
	TierHard   Tier = "Hard"
	TierExpert Tier = "Expert"
)

// DifficultyScore maps speed and pattern complexity onto 0..100,
// each contributing half.
func DifficultyScore(p Params) float64 {
	p = p.Clamp()
	return (p.Speed-MinSpeed)/(MaxSpeed-MinSpeed)*50 +
		(p.PatternComplexity-MinPatternComplexity)/(MaxPatternComplexity-MinPatternComplexity)*50
}

// TierFor buckets parameters at score thresholds 20/40/60/80.
func TierFor(p Params) Tier {
	switch score := DifficultyScore(p); {
	case score < 20:
		return TierNovice
	case score < 40:
		return TierEasy
	case score < 60:
		return TierMedium
	case score < 80:
		return TierHard
	default:
		return TierExpert
	}
}
