package dda

import (
	"fmt"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/profiler"
)

// CoinPolicy decides how many points a coin is worth.
type CoinPolicy interface {
	CoinValue(s profiler.Snapshot) int
}

// FixedCoins always awards the same value. This is the default: a constant
// coin value keeps scores comparable across sessions.
type FixedCoins struct {
	Value int
}

// CoinValue implements CoinPolicy.
func (f FixedCoins) CoinValue(profiler.Snapshot) int {
	if f.Value < MinCoinValue {
		return MinCoinValue
	}
	return f.Value
}

// SkillScaledCoins makes coins worth more to players who struggle to collect them.
type SkillScaledCoins struct{}

// CoinValue implements CoinPolicy.
func (SkillScaledCoins) CoinValue(s profiler.Snapshot) int {
	switch rate := s.CoinCollectionRate; {
	case rate > 0.8:
		return 1
	case rate > 0.6:
		return 2
	case rate > 0.4:
		return 3
	default:
		return 5
	}
}

// NewCoinPolicy returns the policy registered under name.
func NewCoinPolicy(name string) (CoinPolicy, error) {
	switch name {
	case "", config.CoinPolicyFixed:
		return FixedCoins{Value: 1}, nil
	case config.CoinPolicySkillScaled:
		return SkillScaledCoins{}, nil
	default:
		return nil, fmt.Errorf("dda: unknown coin policy %q", name)
	}
}
