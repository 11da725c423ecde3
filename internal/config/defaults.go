package config

import (
	_ "embed"
)

//go:embed defaults/runner.yaml
var defaultRunnerYAML []byte

// Default returns the hard-coded runner configuration.
// It mirrors defaults/runner.yaml and is used when the embedded file cannot be decoded.
func Default() Config {
	return Config{
		Game: GameConfig{
			Width:          400,
			Height:         600,
			PlayerY:        500,
			HitBand:        30,
			ObstacleSpawnY: -50,
			CoinSpawnY:     -30,
			NearMissWindow: 120,
			CoinChance:     0.5,
		},
		Profiler: ProfilerConfig{
			WindowSize:          50,
			DefaultReactionTime: 0.5,
			DefaultNearMiss:     50,
		},
		DDA: DDAConfig{
			AdjustEveryTicks:  180,
			Smoothing:         0.3,
			CoinPolicy:        CoinPolicyFixed,
			ReactionCap:       1.0,
			ExperienceSeconds: 300,
			Learned: LearnedConfig{
				Enabled:              true,
				MinExamples:          5,
				RetrainMinExamples:   10,
				RetrainEvery:         5,
				RidgeLambda:          1.0,
				MaxPersistedExamples: 20,
				AsyncRetrain:         true,
			},
		},
		Storage: StorageConfig{
			DataDir:      "~/.lane-runner",
			HistoryLimit: 20,
			ScoresDB:     "scores.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
