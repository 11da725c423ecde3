// Package config provides YAML-based configuration loading for the runner:
// playfield geometry, profiler windows, difficulty adaptation tuning and
// storage locations.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned by Validate when a field holds an unusable value.
var ErrInvalid = errors.New("config: invalid value")

// Config is the complete runner configuration.
type Config struct {
	Game     GameConfig     `yaml:"game" koanf:"game"`
	Profiler ProfilerConfig `yaml:"profiler" koanf:"profiler"`
	DDA      DDAConfig      `yaml:"dda" koanf:"dda"`
	Storage  StorageConfig  `yaml:"storage" koanf:"storage"`
	Log      LogConfig      `yaml:"log" koanf:"log"`
}

// GameConfig defines the playfield in logical pixels.
type GameConfig struct {
	Width          int     `yaml:"width" koanf:"width"`
	Height         int     `yaml:"height" koanf:"height"`
	PlayerY        int     `yaml:"player_y" koanf:"player_y"`
	HitBand        int     `yaml:"hit_band" koanf:"hit_band"`                 // Half-height of the collision band around PlayerY
	ObstacleSpawnY int     `yaml:"obstacle_spawn_y" koanf:"obstacle_spawn_y"` // Usually negative (above the screen)
	CoinSpawnY     int     `yaml:"coin_spawn_y" koanf:"coin_spawn_y"`
	NearMissWindow int     `yaml:"near_miss_window" koanf:"near_miss_window"` // Gap below which a dodge counts as a near miss
	CoinChance     float64 `yaml:"coin_chance" koanf:"coin_chance"`
}

// ProfilerConfig tunes the player metrics store.
type ProfilerConfig struct {
	WindowSize          int     `yaml:"window_size" koanf:"window_size"`
	DefaultReactionTime float64 `yaml:"default_reaction_time" koanf:"default_reaction_time"` // Seconds, used when no samples exist
	DefaultNearMiss     float64 `yaml:"default_near_miss" koanf:"default_near_miss"`         // Pixels, used when no samples exist
}

// DDAConfig tunes the difficulty controller and its policies.
type DDAConfig struct {
	AdjustEveryTicks  int           `yaml:"adjust_every_ticks" koanf:"adjust_every_ticks"`
	Smoothing         float64       `yaml:"smoothing" koanf:"smoothing"` // Fraction of the gap closed per adjustment
	CoinPolicy        string        `yaml:"coin_policy" koanf:"coin_policy"`
	ReactionCap       float64       `yaml:"reaction_cap" koanf:"reaction_cap"`             // Upper bound of the reaction term before weighting
	ExperienceSeconds float64       `yaml:"experience_seconds" koanf:"experience_seconds"` // Play time at which dampening stops
	Learned           LearnedConfig `yaml:"learned" koanf:"learned"`
}

// LearnedConfig tunes the learned policy.
type LearnedConfig struct {
	Enabled              bool    `yaml:"enabled" koanf:"enabled"`
	MinExamples          int     `yaml:"min_examples" koanf:"min_examples"`
	RetrainMinExamples   int     `yaml:"retrain_min_examples" koanf:"retrain_min_examples"`
	RetrainEvery         int     `yaml:"retrain_every" koanf:"retrain_every"`
	RidgeLambda          float64 `yaml:"ridge_lambda" koanf:"ridge_lambda"`
	MaxPersistedExamples int     `yaml:"max_persisted_examples" koanf:"max_persisted_examples"`
	AsyncRetrain         bool    `yaml:"async_retrain" koanf:"async_retrain"`
}

// StorageConfig locates persisted player data.
type StorageConfig struct {
	DataDir      string `yaml:"data_dir" koanf:"data_dir"`
	HistoryLimit int    `yaml:"history_limit" koanf:"history_limit"`
	ScoresDB     string `yaml:"scores_db" koanf:"scores_db"` // Relative paths resolve inside DataDir
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
}

// Coin policy names accepted in DDAConfig.CoinPolicy.
const (
	CoinPolicyFixed       = "fixed"
	CoinPolicySkillScaled = "skill_scaled"
)

// Validate checks that every field is usable by the runtime.
func (c Config) Validate() error {
	switch {
	case c.Game.Width <= 0 || c.Game.Height <= 0:
		return fmt.Errorf("%w: game dimensions must be positive", ErrInvalid)
	case c.Game.PlayerY <= 0 || c.Game.PlayerY >= c.Game.Height:
		return fmt.Errorf("%w: game.player_y must lie inside the playfield", ErrInvalid)
	case c.Game.HitBand <= 0:
		return fmt.Errorf("%w: game.hit_band must be positive", ErrInvalid)
	case c.Game.CoinChance < 0 || c.Game.CoinChance > 1:
		return fmt.Errorf("%w: game.coin_chance must be within [0, 1]", ErrInvalid)
	case c.Profiler.WindowSize < 1:
		return fmt.Errorf("%w: profiler.window_size must be at least 1", ErrInvalid)
	case c.DDA.AdjustEveryTicks < 1:
		return fmt.Errorf("%w: dda.adjust_every_ticks must be at least 1", ErrInvalid)
	case c.DDA.Smoothing <= 0 || c.DDA.Smoothing > 1:
		return fmt.Errorf("%w: dda.smoothing must be within (0, 1]", ErrInvalid)
	case c.DDA.CoinPolicy != CoinPolicyFixed && c.DDA.CoinPolicy != CoinPolicySkillScaled:
		return fmt.Errorf("%w: unknown dda.coin_policy %q", ErrInvalid, c.DDA.CoinPolicy)
	case c.DDA.ReactionCap <= 0:
		return fmt.Errorf("%w: dda.reaction_cap must be positive", ErrInvalid)
	case c.DDA.Learned.MinExamples < 1 || c.DDA.Learned.RetrainEvery < 1:
		return fmt.Errorf("%w: dda.learned example thresholds must be at least 1", ErrInvalid)
	case c.DDA.Learned.RidgeLambda < 0:
		return fmt.Errorf("%w: dda.learned.ridge_lambda must not be negative", ErrInvalid)
	case c.Storage.HistoryLimit < 1:
		return fmt.Errorf("%w: storage.history_limit must be at least 1", ErrInvalid)
	}
	return nil
}
