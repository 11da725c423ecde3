package tui

import (
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/core"
	"github.com/vovakirdan/lane-runner/internal/dda"
	"github.com/vovakirdan/lane-runner/internal/logging"
	"github.com/vovakirdan/lane-runner/internal/metrics"
	"github.com/vovakirdan/lane-runner/internal/runner"
	"github.com/vovakirdan/lane-runner/internal/storage"
)

// Player bundles one player's persistent state and difficulty policies.
// Storage is optional: when the data directory is unusable the player
// still gets a working in-memory stack.
type Player struct {
	cfg       config.Config
	dataDir   string
	logger    *log.Logger
	metrics   *metrics.Manager
	heuristic *dda.Heuristic
	learned   *dda.LearnedPolicy
	recorder  *dda.Recorder
	store     *storage.DataStore
	scores    *storage.ScoreLog
}

// OpenPlayer loads the player stored in dataDir. Storage failures are
// logged and leave the corresponding component disabled.
func OpenPlayer(cfg config.Config, dataDir string, logger *log.Logger, m *metrics.Manager) *Player {
	logger = logging.OrDiscard(logger)
	p := &Player{cfg: cfg, dataDir: dataDir, logger: logger, metrics: m}

	coins, err := dda.NewCoinPolicy(cfg.DDA.CoinPolicy)
	if err != nil {
		logger.Warn("unknown coin policy, using fixed coins", "error", err)
		coins = dda.FixedCoins{Value: 1}
	}
	p.heuristic = &dda.Heuristic{
		ReactionCap:       cfg.DDA.ReactionCap,
		ExperienceSeconds: cfg.DDA.ExperienceSeconds,
		Coins:             coins,
	}

	store, err := storage.Open(dataDir,
		storage.WithHistoryLimit(cfg.Storage.HistoryLimit),
		storage.WithLogger(logger),
	)
	if err != nil {
		logger.Warn("player data unavailable, progress will not be saved", "error", err)
	} else {
		p.store = store
	}

	if scoresPath := ScoresPath(cfg.Storage.ScoresDB, dataDir); scoresPath != "" {
		scores, err := storage.OpenScoreLog(scoresPath)
		if err != nil {
			logger.Warn("score log unavailable", "error", err)
		} else {
			p.scores = scores
		}
	}

	opts := []dda.Option{dda.WithLogger(logger), dda.WithMetrics(m)}
	if cfg.DDA.Learned.Enabled {
		p.learned = dda.NewLearnedPolicy(p.heuristic, cfg.DDA.Learned, opts...)
	}
	// Typed nils must not reach the recorder's interfaces.
	var st dda.Store
	if p.store != nil {
		st = p.store
	}
	var sl dda.ScoreLog
	if p.scores != nil {
		sl = p.scores
	}
	p.recorder = dda.NewRecorder(st, sl, p.learned, opts...)
	p.recorder.Restore()
	return p
}

// ScoresPath resolves the score database path. Relative paths live inside
// dataDir; an empty path disables the score log.
func ScoresPath(scoresDB, dataDir string) string {
	if scoresDB == "" {
		return ""
	}
	if expanded, err := storage.ExpandHome(scoresDB); err == nil && expanded != scoresDB {
		return expanded
	}
	if filepath.IsAbs(scoresDB) {
		return scoresDB
	}
	return filepath.Join(dataDir, scoresDB)
}

// NewSession creates a game session wired to this player's policies.
func (p *Player) NewSession(rt core.RuntimeConfig, preset config.DifficultyPreset) *runner.GameSession {
	var policy dda.Predictor = p.heuristic
	if p.learned != nil {
		policy = p.learned
	}
	return runner.New(p.cfg, rt, runner.Deps{
		Heuristic: p.heuristic,
		Policy:    policy,
		History:   p.recorder,
		Sink:      p.recorder,
		Preset:    preset,
		Logger:    p.logger,
		Metrics:   p.metrics,
	})
}

// HighScore returns the best recorded score.
func (p *Player) HighScore() int {
	if p.store == nil {
		return 0
	}
	return p.store.Stats().HighScore
}

// Store returns the player's data store, or nil without storage.
func (p *Player) Store() *storage.DataStore {
	return p.store
}

// Scores returns the player's score log, or nil without one.
func (p *Player) Scores() *storage.ScoreLog {
	return p.scores
}

// Close waits for background training, saves the model and closes the
// score log.
func (p *Player) Close() error {
	p.recorder.Flush()
	if p.scores != nil {
		return p.scores.Close()
	}
	return nil
}
