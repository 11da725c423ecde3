package tui

import (
	"path/filepath"
	"testing"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/core"
	"github.com/vovakirdan/lane-runner/internal/logging"
	"github.com/vovakirdan/lane-runner/internal/profiler"
)

func sessionMetrics() profiler.Snapshot {
	return profiler.Snapshot{
		ReactionTime:         0.6,
		NearMissDistance:     40,
		CoinCollectionRate:   0.5,
		LaneChangesPerMinute: 12,
		PlayTime:             30,
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.DDA.Learned.AsyncRetrain = false
	return cfg
}

func playOneGame(t *testing.T, p *Player, ticks int) {
	t.Helper()
	session := p.NewSession(core.RuntimeConfig{ScreenW: 40, ScreenH: 20, TickRate: 60, Seed: 7}, config.DifficultyAdaptive)
	session.StartGame()
	for i := 0; i < ticks; i++ {
		session.Update()
	}
	session.EndGame()
}

func TestPlayerRecordsGames(t *testing.T) {
	dir := t.TempDir()
	p := OpenPlayer(testConfig(), dir, logging.Discard(), nil)

	playOneGame(t, p, 120)

	if p.Store() == nil || p.Scores() == nil {
		t.Fatal("Player should have storage in a writable directory")
	}
	if got := len(p.Store().History()); got != 1 {
		t.Errorf("History length = %d, expected 1", got)
	}
	entries, err := p.Scores().TopScores(10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Score log length = %d, expected 1", len(entries))
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened := OpenPlayer(testConfig(), dir, logging.Discard(), nil)
	defer reopened.Close()
	if got := reopened.Store().Stats().GamesPlayed; got != 1 {
		t.Errorf("GamesPlayed after reopen = %d, expected 1", got)
	}
}

func TestPlayerWithoutLearnedPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.DDA.Learned.Enabled = false

	p := OpenPlayer(cfg, t.TempDir(), nil, nil)
	defer p.Close()
	if p.learned != nil {
		t.Error("Learned policy should be disabled")
	}
	playOneGame(t, p, 30)
}

func TestPlayerUnknownCoinPolicyFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.DDA.CoinPolicy = "lottery"

	p := OpenPlayer(cfg, t.TempDir(), nil, nil)
	defer p.Close()
	if p.heuristic.Coins == nil {
		t.Error("Coin policy should fall back to fixed coins")
	}
}

func TestScoresPath(t *testing.T) {
	tests := []struct {
		name     string
		scoresDB string
		want     string
	}{
		{"relative", "scores.db", filepath.Join("/data", "scores.db")},
		{"absolute", "/var/lib/scores.db", "/var/lib/scores.db"},
		{"disabled", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoresPath(tt.scoresDB, "/data"); got != tt.want {
				t.Errorf("ScoresPath(%q) = %q, expected %q", tt.scoresDB, got, tt.want)
			}
		})
	}
}
