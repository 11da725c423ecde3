package runner

import (
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/core"
	"github.com/vovakirdan/lane-runner/internal/dda"
	"github.com/vovakirdan/lane-runner/internal/profiler"
)

type fixedPolicy struct{ p dda.Params }

func (f fixedPolicy) Predict(profiler.Snapshot) dda.Params { return f.p }

type seededHistory struct{}

func (seededHistory) LastMetrics() (profiler.Snapshot, bool) { return profiler.Snapshot{}, true }

type captureSink struct{ outcomes []dda.SessionOutcome }

func (c *captureSink) RecordSession(o dda.SessionOutcome) { c.outcomes = append(c.outcomes, o) }

// newFixedSession returns a session whose parameters stay at p.
func newFixedSession(t *testing.T, p dda.Params, sink dda.SessionSink) *GameSession {
	t.Helper()
	rt := core.DefaultConfig()
	rt.Seed = 42
	return New(config.Default(), rt, Deps{
		Policy:  fixedPolicy{p},
		History: seededHistory{},
		Sink:    sink,
	})
}

func TestStartAndEndGame(t *testing.T) {
	sink := &captureSink{}
	g := newFixedSession(t, dda.Params{Speed: 3, ObstacleFrequency: 60, PatternComplexity: 1, CoinValue: 1}, sink)

	if g.State().Phase != core.PhaseTitle {
		t.Fatalf("Expected title phase, got %v", g.State().Phase)
	}
	g.EndGame() // not running
	if len(sink.outcomes) != 0 {
		t.Fatal("EndGame() before StartGame() must not record")
	}

	g.StartGame()
	for i := 0; i < 30; i++ {
		g.Update()
	}
	g.EndGame()
	g.EndGame()

	if !g.State().GameOver {
		t.Error("Expected game over after EndGame()")
	}
	if len(sink.outcomes) != 1 {
		t.Fatalf("Sink received %d sessions, expected 1", len(sink.outcomes))
	}
	if got := sink.outcomes[0].Duration; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Duration = %v, expected 0.5", got)
	}
}

func TestSpawnIntervalWithZeroFrequency(t *testing.T) {
	if got := SpawnInterval(dda.Params{ObstacleFrequency: 0}); got != dda.MinObstacleFrequency {
		t.Fatalf("SpawnInterval() = %d, expected %d", got, dda.MinObstacleFrequency)
	}

	g := newFixedSession(t, dda.Params{Speed: 3, ObstacleFrequency: 0, PatternComplexity: 1, CoinValue: 1}, nil)
	g.StartGame()
	if g.Params().ObstacleFrequency != dda.MinObstacleFrequency {
		t.Fatalf("Live frequency = %d, expected clamp to %d", g.Params().ObstacleFrequency, dda.MinObstacleFrequency)
	}

	// A coin collected before the first wave must not disturb spawning
	g.field.coins = append(g.field.coins, Coin{ID: 1000, Lane: g.Lane(), Y: float64(g.cfg.PlayerY) - 3})
	for i := 0; i < dda.MinObstacleFrequency-1; i++ {
		g.Update()
	}
	if len(g.field.Obstacles()) != 0 {
		t.Fatal("Obstacles spawned before the interval elapsed")
	}
	g.Update()
	if len(g.field.Obstacles()) == 0 {
		t.Error("Expected a wave at the clamped interval")
	}
	if g.Score() != 1 {
		t.Errorf("Score = %d, expected 1 from the coin", g.Score())
	}
}

func TestCoinValueScoring(t *testing.T) {
	g := newFixedSession(t, dda.Params{Speed: 4, ObstacleFrequency: 60, PatternComplexity: 1, CoinValue: 3}, nil)
	g.StartGame()

	playerY := float64(g.cfg.PlayerY)
	g.field.coins = append(g.field.coins,
		Coin{ID: 1001, Lane: g.Lane(), Y: playerY - 4},
		Coin{ID: 1002, Lane: (g.Lane() + 1) % Lanes, Y: float64(g.cfg.Height) - 2},
	)
	g.Update()

	if g.Score() != 3 {
		t.Errorf("Score = %d, expected coin value 3", g.Score())
	}
	if got := g.Metrics().CoinCollectionRate; got != 0.5 {
		t.Errorf("CoinCollectionRate = %v, expected 0.5 (one collected, one missed)", got)
	}
}

func TestCollisionEndsGame(t *testing.T) {
	sink := &captureSink{}
	g := newFixedSession(t, dda.Params{Speed: 5, ObstacleFrequency: 60, PatternComplexity: 1, CoinValue: 1}, sink)
	g.StartGame()

	g.field.obstacles = append(g.field.obstacles, g.field.newObstacle(g.Lane(), float64(g.cfg.PlayerY)-5))
	g.Update()

	if !g.State().GameOver {
		t.Fatal("Expected collision to end the game")
	}
	if len(sink.outcomes) != 1 {
		t.Errorf("Sink received %d sessions, expected 1", len(sink.outcomes))
	}

	// Input after game over is ignored until restart
	g.MovePlayer(Left)
	if g.Lane() != profiler.DefaultLane {
		t.Error("MovePlayer() after game over should be ignored")
	}
	g.Step(frame(core.ActionRestart))
	if g.State().Phase != core.PhasePlaying || g.Score() != 0 {
		t.Error("Restart should begin a fresh game")
	}
}

func TestNearMissAndReaction(t *testing.T) {
	g := newFixedSession(t, dda.Params{Speed: 5, ObstacleFrequency: 60, PatternComplexity: 1, CoinValue: 1}, nil)
	g.StartGame()

	o := g.field.newObstacle(g.Lane(), 400)
	g.field.obstacles = append(g.field.obstacles, o)
	g.prof.TrackObstacleSpawn(profiler.ObstacleID(o.ID), o.Lane, g.now())

	// Six ticks later the obstacle sits at 430, 40px above the band top (470)
	for i := 0; i < 6; i++ {
		g.Update()
	}
	g.MovePlayer(Left)
	for i := 0; i < 30; i++ {
		g.Update()
	}

	if g.State().GameOver {
		t.Fatal("Player left the lane and should not collide")
	}
	s := g.Metrics()
	if math.Abs(s.NearMissDistance-40) > 1e-9 {
		t.Errorf("NearMissDistance = %v, expected 40", s.NearMissDistance)
	}
	if math.Abs(s.ReactionTime-0.1) > 1e-9 {
		t.Errorf("ReactionTime = %v, expected 0.1", s.ReactionTime)
	}
}

func TestAvoidedObstacle(t *testing.T) {
	g := newFixedSession(t, dda.Params{Speed: 5, ObstacleFrequency: 60, PatternComplexity: 1, CoinValue: 1}, nil)
	g.StartGame()

	o := g.field.newObstacle(0, 300)
	g.field.obstacles = append(g.field.obstacles, o)
	g.prof.TrackObstacleSpawn(profiler.ObstacleID(o.ID), o.Lane, g.now())

	for i := 0; i < 50; i++ {
		g.Update()
	}
	if got := g.Metrics().ObstaclesAvoided; got != 1 {
		t.Errorf("ObstaclesAvoided = %d, expected 1", got)
	}
	if got := g.Metrics().NearMissDistance; got != profiler.DefaultNearMiss {
		t.Errorf("NearMissDistance = %v, expected the default", got)
	}
}

func TestPauseStopsTime(t *testing.T) {
	sink := &captureSink{}
	g := newFixedSession(t, dda.Params{Speed: 3, ObstacleFrequency: 60, PatternComplexity: 1, CoinValue: 1}, sink)
	g.StartGame()

	for i := 0; i < 60; i++ {
		g.Update()
	}
	g.TogglePause()
	for i := 0; i < 120; i++ {
		g.Update()
	}
	if got := g.Duration(); math.Abs(got-1) > 1e-9 {
		t.Errorf("Duration = %v while paused, expected 1", got)
	}
	g.MovePlayer(Right)
	if g.Lane() != profiler.DefaultLane {
		t.Error("MovePlayer() while paused should be ignored")
	}

	g.TogglePause()
	for i := 0; i < 60; i++ {
		g.Update()
	}
	g.EndGame()

	if len(sink.outcomes) != 1 {
		t.Fatalf("Sink received %d sessions, expected 1", len(sink.outcomes))
	}
	o := sink.outcomes[0]
	if math.Abs(o.Duration-2) > 1e-9 {
		t.Errorf("Duration = %v, expected 2", o.Duration)
	}
	if math.Abs(o.Metrics.PlayTime-2) > 1e-9 {
		t.Errorf("Profiler play time = %v, expected 2", o.Metrics.PlayTime)
	}
}

func TestMovePlayerEdges(t *testing.T) {
	g := newFixedSession(t, dda.Params{Speed: 3, ObstacleFrequency: 60, PatternComplexity: 1, CoinValue: 1}, nil)
	g.StartGame()

	g.MovePlayer(Left)
	g.MovePlayer(Left)
	if g.Lane() != 0 {
		t.Errorf("Lane = %d, expected 0", g.Lane())
	}
	g.MovePlayer(Right)
	g.MovePlayer(Right)
	g.MovePlayer(Right)
	if g.Lane() != Lanes-1 {
		t.Errorf("Lane = %d, expected %d", g.Lane(), Lanes-1)
	}
}

func TestDeterministicUnderSeed(t *testing.T) {
	run := func() (*GameSession, []int) {
		rt := core.DefaultConfig()
		rt.Seed = 7
		g := New(config.Default(), rt, Deps{})
		g.StartGame()
		var scores []int
		for i := 0; i < 1200; i++ {
			switch {
			case i%37 == 0:
				g.MovePlayer(Left)
			case i%23 == 0:
				g.MovePlayer(Right)
			}
			g.Update()
			scores = append(scores, g.Score())
		}
		return g, scores
	}

	a, sa := run()
	b, sb := run()
	if !reflect.DeepEqual(sa, sb) {
		t.Error("Score traces differ under the same seed")
	}
	if !reflect.DeepEqual(a.field.Obstacles(), b.field.Obstacles()) || !reflect.DeepEqual(a.field.Coins(), b.field.Coins()) {
		t.Error("Fields differ under the same seed")
	}
	if a.Metrics() != b.Metrics() || a.Params() != b.Params() || a.State() != b.State() {
		t.Error("Metrics, params or state differ under the same seed")
	}
}

func TestSpawnPatternsKeepFreeLane(t *testing.T) {
	cfg := config.Default().Game
	cfg.CoinChance = 1
	for tier := 1; tier <= 3; tier++ {
		f := NewField(cfg, int64(tier))
		for i := 0; i < 200; i++ {
			f.Reset(f.rng.Int63())
			wave := f.Spawn(tier)

			rowLanes := map[int]bool{}
			for _, o := range wave {
				if o.Y == float64(cfg.ObstacleSpawnY) {
					rowLanes[o.Lane] = true
				}
			}
			if len(rowLanes) == 0 || len(rowLanes) >= Lanes {
				t.Fatalf("tier %d: wave blocks %d lanes", tier, len(rowLanes))
			}
			if tier == 1 && len(rowLanes) != 1 {
				t.Fatalf("tier 1 should block one lane, blocked %d", len(rowLanes))
			}
			if tier == 3 && len(wave) != 3 {
				t.Fatalf("tier 3 should add a follow-up, got %d obstacles", len(wave))
			}
			for _, c := range f.Coins() {
				if rowLanes[c.Lane] {
					t.Fatalf("tier %d: coin placed in blocked lane %d", tier, c.Lane)
				}
			}
		}
	}
}

func TestSpawnWavesKeepFreeLaneOverTime(t *testing.T) {
	cfg := config.Default().Game
	hit := core.BandAround(float64(cfg.PlayerY), float64(cfg.HitBand))

	tests := []struct {
		name     string
		speed    float64
		interval int
		tier     int
	}{
		{"skilled player", 9.79, 16, 3},
		{"fastest densest", dda.MaxSpeed, dda.MinObstacleFrequency, 3},
		{"slowest densest", dda.MinSpeed, dda.MinObstacleFrequency, 3},
		{"fastest sparsest", dda.MaxSpeed, dda.MaxObstacleFrequency, 3},
		{"slowest sparsest", dda.MinSpeed, dda.MaxObstacleFrequency, 3},
		{"follow-up meets next wave", 12.5, 16, 3},
		{"tier 2 densest", dda.MaxSpeed, dda.MinObstacleFrequency, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewField(cfg, 42)
			waves, spawned := 0, 0
			for tick := 1; tick <= 7200; tick++ {
				f.Advance(tt.speed)
				if tick%tt.interval == 0 {
					waves++
					spawned += len(f.Spawn(tt.tier))
				}

				var inBand [Lanes]bool
				kept := f.obstacles[:0]
				for _, o := range f.obstacles {
					if hit.Contains(o.Y) {
						inBand[o.Lane] = true
					}
					if !hit.Passed(o.Y) {
						kept = append(kept, o)
					}
				}
				f.obstacles = kept

				if !slices.Contains(inBand[:], false) {
					t.Fatalf("tick %d: every lane has an obstacle inside the hit band", tick)
				}
			}
			if spawned < waves {
				t.Errorf("spawned %d obstacles over %d waves, expected at least one per wave", spawned, waves)
			}
		})
	}
}

func TestIDsIncrease(t *testing.T) {
	f := NewField(config.Default().Game, 1)
	var last uint64
	for i := 0; i < 50; i++ {
		for _, o := range f.Spawn(3) {
			if o.ID <= last {
				t.Fatalf("ID %d not above %d", o.ID, last)
			}
			last = o.ID
		}
	}
}

func TestRenderHUD(t *testing.T) {
	g := newFixedSession(t, dda.Params{Speed: 3, ObstacleFrequency: 60, PatternComplexity: 1, CoinValue: 1}, nil)
	s := core.NewScreen(60, 20)

	g.Render(s)
	if !containsRow(s, "LANE RUNNER") {
		t.Error("Title screen should show the game name")
	}

	g.StartGame()
	g.Render(s)
	if !containsRow(s, "Score: 0") || !containsRow(s, string(dda.TierNovice)) {
		t.Errorf("HUD missing score or tier:\n%s", s.String())
	}
}

func frame(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

func containsRow(s *core.Screen, text string) bool {
	for y := 0; y < s.Height(); y++ {
		if strings.Contains(s.Row(y), text) {
			return true
		}
	}
	return false
}
