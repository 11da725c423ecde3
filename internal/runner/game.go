// Package runner implements the three-lane endless runner. The player
// dodges obstacles and collects coins while a difficulty controller tunes
// speed, spawn rate and pattern complexity from the player's behavior.
package runner

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/core"
	"github.com/vovakirdan/lane-runner/internal/dda"
	"github.com/vovakirdan/lane-runner/internal/logging"
	"github.com/vovakirdan/lane-runner/internal/metrics"
	"github.com/vovakirdan/lane-runner/internal/profiler"
)

// Direction of a lane change.
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

// simEpoch anchors simulated time; only differences matter.
var simEpoch = time.Unix(0, 0)

// Deps are the difficulty collaborators of a session. All are optional.
type Deps struct {
	Heuristic *dda.Heuristic
	Policy    dda.Predictor
	History   dda.History
	Sink      dda.SessionSink
	Preset    config.DifficultyPreset
	Logger    *log.Logger
	Metrics   *metrics.Manager
}

// GameSession is one player's game. It advances in fixed ticks and keeps
// simulated time, so a paused game does not accumulate play time.
type GameSession struct {
	cfg     config.GameConfig
	runtime core.RuntimeConfig
	logger  *log.Logger

	prof  *profiler.Profiler
	ctrl  *dda.Controller
	field *Field

	phase    core.Phase
	paused   bool
	lane     int
	score    int
	ticks    int // Ticks while playing and unpaused
	simTicks int // Ticks since the session was created; drives the clock
	games    int
}

// New creates a session on the title screen.
func New(cfg config.Config, runtime core.RuntimeConfig, deps Deps) *GameSession {
	if runtime.TickRate <= 0 {
		runtime.TickRate = core.DefaultConfig().TickRate
	}

	g := &GameSession{
		cfg:     cfg.Game,
		runtime: runtime,
		logger:  logging.OrDiscard(deps.Logger),
		lane:    profiler.DefaultLane,
		phase:   core.PhaseTitle,
	}
	g.prof = profiler.New(
		profiler.WithWindowSize(cfg.Profiler.WindowSize),
		profiler.WithDefaults(cfg.Profiler.DefaultReactionTime, cfg.Profiler.DefaultNearMiss),
		profiler.WithClock(g.now),
	)
	g.ctrl = dda.NewController(dda.ControllerDeps{
		Profiler:  g.prof,
		Heuristic: deps.Heuristic,
		Policy:    deps.Policy,
		History:   deps.History,
		Sink:      deps.Sink,
		Preset:    deps.Preset,
	}, cfg.DDA, dda.WithLogger(deps.Logger), dda.WithMetrics(deps.Metrics))
	g.field = NewField(cfg.Game, runtime.Seed)
	return g
}

// now is the simulated clock fed to the profiler.
func (g *GameSession) now() time.Time {
	return simEpoch.Add(time.Duration(g.simTicks) * time.Second / time.Duration(g.runtime.TickRate))
}

// StartGame begins a new game. It is a no-op while a game is running.
func (g *GameSession) StartGame() {
	if g.phase == core.PhasePlaying {
		return
	}
	g.games++
	g.prof.Reset()
	g.field.Reset(g.runtime.Seed + int64(g.games-1))
	g.lane = profiler.DefaultLane
	g.score = 0
	g.ticks = 0
	g.paused = false
	g.phase = core.PhasePlaying

	g.prof.StartSession()
	g.ctrl.Begin()
	g.logger.Debug("game started", "params", g.ctrl.Params())
}

// EndGame finishes the running game and records it. Ending a game that is
// not running is a no-op.
func (g *GameSession) EndGame() {
	if g.phase != core.PhasePlaying {
		return
	}
	g.prof.EndSession()
	g.paused = false
	g.phase = core.PhaseGameOver
	g.ctrl.End(g.score, g.Duration())
}

// TogglePause pauses or resumes a running game. A pause ends the profiler
// session and resuming starts a new one.
func (g *GameSession) TogglePause() {
	if g.phase != core.PhasePlaying {
		return
	}
	g.paused = !g.paused
	if g.paused {
		g.prof.EndSession()
	} else {
		g.prof.StartSession()
	}
}

// MovePlayer shifts the player one lane. Moves past the edge are ignored.
func (g *GameSession) MovePlayer(dir Direction) {
	if g.phase != core.PhasePlaying || g.paused {
		return
	}
	lane := core.Clamp(g.lane+int(dir), 0, Lanes-1)
	if lane == g.lane {
		return
	}
	g.lane = lane
	g.prof.TrackLaneChange(lane, g.now())
}

// Update advances the simulation by one tick.
func (g *GameSession) Update() {
	g.simTicks++
	if g.phase != core.PhasePlaying || g.paused {
		return
	}
	g.ticks++

	p := g.ctrl.Params()
	g.field.Advance(p.Speed)

	if g.ticks%SpawnInterval(p) == 0 {
		now := g.now()
		for _, o := range g.field.Spawn(p.PatternTier()) {
			g.prof.TrackObstacleSpawn(profiler.ObstacleID(o.ID), o.Lane, now)
		}
	}

	if g.resolveObstacles() {
		g.EndGame()
		return
	}
	g.resolveCoins(p.CoinValue)
	g.ctrl.Tick()
}

// resolveObstacles reports a collision and emits near miss and avoided
// events for obstacles that passed the player's row.
func (g *GameSession) resolveObstacles() bool {
	hit := g.hitBand()
	window := float64(g.cfg.NearMissWindow)

	kept := g.field.obstacles[:0]
	collided := false
	for _, o := range g.field.obstacles {
		if o.Lane == g.lane {
			if hit.Contains(o.Y) {
				collided = true
			} else if gap := hit.GapAbove(o.Y); gap >= 0 && gap < o.closest {
				o.closest = gap
			}
		}

		if hit.Passed(o.Y) {
			if o.closest <= window {
				g.prof.TrackNearMiss(profiler.ObstacleID(o.ID), o.closest)
			} else {
				g.prof.TrackObstacleAvoided(profiler.ObstacleID(o.ID))
			}
			continue
		}
		kept = append(kept, o)
	}
	g.field.obstacles = kept
	return collided
}

func (g *GameSession) resolveCoins(value int) {
	hit := g.hitBand()
	bottom := float64(g.cfg.Height)

	kept := g.field.coins[:0]
	for _, c := range g.field.coins {
		switch {
		case c.Lane == g.lane && hit.Contains(c.Y):
			g.score += value
			g.prof.TrackCoinCollected()
		case c.Y > bottom:
			g.prof.TrackCoinMissed()
		default:
			kept = append(kept, c)
		}
	}
	g.field.coins = kept
}

// hitBand is the collision band around the player's row.
func (g *GameSession) hitBand() core.Band {
	return core.BandAround(float64(g.cfg.PlayerY), float64(g.cfg.HitBand))
}

// Step applies one frame of input and advances the simulation.
func (g *GameSession) Step(in core.InputFrame) core.StepResult {
	switch g.phase {
	case core.PhaseTitle:
		if in.Has(core.ActionStart) || in.Has(core.ActionRestart) {
			g.StartGame()
		}
	case core.PhaseGameOver:
		if in.Has(core.ActionRestart) || in.Has(core.ActionStart) {
			g.StartGame()
		}
	case core.PhasePlaying:
		if in.Has(core.ActionPause) {
			g.TogglePause()
		}
		if in.Has(core.ActionLeft) {
			g.MovePlayer(Left)
		}
		if in.Has(core.ActionRight) {
			g.MovePlayer(Right)
		}
	}

	g.Update()
	return core.StepResult{State: g.State()}
}

// State returns the current game state.
func (g *GameSession) State() core.GameState {
	return core.GameState{
		Phase:    g.phase,
		Score:    g.score,
		GameOver: g.phase == core.PhaseGameOver,
		Paused:   g.paused,
	}
}

// Params returns the live difficulty parameters.
func (g *GameSession) Params() dda.Params {
	return g.ctrl.Params()
}

// Tier returns the difficulty label for the HUD.
func (g *GameSession) Tier() dda.Tier {
	return dda.TierFor(g.ctrl.Params())
}

// Score returns the current score.
func (g *GameSession) Score() int {
	return g.score
}

// Lane returns the player's lane.
func (g *GameSession) Lane() int {
	return g.lane
}

// Duration returns the simulated play time of the current game in seconds.
func (g *GameSession) Duration() float64 {
	return float64(g.ticks) / float64(g.runtime.TickRate)
}

// Metrics returns the profiler's current snapshot.
func (g *GameSession) Metrics() profiler.Snapshot {
	return g.prof.Snapshot()
}

// Resize updates the terminal dimensions used by Render.
func (g *GameSession) Resize(w, h int) {
	g.runtime.ScreenW = w
	g.runtime.ScreenH = h
}
