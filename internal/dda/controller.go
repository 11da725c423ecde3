package dda

import (
	"math"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/profiler"
)

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// History exposes the metrics of the most recently recorded session.
type History interface {
	LastMetrics() (profiler.Snapshot, bool)
}

// SessionSink receives finished sessions.
type SessionSink interface {
	RecordSession(o SessionOutcome)
}

// SessionOutcome describes a finished session.
type SessionOutcome struct {
	Metrics       profiler.Snapshot
	Params        Params
	Score         int
	Duration      float64 // Seconds
	SuccessRating float64
	Tier          Tier
}

// live holds the parameters at full precision. Integer fields are rounded
// when exposed so small smoothing steps are not lost.
type live struct {
	speed      float64
	frequency  float64
	complexity float64
	coin       float64
}

func liveFrom(p Params) live {
	return live{
		speed:      p.Speed,
		frequency:  float64(p.ObstacleFrequency),
		complexity: p.PatternComplexity,
		coin:       float64(p.CoinValue),
	}
}

func (l live) params() Params {
	return Params{
		Speed:             l.speed,
		ObstacleFrequency: int(math.Round(l.frequency)),
		PatternComplexity: l.complexity,
		CoinValue:         int(math.Round(l.coin)),
	}.Clamp()
}

// Controller owns the live difficulty parameters of one game session.
// It is driven by the game loop and is not safe for concurrent use.
type Controller struct {
	profiler  *profiler.Profiler
	heuristic *Heuristic
	policy    Predictor
	history   History
	sink      SessionSink
	preset    config.DifficultyPreset

	adjustEvery int
	smoothing   float64

	state   State
	current live
	ticks   int
	opts    options
}

// ControllerDeps are the collaborators of a Controller. Only Profiler is
// required; a nil Policy uses Heuristic.
type ControllerDeps struct {
	Profiler  *profiler.Profiler
	Heuristic *Heuristic
	Policy    Predictor
	History   History
	Sink      SessionSink
	Preset    config.DifficultyPreset
}

// NewController creates an idle controller.
func NewController(deps ControllerDeps, cfg config.DDAConfig, opts ...Option) *Controller {
	h := deps.Heuristic
	if h == nil {
		h = NewHeuristic()
	}
	policy := deps.Policy
	if policy == nil {
		policy = h
	}
	prof := deps.Profiler
	if prof == nil {
		prof = profiler.New()
	}
	adjustEvery := cfg.AdjustEveryTicks
	if adjustEvery < 1 {
		adjustEvery = 180
	}
	smoothing := cfg.Smoothing
	if smoothing <= 0 || smoothing > 1 {
		smoothing = 0.3
	}

	c := &Controller{
		profiler:    prof,
		heuristic:   h,
		policy:      policy,
		history:     deps.History,
		sink:        deps.Sink,
		preset:      deps.Preset,
		adjustEvery: adjustEvery,
		smoothing:   smoothing,
		opts:        buildOptions(opts),
	}
	c.current = liveFrom(h.Predict(prof.Snapshot()))
	return c
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Params returns the live parameters, always inside their safe ranges.
func (c *Controller) Params() Params {
	return c.current.params()
}

// Begin enters the active state and seeds the live parameters. A second
// call while active is a no-op.
func (c *Controller) Begin() {
	if c.state == StateActive {
		return
	}
	c.state = StateActive
	c.ticks = 0
	c.current = liveFrom(c.seed())
	c.publish()
}

func (c *Controller) seed() Params {
	if c.history != nil {
		if last, ok := c.history.LastMetrics(); ok {
			c.opts.logger.Debug("seeding from last session", "metrics", last)
			return c.policy.Predict(last)
		}
	}
	if pm, ok := config.MetricsForPreset(c.preset); ok {
		cold := c.profiler.Snapshot()
		cold.ReactionTime = pm.ReactionTime
		cold.CoinCollectionRate = pm.CoinCollectionRate
		cold.LaneChangesPerMinute = pm.LaneChangesPerMinute
		cold.PlayTime = pm.PlayTime
		c.opts.logger.Debug("seeding from preset", "preset", c.preset)
		return c.heuristic.Predict(cold)
	}
	return c.heuristic.Predict(c.profiler.Snapshot())
}

// Tick advances the adjustment cadence by one simulation tick and reports
// whether an adjustment ran.
func (c *Controller) Tick() bool {
	if c.state != StateActive {
		return false
	}
	c.ticks++
	if c.ticks%c.adjustEvery != 0 {
		return false
	}
	c.Adjust()
	return true
}

// Adjust moves the live parameters one smoothing step towards the policy's
// target for the current metrics.
func (c *Controller) Adjust() {
	target := c.policy.Predict(c.profiler.Snapshot()).Clamp()
	c.current = blend(c.current, liveFrom(target), c.smoothing)
	c.opts.metrics.IncAdjustments()
	c.publish()
}

// blend moves cur towards target by factor k in [0, 1]. It never overshoots.
func blend(cur, target live, k float64) live {
	step := func(from, to float64) float64 {
		if !finite(from) {
			return to
		}
		return from + k*(to-from)
	}
	next := live{
		speed:      step(cur.speed, target.speed),
		frequency:  step(cur.frequency, target.frequency),
		complexity: step(cur.complexity, target.complexity),
		coin:       step(cur.coin, target.coin),
	}
	next.speed = clampFinite(next.speed, MinSpeed, MaxSpeed)
	next.frequency = clampFinite(next.frequency, MinObstacleFrequency, MaxObstacleFrequency)
	next.complexity = clampFinite(next.complexity, MinPatternComplexity, MaxPatternComplexity)
	next.coin = math.Max(next.coin, MinCoinValue)
	return next
}

func (c *Controller) publish() {
	p := c.Params()
	c.opts.metrics.ObserveParams(p.Speed, p.ObstacleFrequency, p.PatternComplexity, p.CoinValue)
}

// End finishes the session and hands it to the sink. It returns false when
// no session was active.
func (c *Controller) End(score int, durationSeconds float64) (SessionOutcome, bool) {
	if c.state != StateActive {
		return SessionOutcome{}, false
	}
	c.state = StateIdle

	p := c.Params()
	o := SessionOutcome{
		Metrics:       c.profiler.Snapshot(),
		Params:        p,
		Score:         score,
		Duration:      durationSeconds,
		SuccessRating: SuccessRating(score, durationSeconds),
		Tier:          TierFor(p),
	}
	c.opts.logger.Info("session ended",
		"score", score,
		"duration", durationSeconds,
		"success", o.SuccessRating,
		"tier", o.Tier,
	)
	if c.sink != nil {
		c.sink.RecordSession(o)
	}
	return o, true
}
