// Package profiler turns raw, irregular gameplay events (lane changes,
// obstacle spawns, near misses, coin pickups) into a stable snapshot of
// player behavior used by the difficulty controller.
package profiler

import (
	"slices"
	"time"
)

// Defaults used when no samples have been recorded yet. Neutral mid-range
// values keep a cold start from biasing towards either extreme.
const (
	DefaultWindowSize   = 50
	DefaultReactionTime = 0.5  // seconds
	DefaultNearMiss     = 50.0 // pixels
	DefaultLane         = 1    // Center lane
)

// ObstacleID identifies a spawned obstacle. IDs increase monotonically per game.
type ObstacleID uint64

// Snapshot is an immutable view of the player's recent behavior.
type Snapshot struct {
	ReactionTime         float64 `json:"reaction_time"`           // Average seconds from spawn to leaving the obstacle's lane
	NearMissDistance     float64 `json:"near_miss_distance"`      // Average pixel gap of close dodges
	CoinCollectionRate   float64 `json:"coin_collection_rate"`    // collected / (collected + missed)
	LaneChangesPerMinute float64 `json:"lane_changes_per_minute"` // Over accumulated plus in-progress play time
	ObstaclesAvoided     int     `json:"obstacles_avoided"`
	PlayTime             float64 `json:"play_time"` // Seconds accumulated by ended sessions
}

type activeObstacle struct {
	lane      int
	spawnTime time.Time
}

// Profiler is the metrics store. It is owned by a single game session and is
// not safe for concurrent use.
type Profiler struct {
	reactionTimes *Ring
	nearMisses    *Ring

	coinRate         float64
	coinsCollected   int
	coinsMissed      int
	laneChanges      int
	obstaclesAvoided int
	playTime         time.Duration

	sessionStart time.Time
	inSession    bool

	active   map[ObstacleID]activeObstacle
	lastLane int

	defaultReaction float64
	defaultNearMiss float64
	clock           func() time.Time
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithWindowSize sets the number of recent samples kept per rolling window.
func WithWindowSize(n int) Option {
	return func(p *Profiler) {
		if n > 0 {
			p.reactionTimes = NewRing(n)
			p.nearMisses = NewRing(n)
		}
	}
}

// WithDefaults sets the values reported while a window is empty.
func WithDefaults(reactionTime, nearMiss float64) Option {
	return func(p *Profiler) {
		if reactionTime > 0 {
			p.defaultReaction = reactionTime
		}
		if nearMiss > 0 {
			p.defaultNearMiss = nearMiss
		}
	}
}

// WithClock replaces the wall clock used to bracket sessions.
func WithClock(clock func() time.Time) Option {
	return func(p *Profiler) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// New creates a profiler with empty windows and zeroed counters.
func New(opts ...Option) *Profiler {
	p := &Profiler{
		reactionTimes:   NewRing(DefaultWindowSize),
		nearMisses:      NewRing(DefaultWindowSize),
		active:          make(map[ObstacleID]activeObstacle),
		lastLane:        DefaultLane,
		defaultReaction: DefaultReactionTime,
		defaultNearMiss: DefaultNearMiss,
		clock:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StartSession begins timing a play session. Calling it while a session is
// already running keeps the original start time.
func (p *Profiler) StartSession() {
	if p.inSession {
		return
	}
	p.sessionStart = p.clock()
	p.inSession = true
}

// EndSession adds the elapsed session time to the total play time.
// It is a no-op when no session is running.
func (p *Profiler) EndSession() {
	if !p.inSession {
		return
	}
	if elapsed := p.clock().Sub(p.sessionStart); elapsed > 0 {
		p.playTime += elapsed
	}
	p.inSession = false
}

// TrackLaneChange records a move to newLane. Leaving a lane that still holds
// unresolved obstacles yields one reaction-time sample per such obstacle,
// pushed in spawn order.
func (p *Profiler) TrackLaneChange(newLane int, now time.Time) {
	if newLane == p.lastLane {
		return
	}

	left := make([]ObstacleID, 0, len(p.active))
	for id, obs := range p.active {
		if obs.lane == p.lastLane {
			left = append(left, id)
		}
	}
	slices.Sort(left)
	for _, id := range left {
		p.reactionTimes.Push(now.Sub(p.active[id].spawnTime).Seconds())
	}

	p.laneChanges++
	p.lastLane = newLane
}

// TrackObstacleSpawn registers an active obstacle. A duplicate id overwrites.
func (p *Profiler) TrackObstacleSpawn(id ObstacleID, lane int, now time.Time) {
	p.active[id] = activeObstacle{lane: lane, spawnTime: now}
}

// TrackObstacleAvoided resolves an obstacle the player got past.
// Unknown ids are ignored.
func (p *Profiler) TrackObstacleAvoided(id ObstacleID) {
	if _, ok := p.active[id]; !ok {
		return
	}
	p.obstaclesAvoided++
	delete(p.active, id)
}

// TrackNearMiss records how close the player came to an obstacle and
// resolves it.
func (p *Profiler) TrackNearMiss(id ObstacleID, distance float64) {
	p.nearMisses.Push(distance)
	delete(p.active, id)
}

// TrackCoinCollected counts a collected coin.
func (p *Profiler) TrackCoinCollected() {
	p.coinsCollected++
	p.updateCoinRate()
}

// TrackCoinMissed counts a coin that left the screen uncollected.
func (p *Profiler) TrackCoinMissed() {
	p.coinsMissed++
	p.updateCoinRate()
}

func (p *Profiler) updateCoinRate() {
	total := p.coinsCollected + p.coinsMissed
	if total > 0 {
		p.coinRate = float64(p.coinsCollected) / float64(total)
	}
}

// Snapshot derives the current metrics.
func (p *Profiler) Snapshot() Snapshot {
	reaction, ok := p.reactionTimes.Mean()
	if !ok {
		reaction = p.defaultReaction
	}
	nearMiss, ok := p.nearMisses.Mean()
	if !ok {
		nearMiss = p.defaultNearMiss
	}

	return Snapshot{
		ReactionTime:         reaction,
		NearMissDistance:     nearMiss,
		CoinCollectionRate:   p.coinRate,
		LaneChangesPerMinute: p.laneChangesPerMinute(),
		ObstaclesAvoided:     p.obstaclesAvoided,
		PlayTime:             p.playTime.Seconds(),
	}
}

func (p *Profiler) laneChangesPerMinute() float64 {
	total := p.playTime
	if p.inSession {
		total += p.clock().Sub(p.sessionStart)
	}
	if total <= 0 {
		return 0
	}
	return float64(p.laneChanges) / total.Seconds() * 60
}

// Reset clears all counters, windows and tracked obstacles. Used at the start
// of a new game; a game may contain several sessions.
func (p *Profiler) Reset() {
	p.reactionTimes.Clear()
	p.nearMisses.Clear()
	p.coinRate = 0
	p.coinsCollected = 0
	p.coinsMissed = 0
	p.laneChanges = 0
	p.obstaclesAvoided = 0
	p.playTime = 0
	p.sessionStart = time.Time{}
	p.inSession = false
	clear(p.active)
	p.lastLane = DefaultLane
}
