package runner

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/dda"
)

// Lanes is the number of tracks.
const Lanes = 3

// followUpGap is the vertical distance of a tier 3 follow-up obstacle behind its wave.
const followUpGap = 200.0

// Obstacle blocks one lane. Y is the obstacle's center in logical pixels.
type Obstacle struct {
	ID   uint64
	Lane int
	Y    float64

	closest float64 // Smallest gap to the hit band while sharing the player's lane
}

// Coin awards points when it reaches the player's lane row.
type Coin struct {
	ID   uint64
	Lane int
	Y    float64
}

// Field owns the entities on screen. IDs increase monotonically per game.
type Field struct {
	obstacles []Obstacle
	coins     []Coin
	rng       *rand.Rand
	nextID    uint64
	cfg       config.GameConfig
}

// NewField creates an empty field seeded for deterministic patterns.
func NewField(cfg config.GameConfig, seed int64) *Field {
	f := &Field{
		obstacles: make([]Obstacle, 0, 16),
		coins:     make([]Coin, 0, 8),
		cfg:       cfg,
	}
	f.Reset(seed)
	return f
}

// Reset clears all entities and reseeds the RNG.
func (f *Field) Reset(seed int64) {
	f.obstacles = f.obstacles[:0]
	f.coins = f.coins[:0]
	f.rng = rand.New(rand.NewSource(seed))
	f.nextID = 0
}

func (f *Field) id() uint64 {
	f.nextID++
	return f.nextID
}

// Spawn adds one wave for the given pattern tier and returns the new
// obstacles. An obstacle is only placed while every stretch of track as tall
// as the hit band keeps a free lane, counting earlier waves and follow-ups.
func (f *Field) Spawn(tier int) []Obstacle {
	blocked := 1
	switch {
	case tier >= 3:
		blocked = 2
	case tier == 2 && f.rng.Intn(2) == 0:
		blocked = 2
	}

	lanes := f.rng.Perm(Lanes)
	spawnY := float64(f.cfg.ObstacleSpawnY)

	start := len(f.obstacles)
	busy := f.lanesNear(spawnY)
	var open []int
	for _, lane := range lanes {
		if len(f.obstacles)-start < blocked && canBlock(busy, lane) {
			busy[lane] = true
			f.obstacles = append(f.obstacles, f.newObstacle(lane, spawnY))
			continue
		}
		if !busy[lane] {
			open = append(open, lane)
		}
	}

	if len(open) > 0 && f.rng.Float64() < f.cfg.CoinChance {
		lane := open[f.rng.Intn(len(open))]
		f.coins = append(f.coins, Coin{ID: f.id(), Lane: lane, Y: float64(f.cfg.CoinSpawnY)})
	}

	if tier >= 3 && len(open) > 0 {
		// Staggered follow-up in a lane left open by the wave
		followY := spawnY - followUpGap
		if lane := open[0]; canBlock(f.lanesNear(followY), lane) {
			f.obstacles = append(f.obstacles, f.newObstacle(lane, followY))
		}
	}

	return f.obstacles[start:]
}

// lanesNear marks the lanes holding an obstacle that can share the hit band
// with an obstacle at y.
func (f *Field) lanesNear(y float64) [Lanes]bool {
	var busy [Lanes]bool
	reach := 2 * float64(f.cfg.HitBand)
	for _, o := range f.obstacles {
		if math.Abs(o.Y-y) <= reach {
			busy[o.Lane] = true
		}
	}
	return busy
}

// canBlock reports whether lane can take an obstacle while one lane stays free.
func canBlock(busy [Lanes]bool, lane int) bool {
	busy[lane] = true
	for _, b := range busy {
		if !b {
			return true
		}
	}
	return false
}

func (f *Field) newObstacle(lane int, y float64) Obstacle {
	return Obstacle{ID: f.id(), Lane: lane, Y: y, closest: math.Inf(1)}
}

// Advance moves every entity down by speed pixels.
func (f *Field) Advance(speed float64) {
	for i := range f.obstacles {
		f.obstacles[i].Y += speed
	}
	for i := range f.coins {
		f.coins[i].Y += speed
	}
}

// Obstacles returns the obstacles on the field.
func (f *Field) Obstacles() []Obstacle {
	return f.obstacles
}

// Coins returns the coins on the field.
func (f *Field) Coins() []Coin {
	return f.coins
}

// SpawnInterval returns the ticks between waves for the live parameters.
func SpawnInterval(p dda.Params) int {
	return dda.SpawnInterval(p.ObstacleFrequency)
}
