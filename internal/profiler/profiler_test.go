package profiler

import (
	"math"
	"reflect"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for deterministic session timing.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestProfiler(opts ...Option) (*Profiler, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(opts...), clock
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSnapshotColdStartDefaults(t *testing.T) {
	p, _ := newTestProfiler()
	s := p.Snapshot()

	if s.ReactionTime != DefaultReactionTime {
		t.Errorf("ReactionTime = %v, expected %v", s.ReactionTime, DefaultReactionTime)
	}
	if s.NearMissDistance != DefaultNearMiss {
		t.Errorf("NearMissDistance = %v, expected %v", s.NearMissDistance, DefaultNearMiss)
	}
	if s.CoinCollectionRate != 0 || s.LaneChangesPerMinute != 0 || s.ObstaclesAvoided != 0 || s.PlayTime != 0 {
		t.Errorf("Cold snapshot should be zeroed, got %+v", s)
	}
}

func TestSessionAccumulatesPlayTime(t *testing.T) {
	p, clock := newTestProfiler()

	p.StartSession()
	clock.Advance(30 * time.Second)
	p.EndSession()

	p.StartSession()
	clock.Advance(15 * time.Second)
	p.EndSession()

	if got := p.Snapshot().PlayTime; !approx(got, 45) {
		t.Errorf("PlayTime = %v, expected 45", got)
	}
}

func TestEndSessionWithoutStartIsNoop(t *testing.T) {
	p, clock := newTestProfiler()

	p.EndSession()
	clock.Advance(time.Minute)
	p.EndSession()

	if p.Snapshot().PlayTime != 0 {
		t.Error("EndSession without StartSession should not add play time")
	}

	p.StartSession()
	clock.Advance(10 * time.Second)
	p.EndSession()
	p.EndSession() // second end is a no-op

	if got := p.Snapshot().PlayTime; !approx(got, 10) {
		t.Errorf("PlayTime = %v, expected 10", got)
	}
}

func TestReactionTimeFromLaneChange(t *testing.T) {
	p, clock := newTestProfiler()
	p.StartSession()

	spawn := clock.Now()
	p.TrackObstacleSpawn(1, DefaultLane, spawn)
	p.TrackObstacleSpawn(2, 0, spawn) // different lane, no sample

	p.TrackLaneChange(2, spawn.Add(400*time.Millisecond))

	if got := p.Snapshot().ReactionTime; !approx(got, 0.4) {
		t.Errorf("ReactionTime = %v, expected 0.4", got)
	}
}

func TestLaneChangeToSameLaneIgnored(t *testing.T) {
	p, clock := newTestProfiler()
	p.StartSession()

	p.TrackObstacleSpawn(1, DefaultLane, clock.Now())
	p.TrackLaneChange(DefaultLane, clock.Now().Add(time.Second))

	clock.Advance(time.Minute)
	s := p.Snapshot()
	if s.LaneChangesPerMinute != 0 {
		t.Errorf("LaneChangesPerMinute = %v, expected 0", s.LaneChangesPerMinute)
	}
	if s.ReactionTime != DefaultReactionTime {
		t.Error("Same-lane move must not record a reaction sample")
	}
}

func TestLaneChangesPerMinute(t *testing.T) {
	p, clock := newTestProfiler()
	p.StartSession()

	lanes := []int{0, 1, 2, 1, 0}
	for _, l := range lanes {
		clock.Advance(6 * time.Second)
		p.TrackLaneChange(l, clock.Now())
	}
	// 5 changes over 30 seconds of in-progress session
	if got := p.Snapshot().LaneChangesPerMinute; !approx(got, 10) {
		t.Errorf("LaneChangesPerMinute = %v, expected 10", got)
	}
}

func TestReactionWindowEvictsOldest(t *testing.T) {
	p, clock := newTestProfiler(WithWindowSize(2))
	base := clock.Now()

	// Each lane change leaves a lane with exactly one fresh obstacle.
	lanes := []int{0, 1, 0}
	delays := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	prev := DefaultLane
	for i, l := range lanes {
		id := ObstacleID(i + 1)
		p.TrackObstacleSpawn(id, prev, base)
		p.TrackLaneChange(l, base.Add(delays[i]))
		p.TrackObstacleAvoided(id)
		prev = l
	}

	// Window holds the last two samples: 2s and 3s
	if got := p.Snapshot().ReactionTime; !approx(got, 2.5) {
		t.Errorf("ReactionTime = %v, expected 2.5", got)
	}
}

func TestReactionSamplesFollowSpawnOrder(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	leave := base.Add(time.Minute)

	run := func() []float64 {
		p, _ := newTestProfiler(WithWindowSize(5))
		for i := 0; i < 20; i++ {
			p.TrackObstacleSpawn(ObstacleID(i+1), DefaultLane, base.Add(time.Duration(i)*time.Second))
		}
		p.TrackLaneChange(0, leave)
		return p.reactionTimes.values()
	}

	want := []float64{45, 44, 43, 42, 41}
	for i := 0; i < 10; i++ {
		if got := run(); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: window = %v, expected %v", i, got, want)
		}
	}
}

func TestObstacleAvoided(t *testing.T) {
	p, clock := newTestProfiler()

	p.TrackObstacleSpawn(7, 0, clock.Now())
	p.TrackObstacleAvoided(7)
	p.TrackObstacleAvoided(7)  // already resolved
	p.TrackObstacleAvoided(99) // unknown

	if got := p.Snapshot().ObstaclesAvoided; got != 1 {
		t.Errorf("ObstaclesAvoided = %d, expected 1", got)
	}
	if len(p.active) != 0 {
		t.Errorf("active obstacles = %d, expected 0", len(p.active))
	}
}

func TestDuplicateSpawnOverwrites(t *testing.T) {
	p, clock := newTestProfiler()

	p.TrackObstacleSpawn(1, 0, clock.Now())
	p.TrackObstacleSpawn(1, DefaultLane, clock.Now())

	if len(p.active) != 1 {
		t.Fatalf("active obstacles = %d, expected 1", len(p.active))
	}
	p.TrackLaneChange(0, clock.Now().Add(time.Second))
	if got := p.Snapshot().ReactionTime; !approx(got, 1) {
		t.Errorf("Overwritten obstacle should sit in lane %d, ReactionTime = %v", DefaultLane, got)
	}
}

func TestNearMiss(t *testing.T) {
	p, clock := newTestProfiler()

	p.TrackObstacleSpawn(1, 0, clock.Now())
	p.TrackNearMiss(1, 10)
	p.TrackNearMiss(2, 30) // unknown id still records distance

	s := p.Snapshot()
	if !approx(s.NearMissDistance, 20) {
		t.Errorf("NearMissDistance = %v, expected 20", s.NearMissDistance)
	}
	if s.ObstaclesAvoided != 0 {
		t.Error("Near miss must not count as avoided")
	}
	if len(p.active) != 0 {
		t.Error("Near miss should resolve the obstacle")
	}
}

func TestCoinCollectionRate(t *testing.T) {
	p, _ := newTestProfiler()

	p.TrackCoinCollected()
	p.TrackCoinCollected()
	p.TrackCoinCollected()
	p.TrackCoinMissed()

	if got := p.Snapshot().CoinCollectionRate; !approx(got, 0.75) {
		t.Errorf("CoinCollectionRate = %v, expected 0.75", got)
	}
}

func TestResetIdempotent(t *testing.T) {
	p, clock := newTestProfiler()

	p.StartSession()
	p.TrackObstacleSpawn(1, DefaultLane, clock.Now())
	p.TrackLaneChange(0, clock.Now().Add(time.Second))
	p.TrackNearMiss(1, 5)
	p.TrackCoinCollected()
	clock.Advance(time.Minute)
	p.EndSession()

	p.Reset()
	once := p.Snapshot()
	p.Reset()
	twice := p.Snapshot()

	if once != twice {
		t.Errorf("Reset twice differs from once: %+v vs %+v", once, twice)
	}
	if once != New().Snapshot() {
		t.Errorf("Reset state %+v differs from a fresh profiler", once)
	}
	if p.inSession || len(p.active) != 0 {
		t.Error("Reset should drop the session and active obstacles")
	}
}
