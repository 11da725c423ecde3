package dda

import (
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/vovakirdan/lane-runner/internal/profiler"
)

func TestHeuristicPolicy(t *testing.T) {
	convey.Convey("Given the default heuristic", t, func() {
		h := NewHeuristic()

		convey.Convey("When a new player has average metrics", func() {
			s := profiler.Snapshot{
				ReactionTime:         0.5,
				NearMissDistance:     50,
				CoinCollectionRate:   0.5,
				LaneChangesPerMinute: 10,
			}

			convey.Convey("Then the skill score is 0.7 and experience halves it", func() {
				convey.So(h.SkillScore(s), convey.ShouldAlmostEqual, 0.7, 1e-9)
				convey.So(h.AdjustedSkill(s), convey.ShouldAlmostEqual, 0.35, 1e-9)
			})

			convey.Convey("Then parameters interpolate over the adjusted skill", func() {
				p := h.Predict(s)
				convey.So(p.Speed, convey.ShouldAlmostEqual, 5.45, 1e-9)
				convey.So(p.ObstacleFrequency, convey.ShouldEqual, 44)
				convey.So(p.PatternComplexity, convey.ShouldAlmostEqual, 1.7, 1e-9)
				convey.So(p.CoinValue, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When reaction time is near zero", func() {
			s := profiler.Snapshot{ReactionTime: 1e-9, CoinCollectionRate: 1, LaneChangesPerMinute: 100, PlayTime: 10_000}

			convey.Convey("Then the reaction term is capped", func() {
				convey.So(h.SkillScore(s), convey.ShouldAlmostEqual, 1.0, 1e-9)
				p := h.Predict(s)
				convey.So(p.Speed, convey.ShouldAlmostEqual, MaxSpeed, 1e-9)
				convey.So(p.ObstacleFrequency, convey.ShouldEqual, MinObstacleFrequency)
				convey.So(p.PatternComplexity, convey.ShouldAlmostEqual, MaxPatternComplexity, 1e-9)
			})
		})

		convey.Convey("When metrics are degenerate", func() {
			snapshots := []profiler.Snapshot{
				{},
				{ReactionTime: -3, CoinCollectionRate: -1, LaneChangesPerMinute: -5, PlayTime: -10},
				{ReactionTime: math.NaN(), NearMissDistance: math.Inf(1), CoinCollectionRate: math.NaN()},
				{ReactionTime: math.Inf(1), CoinCollectionRate: 7, LaneChangesPerMinute: math.Inf(1), PlayTime: math.Inf(1)},
			}

			convey.Convey("Then every output stays within its range", func() {
				for _, s := range snapshots {
					p := h.Predict(s)
					convey.So(p.Valid(), convey.ShouldBeTrue)
					convey.So(p.Speed, convey.ShouldBeBetweenOrEqual, MinSpeed, MaxSpeed)
					convey.So(p.ObstacleFrequency, convey.ShouldBeBetweenOrEqual, MinObstacleFrequency, MaxObstacleFrequency)
					convey.So(p.PatternComplexity, convey.ShouldBeBetweenOrEqual, MinPatternComplexity, MaxPatternComplexity)
					convey.So(p.CoinValue, convey.ShouldBeGreaterThanOrEqualTo, MinCoinValue)
				}
			})
		})

		convey.Convey("When lane changes increase with other metrics fixed", func() {
			base := profiler.Snapshot{ReactionTime: 0.7, CoinCollectionRate: 0.4, PlayTime: 120}

			convey.Convey("Then skill and speed never decrease", func() {
				prevSkill, prevSpeed := -1.0, 0.0
				for lanes := 0.0; lanes <= 40; lanes += 2.5 {
					base.LaneChangesPerMinute = lanes
					skill := h.SkillScore(base)
					speed := h.Predict(base).Speed
					convey.So(skill, convey.ShouldBeGreaterThanOrEqualTo, prevSkill)
					convey.So(speed, convey.ShouldBeGreaterThanOrEqualTo, prevSpeed)
					prevSkill, prevSpeed = skill, speed
				}
			})
		})

		convey.Convey("When the player has five minutes of experience", func() {
			s := profiler.Snapshot{ReactionTime: 0.5, CoinCollectionRate: 0.5, LaneChangesPerMinute: 10, PlayTime: 300}

			convey.Convey("Then no dampening applies", func() {
				convey.So(h.AdjustedSkill(s), convey.ShouldAlmostEqual, h.SkillScore(s), 1e-9)
			})
		})
	})
}

func TestCoinPolicies(t *testing.T) {
	convey.Convey("Given the coin policies", t, func() {
		convey.Convey("Fixed coins ignore metrics", func() {
			fixed := FixedCoins{Value: 1}
			convey.So(fixed.CoinValue(profiler.Snapshot{CoinCollectionRate: 0}), convey.ShouldEqual, 1)
			convey.So(fixed.CoinValue(profiler.Snapshot{CoinCollectionRate: 1}), convey.ShouldEqual, 1)
			convey.So(FixedCoins{}.CoinValue(profiler.Snapshot{}), convey.ShouldEqual, MinCoinValue)
		})

		convey.Convey("Skill scaled coins reward struggling collectors", func() {
			s := SkillScaledCoins{}
			convey.So(s.CoinValue(profiler.Snapshot{CoinCollectionRate: 0.9}), convey.ShouldEqual, 1)
			convey.So(s.CoinValue(profiler.Snapshot{CoinCollectionRate: 0.7}), convey.ShouldEqual, 2)
			convey.So(s.CoinValue(profiler.Snapshot{CoinCollectionRate: 0.5}), convey.ShouldEqual, 3)
			convey.So(s.CoinValue(profiler.Snapshot{CoinCollectionRate: 0.1}), convey.ShouldEqual, 5)
		})

		convey.Convey("Policies are selected by name", func() {
			p, err := NewCoinPolicy("skill_scaled")
			convey.So(err, convey.ShouldBeNil)
			convey.So(p, convey.ShouldHaveSameTypeAs, SkillScaledCoins{})

			p, err = NewCoinPolicy("")
			convey.So(err, convey.ShouldBeNil)
			convey.So(p, convey.ShouldResemble, FixedCoins{Value: 1})

			_, err = NewCoinPolicy("lottery")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("The heuristic uses the configured policy", func() {
			h := NewHeuristic()
			h.Coins = SkillScaledCoins{}
			convey.So(h.Predict(profiler.Snapshot{CoinCollectionRate: 0.2}).CoinValue, convey.ShouldEqual, 5)
		})
	})
}
