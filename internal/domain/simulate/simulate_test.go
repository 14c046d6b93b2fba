package simulate_test

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/internal/domain/simulate"
	. "github.com/smartystreets/goconvey/convey"
)

func team(prefix string, size, rating int) []model.Player {
	out := make([]model.Player, size)
	for i := range out {
		out[i] = model.Player{
			ID:     fmt.Sprintf("%s%d", prefix, i),
			Name:   fmt.Sprintf("%s %d", prefix, i),
			Skills: model.UniformSkills(rating),
		}
	}
	return out
}

func TestSimulate_Outcomes(t *testing.T) {
	Convey("Given a strong team A and a weak team B of equal size", t, func() {
		strong, weak := team("s", 3, 5), team("w", 3, 1)

		Convey("When the jitter is neutral", func() {
			sim := simulate.New(simulate.WithRandomSource(simulate.ConstantSource(0.5)))
			res, err := sim.Simulate(strong, weak)

			Convey("Then A wins and the ratings are the team means", func() {
				So(err, ShouldBeNil)
				So(res.Winner, ShouldEqual, simulate.SideA)
				So(res.TeamARating, ShouldEqual, 5.0)
				So(res.TeamBRating, ShouldEqual, 1.0)
				So(res.Jitter, ShouldEqual, 0.0)
				So(res.SizeBonus, ShouldEqual, 0.0)
			})
		})

		Convey("When the jitter is at its lowest", func() {
			sim := simulate.New(simulate.WithRandomSource(simulate.ConstantSource(0)))
			res, err := sim.Simulate(strong, weak)

			Convey("Then the perturbation alone can flip the match", func() {
				So(err, ShouldBeNil)
				So(res.Jitter, ShouldEqual, -5.0)
				So(res.Winner, ShouldEqual, simulate.SideB)
			})
		})
	})

	Convey("Given two identical teams", t, func() {
		a, b := team("a", 4, 3), team("b", 4, 3)

		Convey("When effective ratings tie", func() {
			sim := simulate.New(simulate.WithRandomSource(simulate.ConstantSource(0.5)))
			res, err := sim.Simulate(a, b)

			Convey("Then B takes the tie", func() {
				So(err, ShouldBeNil)
				So(res.Winner, ShouldEqual, simulate.SideB)
			})
		})
	})
}

func TestSimulate_SizeBonus(t *testing.T) {
	Convey("Given A fielding one more player than B at equal ratings", t, func() {
		a, b := team("a", 3, 3), team("b", 2, 3)

		Convey("When the jitter is neutral", func() {
			sim := simulate.New(simulate.WithRandomSource(simulate.ConstantSource(0.5)))
			res, err := sim.Simulate(a, b)

			Convey("Then B's threshold is raised by the per-player bonus", func() {
				So(err, ShouldBeNil)
				So(res.SizeBonus, ShouldEqual, 2.0)
				So(res.Winner, ShouldEqual, simulate.SideB)
			})
		})

		Convey("When the jitter is high enough", func() {
			sim := simulate.New(simulate.WithRandomSource(simulate.ConstantSource(0.99)))
			res, err := sim.Simulate(a, b)
			So(err, ShouldBeNil)
			So(res.Winner, ShouldEqual, simulate.SideA)
		})

		Convey("When the bonus is configured", func() {
			sim := simulate.New(
				simulate.WithRandomSource(simulate.ConstantSource(0.5)),
				simulate.WithSizeBonus(0),
				simulate.WithJitter(1),
			)
			res, err := sim.Simulate(b, a)
			So(err, ShouldBeNil)
			So(res.SizeBonus, ShouldEqual, 0.0)
			So(res.Jitter, ShouldEqual, 0.0)
		})
	})
}

func TestSimulate_InvalidSizes(t *testing.T) {
	Convey("Given teams outside the allowed size", t, func() {
		sim := simulate.New(simulate.WithRandomSource(simulate.ConstantSource(0.5)))

		Convey("When A has a single player", func() {
			_, err := sim.Simulate(team("a", 1, 3), team("b", 3, 3))

			Convey("Then InvalidTeamSizeError names side A", func() {
				var ite *simulate.InvalidTeamSizeError
				So(errors.As(err, &ite), ShouldBeTrue)
				So(ite.Side, ShouldEqual, simulate.SideA)
				So(ite.Size, ShouldEqual, 1)
				So(errors.Is(err, simulate.ErrInvalidTeamSize), ShouldBeTrue)
			})
		})

		Convey("When B has six players", func() {
			_, err := sim.Simulate(team("a", 3, 3), team("b", 6, 3))
			var ite *simulate.InvalidTeamSizeError
			So(errors.As(err, &ite), ShouldBeTrue)
			So(ite.Side, ShouldEqual, simulate.SideB)
		})

		Convey("When asking for a win probability", func() {
			_, err := sim.WinProbability(team("a", 0, 3), team("b", 2, 3))
			So(errors.Is(err, simulate.ErrInvalidTeamSize), ShouldBeTrue)
		})
	})
}

func TestSimulate_Deterministic(t *testing.T) {
	sim := simulate.New(simulate.WithRandomSource(simulate.ConstantSource(0.37)))
	a, b := team("a", 5, 4), team("b", 2, 2)

	first, err := sim.Simulate(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		got, err := sim.Simulate(a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != first {
			t.Fatalf("call %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestSimulate_ExactlyOneWinner(t *testing.T) {
	sim := simulate.New(simulate.WithRandomSource(simulate.NewSeededSource(11)))
	for sizeA := simulate.MinTeamSize; sizeA <= simulate.MaxTeamSize; sizeA++ {
		for sizeB := simulate.MinTeamSize; sizeB <= simulate.MaxTeamSize; sizeB++ {
			res, err := sim.Simulate(team("a", sizeA, 3), team("b", sizeB, 4))
			if err != nil {
				t.Fatalf("%dv%d: unexpected error: %v", sizeA, sizeB, err)
			}
			if res.Winner != simulate.SideA && res.Winner != simulate.SideB {
				t.Fatalf("%dv%d: winner %q", sizeA, sizeB, res.Winner)
			}
		}
	}
}

func TestWinProbability(t *testing.T) {
	Convey("Given the default simulator", t, func() {
		sim := simulate.New()

		Convey("Then even teams are a coin flip", func() {
			p, err := sim.WinProbability(team("a", 3, 3), team("b", 3, 3))
			So(err, ShouldBeNil)
			So(p, ShouldEqual, 0.5)
		})

		Convey("Then a four point edge gives A ninety percent", func() {
			p, err := sim.WinProbability(team("a", 3, 5), team("b", 3, 1))
			So(err, ShouldBeNil)
			So(p, ShouldAlmostEqual, 0.9, 1e-9)
		})

		Convey("Then the result is clamped to [0, 1]", func() {
			p, err := sim.WinProbability(team("a", 2, 1), team("b", 5, 5))
			So(err, ShouldBeNil)
			So(p, ShouldBeBetweenOrEqual, 0, 1)
		})
	})

	Convey("Given a simulator without jitter", t, func() {
		sim := simulate.New(simulate.WithJitter(0))
		p, err := sim.WinProbability(team("a", 3, 4), team("b", 3, 3))
		So(err, ShouldBeNil)
		So(p, ShouldEqual, 1.0)
	})
}

func TestWinProbability_MatchesSampling(t *testing.T) {
	sim := simulate.New(simulate.WithRandomSource(simulate.NewSeededSource(42)))
	a, b := team("a", 4, 4), team("b", 3, 3)

	want, err := sim.WinProbability(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const rounds = 20000
	wins := 0
	for i := 0; i < rounds; i++ {
		res, err := sim.Simulate(a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Winner == simulate.SideA {
			wins++
		}
	}
	if got := float64(wins) / rounds; math.Abs(got-want) > 0.02 {
		t.Fatalf("sampled win rate %.3f too far from %.3f", got, want)
	}
}

func TestSimulate_ConcurrentUse(t *testing.T) {
	sim := simulate.New(simulate.WithRandomSource(simulate.NewSeededSource(3)))
	a, b := team("a", 3, 3), team("b", 3, 3)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if _, err := sim.Simulate(a, b); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
