// Package simulate decides a match between two teams from their players'
// overall ratings plus a bounded random perturbation.
package simulate

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/squad/internal/domain/model"
)

const (
	MinTeamSize = 2
	MaxTeamSize = 5

	DefaultSizeBonus = 2.0
	DefaultJitter    = 5.0
)

// Side identifies one of the two teams.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// RandomSource returns uniformly distributed values in [0, 1).
// Implementations shared between goroutines must be safe for concurrent use.
type RandomSource func() float64

// ConstantSource always returns v. Useful for reproducible matches.
func ConstantSource(v float64) RandomSource {
	return func() float64 { return v }
}

// NewSeededSource returns a concurrency-safe source seeded with seed.
// A zero seed uses the current time.
func NewSeededSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // simulation jitter, not security sensitive
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64()
	}
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRandomSource injects the jitter source. Nil is ignored.
func WithRandomSource(src RandomSource) Option {
	return func(s *Simulator) {
		if src != nil {
			s.random = src
		}
	}
}

// WithSizeBonus sets the per-player compensation applied for uneven sides.
func WithSizeBonus(bonus float64) Option {
	return func(s *Simulator) {
		if bonus >= 0 {
			s.sizeBonus = bonus
		}
	}
}

// WithJitter sets the half-width of the jitter range.
func WithJitter(jitter float64) Option {
	return func(s *Simulator) {
		if jitter >= 0 {
			s.jitter = jitter
		}
	}
}

// Simulator decides matches. It holds no mutable state besides the random
// source and may be shared between goroutines.
type Simulator struct {
	random    RandomSource
	sizeBonus float64
	jitter    float64
}

// New builds a Simulator; without WithRandomSource it uses a time-seeded source.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		sizeBonus: DefaultSizeBonus,
		jitter:    DefaultJitter,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.random == nil {
		s.random = NewSeededSource(0)
	}
	return s
}

// Result is the outcome of one simulated match.
type Result struct {
	TeamARating float64 `json:"team_a_rating"`
	TeamBRating float64 `json:"team_b_rating"`
	Jitter      float64 `json:"jitter"`
	SizeBonus   float64 `json:"size_bonus"`
	Winner      Side    `json:"winner"`
}

// Simulate plays one match.
//
// Side A wins when ratingA+jitter > ratingB+sizeBonus, where sizeBonus is
// (len(A)-len(B)) times the per-player bonus and jitter is drawn once from
// [-j, +j). Equal effective ratings go to B.
func (s *Simulator) Simulate(teamA, teamB []model.Player) (Result, error) {
	if err := validateSides(teamA, teamB); err != nil {
		return Result{}, err
	}

	ratingA := TeamRating(teamA)
	ratingB := TeamRating(teamB)
	bonus := s.bonus(teamA, teamB)
	jitter := -s.jitter + 2*s.jitter*s.random()

	winner := SideB
	if ratingA+jitter > ratingB+bonus {
		winner = SideA
	}
	return Result{
		TeamARating: ratingA,
		TeamBRating: ratingB,
		Jitter:      jitter,
		SizeBonus:   bonus,
		Winner:      winner,
	}, nil
}

// WinProbability is the chance that side A wins under Simulate's rule with a
// uniform random source.
func (s *Simulator) WinProbability(teamA, teamB []model.Player) (float64, error) {
	if err := validateSides(teamA, teamB); err != nil {
		return 0, err
	}
	deficit := TeamRating(teamB) + s.bonus(teamA, teamB) - TeamRating(teamA)
	if s.jitter == 0 {
		if deficit < 0 {
			return 1, nil
		}
		return 0, nil
	}
	p := (s.jitter - deficit) / (2 * s.jitter)
	return math.Max(0, math.Min(1, p)), nil
}

func (s *Simulator) bonus(teamA, teamB []model.Player) float64 {
	return float64(len(teamA)-len(teamB)) * s.sizeBonus
}

// TeamRating is the mean overall rating of the players; zero for no players.
func TeamRating(players []model.Player) float64 {
	if len(players) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range players {
		sum += p.Overall()
	}
	return sum / float64(len(players))
}

func validateSides(teamA, teamB []model.Player) error {
	if n := len(teamA); n < MinTeamSize || n > MaxTeamSize {
		return &InvalidTeamSizeError{Side: SideA, Size: n}
	}
	if n := len(teamB); n < MinTeamSize || n > MaxTeamSize {
		return &InvalidTeamSizeError{Side: SideB, Size: n}
	}
	return nil
}
