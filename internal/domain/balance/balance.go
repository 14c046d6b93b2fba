// Package balance splits a pool of rated players into two teams of
// near-equal strength.
//
// Players are ordered by overall rating (highest first, input order kept on
// ties) and dealt alternately onto each side, so strong and weak players
// interleave between the teams.
package balance

import (
	"sort"

	"github.com/okian/squad/internal/domain/model"
)

const (
	DefaultMaxTeamSize = 5
	DefaultMinPool     = 4
)

// Option configures a Balance call.
type Option func(*options)

type options struct {
	maxTeamSize int
	minPool     int
}

// WithMaxTeamSize caps the number of players per side.
func WithMaxTeamSize(n int) Option {
	return func(o *options) {
		o.maxTeamSize = n
	}
}

// WithMinPool sets the smallest candidate pool that may be balanced.
func WithMinPool(n int) Option {
	return func(o *options) {
		o.minPool = n
	}
}

// Result holds the two sides as ordered player ids, plus the overall rating
// computed for every candidate.
type Result struct {
	TeamA   []string           `json:"team_a"`
	TeamB   []string           `json:"team_b"`
	Ratings map[string]float64 `json:"ratings"`
}

// TotalA sums the overall ratings of side A.
func (r Result) TotalA() float64 { return r.total(r.TeamA) }

// TotalB sums the overall ratings of side B.
func (r Result) TotalB() float64 { return r.total(r.TeamB) }

func (r Result) total(ids []string) float64 {
	sum := 0.0
	for _, id := range ids {
		sum += r.Ratings[id]
	}
	return model.RoundRating(sum)
}

type candidate struct {
	id      string
	overall float64
}

// Balance partitions players into two disjoint teams.
//
// It fails with *InsufficientPlayersError when fewer than the minimum pool
// are given and with *TooManyPlayersError when the pool cannot fit in two
// teams of the maximum size. No player is dropped and neither side exceeds
// the cap.
func Balance(players []model.Player, opts ...Option) (Result, error) {
	o := options{maxTeamSize: DefaultMaxTeamSize, minPool: DefaultMinPool}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxTeamSize < 1 || o.minPool < 0 {
		return Result{}, ErrInvalidOptions
	}

	n := len(players)
	if n < o.minPool {
		return Result{}, &InsufficientPlayersError{Have: n, Need: o.minPool}
	}
	// ceil(n/2) > cap, written so a huge cap cannot overflow.
	if (n+1)/2 > o.maxTeamSize {
		return Result{}, &TooManyPlayersError{Have: n, Max: 2 * o.maxTeamSize}
	}

	seen := make(map[string]struct{}, n)
	pool := make([]candidate, 0, n)
	ratings := make(map[string]float64, n)
	for _, p := range players {
		if _, dup := seen[p.ID]; dup {
			return Result{}, &DuplicatePlayerError{PlayerID: p.ID}
		}
		seen[p.ID] = struct{}{}
		overall := p.Overall()
		ratings[p.ID] = overall
		pool = append(pool, candidate{id: p.ID, overall: overall})
	}

	// Ties keep input order; tests rely on it.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].overall > pool[j].overall
	})

	side := min(o.maxTeamSize, (n+1)/2)
	res := Result{
		TeamA:   make([]string, 0, side),
		TeamB:   make([]string, 0, side),
		Ratings: ratings,
	}
	for i, c := range pool {
		switch {
		case i%2 == 0 && len(res.TeamA) < o.maxTeamSize:
			res.TeamA = append(res.TeamA, c.id)
		case len(res.TeamB) < o.maxTeamSize:
			res.TeamB = append(res.TeamB, c.id)
		default:
			// B is full; ceil(n/2) <= cap leaves room on A.
			res.TeamA = append(res.TeamA, c.id)
		}
	}
	return res, nil
}
