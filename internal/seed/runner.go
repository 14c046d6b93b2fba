package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/balance"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
)

// ErrRatingsPending means submitted ratings were not applied in time.
var ErrRatingsPending = errors.New("ratings not applied before deadline")

const (
	defaultWaitTimeout  = 10 * time.Second
	defaultPollInterval = 50 * time.Millisecond
)

// Option configures Run.
type Option func(*runner)

// WithWaitTimeout bounds how long Run waits for ratings to land.
func WithWaitTimeout(d time.Duration) Option {
	return func(r *runner) {
		if d > 0 {
			r.waitTimeout = d
		}
	}
}

// WithPollInterval sets how often Run checks for applied ratings.
func WithPollInterval(d time.Duration) Option {
	return func(r *runner) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// WithLogger sets the progress logger.
func WithLogger(l logger.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.logger = l
		}
	}
}

type runner struct {
	client       *Client
	logger       logger.Logger
	waitTimeout  time.Duration
	pollInterval time.Duration
}

// Report summarises a seeding run.
type Report struct {
	PlayerIDs []string
	Teams     []model.Team
	Balance   balance.Result
	Match     service.SimulateOutput
}

// Run creates the sample roster, rates it, saves the sample teams, then
// balances the whole roster and plays the saved teams against each other.
func Run(ctx context.Context, client *Client, opts ...Option) (Report, error) {
	r := &runner{
		client:       client,
		waitTimeout:  defaultWaitTimeout,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Named("seed")
	}

	var rep Report
	roster := Roster()
	for _, sp := range roster {
		p, err := client.CreatePlayer(ctx, sp.Name, sp.Email)
		if err != nil {
			return rep, fmt.Errorf("create player %q: %w", sp.Name, err)
		}
		rep.PlayerIDs = append(rep.PlayerIDs, p.ID)
	}
	r.logger.Info(ctx, "players created", logger.Int("count", len(rep.PlayerIDs)))

	for i, sp := range roster {
		if _, err := client.SubmitRating(ctx, rep.PlayerIDs[i], uuid.NewString(), sp.Skills); err != nil {
			return rep, fmt.Errorf("rate player %q: %w", sp.Name, err)
		}
	}
	if err := r.waitForRatings(ctx, rep.PlayerIDs, roster); err != nil {
		return rep, err
	}
	r.logger.Info(ctx, "ratings applied")

	sides := make([]Side, 0, 2)
	for _, st := range Teams() {
		ids := make([]string, 0, len(st.Members))
		for _, m := range st.Members {
			ids = append(ids, rep.PlayerIDs[m])
		}
		t, err := client.CreateTeam(ctx, st.Name, ids)
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Code == "duplicate_team":
			r.logger.Warn(ctx, "team name taken; playing the lineup unsaved", logger.String("team", st.Name))
			sides = append(sides, Side{PlayerIDs: ids})
		case err != nil:
			return rep, fmt.Errorf("create team %q: %w", st.Name, err)
		default:
			rep.Teams = append(rep.Teams, t)
			sides = append(sides, Side{TeamID: t.ID})
		}
	}

	res, err := client.Balance(ctx, rep.PlayerIDs)
	if err != nil {
		return rep, fmt.Errorf("balance roster: %w", err)
	}
	rep.Balance = res
	r.logger.Info(ctx, "roster balanced",
		logger.Strings("team_a", res.TeamA),
		logger.Strings("team_b", res.TeamB),
		logger.Float64("total_a", res.TotalA()),
		logger.Float64("total_b", res.TotalB()),
	)

	match, err := client.Simulate(ctx, sides[0], sides[1])
	if err != nil {
		return rep, fmt.Errorf("simulate match: %w", err)
	}
	rep.Match = match
	r.logger.Info(ctx, "match simulated",
		logger.String("winner", string(match.Winner)),
		logger.Float64("win_probability", match.WinProbability),
	)
	return rep, nil
}

func (r *runner) waitForRatings(ctx context.Context, ids []string, roster []SamplePlayer) error {
	ctx, cancel := context.WithTimeout(ctx, r.waitTimeout)
	defer cancel()
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	pending := make(map[int]struct{}, len(ids))
	for i := range ids {
		pending[i] = struct{}{}
	}
	for {
		for i := range pending {
			p, err := r.client.GetPlayer(ctx, ids[i])
			if err != nil {
				if ctx.Err() != nil {
					return fmt.Errorf("%w: %d left", ErrRatingsPending, len(pending))
				}
				return fmt.Errorf("fetch player %s: %w", ids[i], err)
			}
			if p.Skills == roster[i].Skills {
				delete(pending, i)
			}
		}
		if len(pending) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %d left", ErrRatingsPending, len(pending))
		case <-ticker.C:
		}
	}
}
