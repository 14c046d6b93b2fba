package service

import (
	"context"
	"errors"
	"strings"

	"github.com/okian/squad/internal/domain/balance"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/internal/domain/simulate"
	"github.com/okian/squad/pkg/logger"
	"github.com/okian/squad/pkg/metrics"
)

// BalanceInput selects the pool to split. Zero MaxTeamSize and nil MinPool
// fall back to the service defaults.
type BalanceInput struct {
	PlayerIDs   []string
	MaxTeamSize int
	MinPool     *int
	Save        *SaveTeamsInput
}

// SaveTeamsInput names the two balanced sides to persist.
type SaveTeamsInput struct {
	TeamAName string
	TeamBName string
}

// BalanceOutput is the split plus any teams saved from it.
type BalanceOutput struct {
	balance.Result
	Saved []model.Team
}

// Balance splits the given players into two rating-balanced teams.
func (s *Service) Balance(ctx context.Context, in BalanceInput) (BalanceOutput, error) {
	if in.Save != nil {
		if strings.TrimSpace(in.Save.TeamAName) == "" || strings.TrimSpace(in.Save.TeamBName) == "" {
			return BalanceOutput{}, invalid("both team names are required to save")
		}
	}

	players, err := s.loadPlayers(ctx, in.PlayerIDs)
	if err != nil {
		return BalanceOutput{}, err
	}

	maxTeamSize := s.maxTeamSize
	if in.MaxTeamSize > 0 {
		maxTeamSize = in.MaxTeamSize
	}
	minPool := s.minPool
	if in.MinPool != nil {
		minPool = *in.MinPool
	}

	res, err := balance.Balance(players, balance.WithMaxTeamSize(maxTeamSize), balance.WithMinPool(minPool))
	if err != nil {
		metrics.RecordBalanceFailure(balanceFailureReason(err))
		return BalanceOutput{}, err
	}
	metrics.RecordBalance()

	out := BalanceOutput{Result: res}
	if in.Save == nil {
		return out, nil
	}

	teamA, err := s.CreateTeam(ctx, CreateTeamInput{Name: in.Save.TeamAName, PlayerIDs: res.TeamA})
	if err != nil {
		return BalanceOutput{}, err
	}
	teamB, err := s.CreateTeam(ctx, CreateTeamInput{Name: in.Save.TeamBName, PlayerIDs: res.TeamB})
	if err != nil {
		if derr := s.store.DeleteTeam(ctx, teamA.ID); derr != nil {
			s.logger.Error(ctx, "rollback of saved team failed",
				logger.String("team_id", teamA.ID),
				logger.Error(derr),
			)
		}
		return BalanceOutput{}, err
	}
	out.Saved = []model.Team{teamA, teamB}
	return out, nil
}

func balanceFailureReason(err error) string {
	switch {
	case errors.Is(err, balance.ErrInsufficientPlayers):
		return "insufficient_players"
	case errors.Is(err, balance.ErrTooManyPlayers):
		return "too_many_players"
	case errors.Is(err, balance.ErrDuplicatePlayer):
		return "duplicate_player"
	case errors.Is(err, balance.ErrInvalidOptions):
		return "invalid_options"
	default:
		return "other"
	}
}

// SideInput picks one side of a match: a saved team or an ad-hoc lineup.
type SideInput struct {
	TeamID    string
	PlayerIDs []string
}

// SimulateInput names both sides.
type SimulateInput struct {
	TeamA SideInput
	TeamB SideInput
}

// Lineup is a resolved side.
type Lineup struct {
	TeamID    string   `json:"team_id,omitempty"`
	Name      string   `json:"name,omitempty"`
	PlayerIDs []string `json:"player_ids"`
}

// SimulateOutput is the match result with the lineups that played.
type SimulateOutput struct {
	simulate.Result
	WinProbability float64 `json:"win_probability"`
	TeamA          Lineup  `json:"team_a"`
	TeamB          Lineup  `json:"team_b"`
}

// Simulate plays one match between the two sides.
func (s *Service) Simulate(ctx context.Context, in SimulateInput) (SimulateOutput, error) {
	lineupA, playersA, err := s.resolveSide(ctx, "team_a", in.TeamA)
	if err != nil {
		return SimulateOutput{}, err
	}
	lineupB, playersB, err := s.resolveSide(ctx, "team_b", in.TeamB)
	if err != nil {
		return SimulateOutput{}, err
	}
	if err := disjoint(lineupA.PlayerIDs, lineupB.PlayerIDs); err != nil {
		return SimulateOutput{}, err
	}

	res, err := s.simulator.Simulate(playersA, playersB)
	if err != nil {
		return SimulateOutput{}, err
	}
	p, err := s.simulator.WinProbability(playersA, playersB)
	if err != nil {
		return SimulateOutput{}, err
	}
	metrics.RecordSimulation(string(res.Winner))
	s.logger.Debug(ctx, "match simulated",
		logger.String("winner", string(res.Winner)),
		logger.Float64("team_a_rating", res.TeamARating),
		logger.Float64("team_b_rating", res.TeamBRating),
	)
	return SimulateOutput{Result: res, WinProbability: p, TeamA: lineupA, TeamB: lineupB}, nil
}

func (s *Service) resolveSide(ctx context.Context, label string, in SideInput) (Lineup, []model.Player, error) {
	hasTeam, hasPlayers := in.TeamID != "", len(in.PlayerIDs) > 0
	if hasTeam == hasPlayers {
		return Lineup{}, nil, invalid("%s needs exactly one of team_id or player_ids", label)
	}

	lineup := Lineup{PlayerIDs: in.PlayerIDs}
	if hasTeam {
		t, err := s.store.GetTeam(ctx, in.TeamID)
		if err != nil {
			return Lineup{}, nil, err
		}
		lineup = Lineup{TeamID: t.ID, Name: t.Name, PlayerIDs: t.PlayerIDs}
	}
	players, err := s.loadPlayers(ctx, lineup.PlayerIDs)
	if err != nil {
		return Lineup{}, nil, err
	}
	return lineup, players, nil
}

// disjoint rejects a player fielded twice, on one side or both.
func disjoint(a, b []string) error {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, id := range append(append([]string(nil), a...), b...) {
		if _, dup := seen[id]; dup {
			return &balance.DuplicatePlayerError{PlayerID: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}
