package service

import (
	"context"
	"strings"

	"github.com/okian/squad/internal/domain/balance"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
)

// CreateTeamInput names a team and its members in lineup order.
type CreateTeamInput struct {
	Name      string
	PlayerIDs []string
}

// CreateTeam saves a team of distinct, existing players. The name must be
// unique after slug normalization.
func (s *Service) CreateTeam(ctx context.Context, in CreateTeamInput) (model.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Team{}, invalid("team name is required")
	}
	slug := model.TeamSlug(name)
	if slug == "" {
		return model.Team{}, invalid("team name %q has no usable characters", name)
	}
	if n := len(in.PlayerIDs); n < s.teamMinPlayers || n > s.teamMaxPlayers {
		return model.Team{}, &TeamSizeError{Size: n, Min: s.teamMinPlayers, Max: s.teamMaxPlayers}
	}
	seen := make(map[string]struct{}, len(in.PlayerIDs))
	for _, id := range in.PlayerIDs {
		if _, dup := seen[id]; dup {
			return model.Team{}, &balance.DuplicatePlayerError{PlayerID: id}
		}
		seen[id] = struct{}{}
	}

	t := model.Team{
		ID:        s.newID(),
		Name:      name,
		Slug:      slug,
		PlayerIDs: append([]string(nil), in.PlayerIDs...),
		CreatedAt: s.now(),
	}
	if err := s.store.CreateTeam(ctx, t); err != nil {
		return model.Team{}, err
	}
	s.logger.Info(ctx, "team created",
		logger.String("team_id", t.ID),
		logger.String("slug", t.Slug),
		logger.Int("players", t.Size()),
	)
	return t, nil
}

func (s *Service) GetTeam(ctx context.Context, id string) (model.Team, error) {
	return s.store.GetTeam(ctx, id)
}

func (s *Service) ListTeams(ctx context.Context) ([]model.Team, error) {
	return s.store.ListTeams(ctx)
}

func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	if err := s.store.DeleteTeam(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "team deleted", logger.String("team_id", id))
	return nil
}
