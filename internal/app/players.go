package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/squad/internal/adapters/mq/queue"
	"github.com/okian/squad/internal/adapters/repository"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
	"github.com/okian/squad/pkg/metrics"
)

// CreatePlayerInput describes a new roster member. Nil Skills means every
// attribute starts at model.DefaultSkill.
type CreatePlayerInput struct {
	Name   string
	Email  string
	Skills *model.Skills
}

// UpdatePlayerInput changes profile fields; nil fields are left alone.
type UpdatePlayerInput struct {
	Name  *string
	Email *string
}

// RatingInput is a rating submission. RatingID makes retries idempotent;
// an empty one is replaced by a fresh ID.
type RatingInput struct {
	RatingID string
	PlayerID string
	Skills   model.Skills
}

// RatingReceipt tells the caller what happened to a submission.
type RatingReceipt struct {
	RatingID  string `json:"rating_id"`
	PlayerID  string `json:"player_id"`
	Duplicate bool   `json:"duplicate"`
}

func (s *Service) CreatePlayer(ctx context.Context, in CreatePlayerInput) (model.Player, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Player{}, invalid("player name is required")
	}
	skills := model.DefaultSkills()
	if in.Skills != nil {
		skills = *in.Skills
	}

	now := s.now()
	p := model.Player{
		ID:        s.newID(),
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		Skills:    skills,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return model.Player{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return model.Player{}, err
	}

	metrics.ObservePlayerRating(p.Overall())
	s.logger.Info(ctx, "player created",
		logger.String("player_id", p.ID),
		logger.Float64("overall", p.Overall()),
	)
	return p, nil
}

func (s *Service) GetPlayer(ctx context.Context, id string) (model.Player, error) {
	return s.store.GetPlayer(ctx, id)
}

func (s *Service) ListPlayers(ctx context.Context) ([]model.Player, error) {
	return s.store.ListPlayers(ctx)
}

func (s *Service) UpdatePlayer(ctx context.Context, id string, in UpdatePlayerInput) (model.Player, error) {
	p, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return model.Player{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return model.Player{}, invalid("player name cannot be empty")
		}
		p.Name = name
	}
	if in.Email != nil {
		p.Email = strings.TrimSpace(*in.Email)
	}
	p.UpdatedAt = s.now()
	return s.store.UpdatePlayer(ctx, p)
}

func (s *Service) DeletePlayer(ctx context.Context, id string) error {
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "player deleted", logger.String("player_id", id))
	return nil
}

// SubmitRating validates a rating and queues it for the workers. A rating
// ID seen before is acknowledged as a duplicate without being queued again.
func (s *Service) SubmitRating(ctx context.Context, in RatingInput) (RatingReceipt, error) {
	if err := in.Skills.Validate(); err != nil {
		return RatingReceipt{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if _, err := s.store.GetPlayer(ctx, in.PlayerID); err != nil {
		return RatingReceipt{}, err
	}
	if in.RatingID == "" {
		in.RatingID = s.newID()
	}
	receipt := RatingReceipt{RatingID: in.RatingID, PlayerID: in.PlayerID}

	s.mu.RLock()
	started, ratings := s.started, s.ratings
	s.mu.RUnlock()
	if !started {
		return RatingReceipt{}, ErrNotStarted
	}

	if s.deduper.SeenAndRecord(ctx, in.RatingID) {
		metrics.RecordRatingDuplicate()
		s.logger.Debug(ctx, "duplicate rating skipped", logger.String("rating_id", in.RatingID))
		receipt.Duplicate = true
		return receipt, nil
	}

	e := queue.Event{EventID: in.RatingID, PlayerID: in.PlayerID, Skills: in.Skills, TS: s.now()}
	if err := ratings.Enqueue(ctx, e); err != nil {
		s.deduper.Unrecord(ctx, in.RatingID)
		s.logger.Warn(ctx, "rating not queued",
			logger.String("rating_id", in.RatingID),
			logger.Error(err),
		)
		return RatingReceipt{}, err
	}
	return receipt, nil
}

// Leaderboard returns the top limit players by overall rating.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]repository.Entry, error) {
	return s.store.TopN(ctx, limit)
}

// Rank returns one player's position in the leaderboard.
func (s *Service) Rank(ctx context.Context, playerID string) (repository.Entry, error) {
	return s.store.Rank(ctx, playerID)
}

// loadPlayers fetches players in the given order.
func (s *Service) loadPlayers(ctx context.Context, ids []string) ([]model.Player, error) {
	out := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		p, err := s.store.GetPlayer(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrPlayerNotFound) {
				return nil, fmt.Errorf("player %q: %w", id, err)
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
