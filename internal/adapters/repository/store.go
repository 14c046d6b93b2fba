// Package repository persists players and teams and ranks the roster.
package repository

import (
	"context"
	"time"

	"github.com/okian/squad/internal/domain/model"
)

// Entry is one row of the roster ranking.
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Overall  float64 `json:"overall"`
}

// PlayerStore manages player records.
type PlayerStore interface {
	// CreatePlayer stores a new player. Returns ErrDuplicatePlayer if the ID exists.
	CreatePlayer(ctx context.Context, p model.Player) error
	// GetPlayer returns ErrPlayerNotFound for unknown IDs.
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	// ListPlayers returns players in creation order.
	ListPlayers(ctx context.Context) ([]model.Player, error)
	// UpdatePlayer replaces name and email of an existing player.
	UpdatePlayer(ctx context.Context, p model.Player) (model.Player, error)
	// UpdateSkills replaces the rating vector and stamps UpdatedAt.
	UpdateSkills(ctx context.Context, id string, skills model.Skills, at time.Time) (model.Player, error)
	// DeletePlayer returns ErrPlayerInUse while a team references the player.
	DeletePlayer(ctx context.Context, id string) error
	CountPlayers(ctx context.Context) (int, error)
}

// RankingStore orders players by overall rating desc, then ID asc.
// Players with equal overall share a rank; ranks are dense.
type RankingStore interface {
	Rank(ctx context.Context, playerID string) (Entry, error)
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// TeamStore manages saved teams.
type TeamStore interface {
	// CreateTeam returns ErrDuplicateTeamName when the slug is taken and
	// ErrPlayerNotFound when a member does not exist.
	CreateTeam(ctx context.Context, t model.Team) error
	GetTeam(ctx context.Context, id string) (model.Team, error)
	// ListTeams returns teams in creation order.
	ListTeams(ctx context.Context) ([]model.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	CountTeams(ctx context.Context) (int, error)
}

// Store is everything the service needs from persistence.
type Store interface {
	PlayerStore
	RankingStore
	TeamStore
	Close() error
}
