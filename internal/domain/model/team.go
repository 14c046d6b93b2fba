package model

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Team is a named, ordered selection of players.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	PlayerIDs []string  `json:"player_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamSlug normalizes a team name; two names with the same slug collide.
func TeamSlug(name string) string {
	return slug.Make(strings.TrimSpace(name))
}

// Size is the number of players on the team.
func (t Team) Size() int {
	return len(t.PlayerIDs)
}

// HasPlayer reports whether id is on the team.
func (t Team) HasPlayer(id string) bool {
	for _, p := range t.PlayerIDs {
		if p == id {
			return true
		}
	}
	return false
}
