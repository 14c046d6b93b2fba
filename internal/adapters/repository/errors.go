package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrDuplicatePlayer   = errors.New("player already exists")
	ErrDuplicateTeam     = errors.New("team already exists")
	ErrDuplicateTeamName = errors.New("team name already taken")
	ErrPlayerInUse       = errors.New("player is on a team")
	ErrInvalidLimit      = errors.New("invalid leaderboard limit")
)
