package balance

import (
	"errors"
	"fmt"
)

// Sentinel kinds; the typed errors below match them with errors.Is.
var (
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrTooManyPlayers      = errors.New("too many players")
	ErrDuplicatePlayer     = errors.New("duplicate player")
	ErrInvalidOptions      = errors.New("invalid balance options")
)

// InsufficientPlayersError reports a pool smaller than the configured minimum.
type InsufficientPlayersError struct {
	Have int
	Need int
}

func (e *InsufficientPlayersError) Error() string {
	return fmt.Sprintf("insufficient players: have %d, need at least %d", e.Have, e.Need)
}

func (e *InsufficientPlayersError) Is(target error) bool { return target == ErrInsufficientPlayers }

// TooManyPlayersError reports a pool larger than two full teams.
type TooManyPlayersError struct {
	Have int
	Max  int
}

func (e *TooManyPlayersError) Error() string {
	return fmt.Sprintf("too many players: have %d, at most %d fit in two teams", e.Have, e.Max)
}

func (e *TooManyPlayersError) Is(target error) bool { return target == ErrTooManyPlayers }

// DuplicatePlayerError reports a player id given more than once.
type DuplicatePlayerError struct {
	PlayerID string
}

func (e *DuplicatePlayerError) Error() string {
	return fmt.Sprintf("duplicate player %q in pool", e.PlayerID)
}

func (e *DuplicatePlayerError) Is(target error) bool { return target == ErrDuplicatePlayer }
