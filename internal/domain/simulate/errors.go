package simulate

import (
	"errors"
	"fmt"
)

// ErrInvalidTeamSize is matched by *InvalidTeamSizeError.
var ErrInvalidTeamSize = errors.New("invalid team size")

// InvalidTeamSizeError reports a side outside [MinTeamSize, MaxTeamSize].
type InvalidTeamSizeError struct {
	Side Side
	Size int
}

func (e *InvalidTeamSizeError) Error() string {
	return fmt.Sprintf("invalid team size: team %s has %d players, want %d to %d",
		e.Side, e.Size, MinTeamSize, MaxTeamSize)
}

func (e *InvalidTeamSizeError) Is(target error) bool { return target == ErrInvalidTeamSize }
