package service

import (
	"errors"
	"fmt"

	"github.com/okian/squad/internal/domain/simulate"
)

// Sentinel kinds for service errors.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotStarted   = errors.New("service not started")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// TeamSizeError reports a saved team outside the configured member bounds.
// It matches simulate.ErrInvalidTeamSize so callers handle both the same way.
type TeamSizeError struct {
	Size int
	Min  int
	Max  int
}

func (e *TeamSizeError) Error() string {
	return fmt.Sprintf("invalid team size: %d players, want %d to %d", e.Size, e.Min, e.Max)
}

func (e *TeamSizeError) Is(target error) bool { return target == simulate.ErrInvalidTeamSize }
