package api

import (
	"errors"
	"net/http"

	"github.com/okian/squad/internal/adapters/mq/queue"
	"github.com/okian/squad/internal/adapters/repository"
	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/balance"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/internal/domain/simulate"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// Error carries the failing operation plus a kind and a cause; both match
// with errors.Is.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	default:
		return e.Op
	}
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind reports kind at op with no further cause.
func NewKind(op string, kind error) error { return &Error{Op: op, Kind: kind} }

// Wrap annotates err with op.
func Wrap(op string, err error) error { return &Error{Op: op, Err: err} }

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error { return &Error{Op: op, Kind: kind, Err: err} }

type errorClass struct {
	target error
	status int
	code   string
}

// Checked in order; the first match wins.
var errorClasses = []errorClass{
	{balance.ErrInsufficientPlayers, http.StatusBadRequest, "insufficient_players"},
	{balance.ErrTooManyPlayers, http.StatusBadRequest, "too_many_players"},
	{simulate.ErrInvalidTeamSize, http.StatusBadRequest, "invalid_team_size"},
	{balance.ErrDuplicatePlayer, http.StatusBadRequest, "duplicate_player"},
	{balance.ErrInvalidOptions, http.StatusBadRequest, "bad_request"},
	{model.ErrInvalidSkill, http.StatusBadRequest, "invalid_skill"},
	{service.ErrInvalidInput, http.StatusBadRequest, "bad_request"},
	{repository.ErrInvalidLimit, http.StatusBadRequest, "bad_request"},
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{repository.ErrPlayerNotFound, http.StatusNotFound, "player_not_found"},
	{repository.ErrTeamNotFound, http.StatusNotFound, "team_not_found"},
	{repository.ErrDuplicateTeamName, http.StatusConflict, "duplicate_team"},
	{repository.ErrDuplicateTeam, http.StatusConflict, "duplicate_team"},
	{repository.ErrPlayerInUse, http.StatusConflict, "player_in_use"},
	{repository.ErrDuplicatePlayer, http.StatusConflict, "duplicate_player"},
	{queue.ErrQueueFull, http.StatusTooManyRequests, "backpressure"},
	{ErrBackpressure, http.StatusTooManyRequests, "backpressure"},
	{queue.ErrQueueClosed, http.StatusServiceUnavailable, "unavailable"},
	{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
}

// classify maps an error to its HTTP status and response code.
func classify(err error) (int, string) {
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			return c.status, c.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
