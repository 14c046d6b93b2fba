package api

import (
	"fmt"
	"net/http"
	"strconv"
)

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.leaderboard"

	limit := defaultLeaderboard
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.fail(w, r, op, WrapKind(op, ErrBadRequest, fmt.Errorf("limit must be a positive integer, got %q", raw)))
			return
		}
		limit = n
	}
	if limit > s.maxLimit {
		s.fail(w, r, op, WrapKind(op, ErrBadRequest, fmt.Errorf("limit %d exceeds maximum %d", limit, s.maxLimit)))
		return
	}

	entries, err := s.deps.Leaderboard(r.Context(), limit)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
