package api

import "net/http"

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	stats, err := s.deps.GetStats(r.Context())
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
