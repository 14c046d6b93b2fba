package api

import "net/http"

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.rank"
	entry, err := s.deps.Rank(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
