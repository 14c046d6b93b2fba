package api

import (
	"net/http"

	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/model"
)

type createTeamRequest struct {
	Name      string   `json:"name"`
	PlayerIDs []string `json:"player_ids"`
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_team"
	var req createTeamRequest
	if err := decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	t, err := s.deps.CreateTeam(r.Context(), service.CreateTeamInput{Name: req.Name, PlayerIDs: req.PlayerIDs})
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	w.Header().Set("Location", "/teams/"+t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_teams"
	teams, err := s.deps.ListTeams(r.Context())
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team"
	t, err := s.deps.GetTeam(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_team"
	if err := s.deps.DeleteTeam(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
