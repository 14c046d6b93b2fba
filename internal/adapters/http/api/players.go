package api

import (
	"net/http"
	"time"

	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/model"
)

type playerResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email,omitempty"`
	Skills    model.Skills `json:"skills"`
	Overall   float64      `json:"overall"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func toPlayerResponse(p model.Player) playerResponse {
	return playerResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Skills:    p.Skills,
		Overall:   p.Overall(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type createPlayerRequest struct {
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Skills *model.Skills `json:"skills"`
}

type updatePlayerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_player"
	var req createPlayerRequest
	if err := decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	p, err := s.deps.CreatePlayer(r.Context(), service.CreatePlayerInput{
		Name:   req.Name,
		Email:  req.Email,
		Skills: req.Skills,
	})
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	w.Header().Set("Location", "/players/"+p.ID)
	writeJSON(w, http.StatusCreated, toPlayerResponse(p))
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	players, err := s.deps.ListPlayers(r.Context())
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	out := make([]playerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, toPlayerResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"players": out})
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	p, err := s.deps.GetPlayer(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerResponse(p))
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_player"
	var req updatePlayerRequest
	if err := decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	p, err := s.deps.UpdatePlayer(r.Context(), r.PathValue("id"), service.UpdatePlayerInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerResponse(p))
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_player"
	if err := s.deps.DeletePlayer(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
