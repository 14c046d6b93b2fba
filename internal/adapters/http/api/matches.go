package api

import (
	"net/http"

	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/balance"
	"github.com/okian/squad/internal/domain/model"
)

type balanceRequest struct {
	PlayerIDs   []string `json:"player_ids"`
	MaxTeamSize int      `json:"max_team_size"`
	MinPool     *int     `json:"min_pool"`
	Save        *struct {
		TeamAName string `json:"team_a_name"`
		TeamBName string `json:"team_b_name"`
	} `json:"save"`
}

type balanceResponse struct {
	balance.Result
	TotalA float64      `json:"total_a"`
	TotalB float64      `json:"total_b"`
	Saved  []model.Team `json:"saved,omitempty"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	const op = "api.balance"
	var req balanceRequest
	if err := decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	in := service.BalanceInput{
		PlayerIDs:   req.PlayerIDs,
		MaxTeamSize: req.MaxTeamSize,
		MinPool:     req.MinPool,
	}
	if req.Save != nil {
		in.Save = &service.SaveTeamsInput{TeamAName: req.Save.TeamAName, TeamBName: req.Save.TeamBName}
	}

	out, err := s.deps.Balance(r.Context(), in)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	status := http.StatusOK
	if len(out.Saved) > 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, balanceResponse{
		Result: out.Result,
		TotalA: out.TotalA(),
		TotalB: out.TotalB(),
		Saved:  out.Saved,
	})
}

type sideRequest struct {
	TeamID    string   `json:"team_id"`
	PlayerIDs []string `json:"player_ids"`
}

type simulateRequest struct {
	TeamA sideRequest `json:"team_a"`
	TeamB sideRequest `json:"team_b"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulate"
	var req simulateRequest
	if err := decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	out, err := s.deps.Simulate(r.Context(), service.SimulateInput{
		TeamA: service.SideInput{TeamID: req.TeamA.TeamID, PlayerIDs: req.TeamA.PlayerIDs},
		TeamB: service.SideInput{TeamID: req.TeamB.TeamID, PlayerIDs: req.TeamB.PlayerIDs},
	})
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
