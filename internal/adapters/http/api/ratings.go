package api

import (
	"net/http"

	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/model"
)

type ratingRequest struct {
	RatingID string       `json:"rating_id"`
	Skills   model.Skills `json:"skills"`
}

type ratingResponse struct {
	Status string `json:"status"`
	service.RatingReceipt
}

// handleSubmitRating queues a skills update. New ratings answer 202; a
// rating_id seen before answers 200 without queueing anything.
func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_rating"
	var req ratingRequest
	if err := decode(w, r, op, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	receipt, err := s.deps.SubmitRating(r.Context(), service.RatingInput{
		RatingID: req.RatingID,
		PlayerID: r.PathValue("id"),
		Skills:   req.Skills,
	})
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	if receipt.Duplicate {
		writeJSON(w, http.StatusOK, ratingResponse{Status: "duplicate", RatingReceipt: receipt})
		return
	}
	writeJSON(w, http.StatusAccepted, ratingResponse{Status: "accepted", RatingReceipt: receipt})
}
