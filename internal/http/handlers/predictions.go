package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/prop-grader/internal/app/predictions"
	"github.com/preston-bernstein/prop-grader/internal/domain/props"
)

// PlacePrediction records an owner's take on the prop in the path.
func (h *Handler) PlacePrediction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID string `json:"ownerId"`
		Side    string `json:"side"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	p, err := h.predictions.Place(r.Context(), predictions.PlaceRequest{
		PropID:  chi.URLParam(r, "id"),
		OwnerID: req.OwnerID,
		Side:    props.Side(req.Side),
	})
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, p, h.logger)
}
