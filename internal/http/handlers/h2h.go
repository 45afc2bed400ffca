package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apph2h "github.com/preston-bernstein/prop-grader/internal/app/h2h"
	"github.com/preston-bernstein/prop-grader/internal/failure"
)

// CreateMatchup opens a matchup and returns its token.
func (h *Handler) CreateMatchup(w http.ResponseWriter, r *http.Request) {
	var req apph2h.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	m, err := h.matchups.Create(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, m, h.logger)
}

// AcceptMatchup sets the second participant.
func (h *Handler) AcceptMatchup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID string `json:"ownerId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	m, err := h.matchups.Accept(r.Context(), chi.URLParam(r, "token"), req.OwnerID)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, m, h.logger)
}

// PreviewMatchup returns current standings without finalizing.
func (h *Handler) PreviewMatchup(w http.ResponseWriter, r *http.Request) {
	p, err := h.matchups.Preview(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, p, h.logger)
}

// FinalizeMatchup settles a matchup by token.
func (h *Handler) FinalizeMatchup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MatchupToken string `json:"matchupToken"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	token := strings.TrimSpace(req.MatchupToken)
	if token == "" {
		writeFailure(w, r, failure.Validation("http.FinalizeMatchup", "matchupToken is required"), h.logger)
		return
	}
	m, err := h.matchups.Finalize(r.Context(), token)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, m, h.logger)
}
