package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/prop-grader/internal/app/grading"
	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/failure"
)

type gradeRequest struct {
	PropID          string          `json:"propId"`
	DryRun          bool            `json:"dryRun"`
	FormulaOverride string          `json:"formulaOverride,omitempty"`
	ParamOverrides  json.RawMessage `json:"paramOverrides,omitempty"`
	LeagueHint      string          `json:"leagueHint,omitempty"`
	Regrade         bool            `json:"regrade,omitempty"`
}

type gradeResponse struct {
	grading.Result
	ResultText string `json:"resultText"`
	TimingMS   int64  `json:"timingMs"`
}

func newGradeResponse(res grading.Result) gradeResponse {
	return gradeResponse{Result: res, ResultText: res.Verdict.ResultText, TimingMS: res.Timing.TotalMS}
}

// Grade runs the orchestrator for one prop, optionally as a dry run.
func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	res, err := h.grader.Grade(r.Context(), strings.TrimSpace(req.PropID), grading.Options{
		DryRun:          req.DryRun,
		FormulaOverride: req.FormulaOverride,
		ParamOverrides:  req.ParamOverrides,
		LeagueHint:      req.LeagueHint,
		Regrade:         req.Regrade,
	})
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newGradeResponse(res), h.logger)
}

type manualGradeRequest struct {
	PropID     string `json:"propId"`
	Winner     string `json:"winner"`
	ResultText string `json:"resultText,omitempty"`
}

// GradeManual applies an operator-chosen verdict.
func (h *Handler) GradeManual(w http.ResponseWriter, r *http.Request) {
	var req manualGradeRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	winner := props.Winner(strings.TrimSpace(req.Winner))
	switch strings.ToLower(string(winner)) {
	case "a":
		winner = props.WinnerA
	case "b":
		winner = props.WinnerB
	case "push":
		winner = props.WinnerPush
	}
	res, err := h.grader.GradeManual(r.Context(), strings.TrimSpace(req.PropID), props.Verdict{Winner: winner, ResultText: req.ResultText})
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newGradeResponse(res), h.logger)
}

// CheckPack re-runs the completion check for a pack.
func (h *Handler) CheckPack(w http.ResponseWriter, r *http.Request) {
	packID := chi.URLParam(r, "id")
	if packID == "" {
		writeFailure(w, r, failure.Validation("http.CheckPack", "pack id is required"), h.logger)
		return
	}
	graded, err := h.grader.CheckPack(r.Context(), packID)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"packId": packID, "graded": graded}, h.logger)
}
