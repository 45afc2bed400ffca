package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/http/middleware"
	"github.com/preston-bernstein/prop-grader/internal/logging"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	writeJSON(w, status, errorBody{Error: message, RequestID: requestID(r)}, logger)
}

// writeFailure maps a typed failure onto its status. Untyped errors are
// logged and hidden behind a generic 500.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var fe *failure.Error
	if !errors.As(err, &fe) {
		logging.Error(loggerFromContext(r, logger), "request failed", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Kind: "internal", RequestID: requestID(r)}, logger)
		return
	}
	writeJSON(w, fe.Kind.HTTPStatus(), errorBody{
		Error:     fe.Error(),
		Kind:      string(fe.Kind),
		Retryable: fe.Kind.Retryable(),
		RequestID: requestID(r),
	}, logger)
}

// decodeBody reads a JSON object into dest. An empty body leaves dest at
// its zero value.
func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return failure.Validation("http.decode", "invalid JSON body: %v", err)
	}
	return nil
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
