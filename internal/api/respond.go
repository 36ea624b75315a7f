package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "swaad-chat/internal/common/errors"
)

// errorBody is the wire shape of every failed response.
type errorBody struct {
	Error        string   `json:"error"`
	Code         string   `json:"code"`
	RetryAfterMs int64    `json:"retryAfterMs,omitempty"`
	Issues       []string `json:"issues,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err error) {
	stdErr := apperrors.AsStandardError(err)
	body := errorBody{Error: stdErr.Message, Code: string(stdErr.Code)}

	if ms, ok := stdErr.Metadata["retryAfterMs"].(int64); ok {
		body.RetryAfterMs = ms
		w.Header().Set("Retry-After", strconv.FormatInt((ms+999)/1000, 10))
	}
	if issues, ok := stdErr.Metadata["issues"].([]string); ok {
		body.Issues = issues
	}
	respondJSON(w, apperrors.HTTPStatus(stdErr.Code), body)
}

func (s *Server) methodNotAllowed(allowed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowed)
		respondError(w, apperrors.NewMethodNotAllowedError(allowed))
	}
}
