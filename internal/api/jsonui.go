package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/metrics"
	"swaad-chat/internal/jsonui"
)

type renderResponse struct {
	Schema  *jsonui.Schema  `json:"schema"`
	Element *jsonui.Element `json:"element"`
	HTML    string          `json:"html"`
}

type actionRequest struct {
	Action string `json:"action"`
	Label  string `json:"label"`
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewParseError(err)
	}
	return data, nil
}

// handleValidateUI always answers 200 with the validation result.
func (s *Server) handleValidateUI(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	result := s.deps.Validator.Validate(json.RawMessage(data))
	metrics.JSONUIValidations.WithLabelValues(validationLabel(result), "api").Inc()
	respondJSON(w, http.StatusOK, result)
}

// handleRenderUI validates first; only accepted payloads reach the renderer.
func (s *Server) handleRenderUI(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	result := s.deps.Validator.Validate(json.RawMessage(data))
	metrics.JSONUIValidations.WithLabelValues(validationLabel(result), "api").Inc()
	if !result.Valid {
		respondError(w, result.Err())
		return
	}

	element := s.deps.Renderer.Render(result.Schema)
	respondJSON(w, http.StatusOK, renderResponse{
		Schema:  result.Schema,
		Element: element,
		HTML:    element.HTML(),
	})
}

func (s *Server) handleUIAction(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req actionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		respondError(w, apperrors.NewParseError(err))
		return
	}

	result := s.deps.Actions.Dispatch(strings.TrimSpace(req.Action), req.Label)
	if !result.Allowed {
		respondError(w, apperrors.NewActionNotAllowedError(req.Action).WithMetadata("reason", result.Reason))
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func validationLabel(result *jsonui.ValidationResult) string {
	if result.Valid {
		return "accepted"
	}
	return "rejected"
}
