package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"swaad-chat/internal/agent"
	apperrors "swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/metrics"
	"swaad-chat/internal/models"
)

const (
	MaxMessageLength   = 1000
	MaxSessionIDLength = 64

	maxBodyBytes = 1 << 20
)

// chatPayload keeps message and sessionId raw so a wrong type is reported
// as INVALID_MESSAGE / INVALID_SESSION rather than a parse error.
type chatPayload struct {
	Message   json.RawMessage   `json:"message"`
	SessionID json.RawMessage   `json:"sessionId"`
	Cart      []models.CartItem `json:"cart,omitempty"`
}

// decodeChatRequest validates and sanitizes a chat body.
func decodeChatRequest(data []byte) (agent.ChatRequest, error) {
	var payload chatPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return agent.ChatRequest{}, apperrors.NewParseError(err)
	}

	message, ok := rawString(payload.Message)
	if !ok || strings.TrimSpace(message) == "" {
		return agent.ChatRequest{}, apperrors.NewInvalidMessageError("message must be a non-empty string")
	}
	sessionID, ok := rawString(payload.SessionID)
	if !ok || strings.TrimSpace(sessionID) == "" {
		return agent.ChatRequest{}, apperrors.NewInvalidSessionError("sessionId must be a non-empty string")
	}

	return agent.ChatRequest{
		Message:   truncate(strings.TrimSpace(message), MaxMessageLength),
		SessionID: truncate(strings.TrimSpace(sessionID), MaxSessionIDLength),
		Cart:      payload.Cart,
	}, nil
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, apperrors.NewParseError(err))
		return
	}

	req, err := decodeChatRequest(data)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.allow(r.Context(), req.SessionID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, s.deps.Chat.Chat(r.Context(), req))
}

// allow consults the limiter. A limiter outage lets the request through.
func (s *Server) allow(ctx context.Context, sessionID string) error {
	decision, err := s.deps.Limiter.Allow(ctx, sessionID)
	if err != nil {
		s.logger.Warn("rate limiter unavailable, allowing request", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return nil
	}
	if decision.Allowed {
		return nil
	}

	metrics.RateLimitRejections.WithLabelValues(decision.Scope).Inc()
	s.logger.Info("rate limited", map[string]interface{}{
		"sessionId":    sessionID,
		"scope":        decision.Scope,
		"retryAfterMs": decision.RetryAfter.Milliseconds(),
	})
	return apperrors.NewRateLimitedError(decision.Scope, decision.RetryAfter)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if strings.TrimSpace(sessionID) == "" {
		respondError(w, apperrors.NewInvalidSessionError("sessionId is required"))
		return
	}
	if err := s.deps.Chat.Reset(r.Context(), truncate(sessionID, MaxSessionIDLength)); err != nil {
		var stdErr *apperrors.StandardError
		if !errors.As(err, &stdErr) {
			err = apperrors.NewHistoryStoreFailedError("evict", err)
		}
		respondError(w, fmt.Errorf("reset session: %w", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
