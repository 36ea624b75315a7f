package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "swaad-chat/internal/common/errors"
	"swaad-chat/internal/orders"
)

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req orders.PlaceOrderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		respondError(w, apperrors.NewParseError(err))
		return
	}
	if req.SessionID != "" {
		req.SessionID = truncate(req.SessionID, MaxSessionIDLength)
	}

	order, err := s.deps.Orders.Place(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := s.deps.Orders.Get(r.Context(), id)
	if errors.Is(err, orders.ErrOrderNotFound) {
		respondError(w, apperrors.NewOrderNotFoundError(id))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
