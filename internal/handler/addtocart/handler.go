// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package addtocart

import (
	"log/slog"
	"net/http"

	"github.com/stellarsoil/assistant/internal/auth"
	"github.com/stellarsoil/assistant/internal/chatdb"
	"github.com/stellarsoil/assistant/internal/httpapi"
	"github.com/stellarsoil/assistant/internal/session"
)

func NewHandler(sessions *session.Registry) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

type Handler struct {
	sessions *session.Registry
}

type request struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

type response struct {
	Message   *chatdb.Turn        `json:"message"`
	Cart      chatdb.CartSnapshot `json:"cart"`
	CartTotal float64             `json:"cartTotal"`
}

// AddToCart adds a product directly to the cart, outside the conversational
// order flow. When the backend is unreachable the line is kept locally and
// the returned turn says so.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req request
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID == "" {
		httpapi.Error(ctx, w, http.StatusBadRequest, "Product ID is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	s, err := h.sessions.Get(ctx, auth.UserID(ctx), auth.UserRole(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "addtocart: opening session", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not open chat session")
		return
	}

	turn, err := s.AddToCart(ctx, req.ProductID, req.Quantity)
	if err != nil {
		slog.ErrorContext(ctx, "addtocart: adding to cart", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not add to cart")
		return
	}

	cart := s.Cart().Current()
	httpapi.OK(ctx, w, response{
		Message:   turn,
		Cart:      cart,
		CartTotal: cart.Total(),
	})
}
