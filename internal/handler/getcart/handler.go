// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package getcart

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

type response struct {
	Cart      chatdb.CartSnapshot `json:"cart"`
	CartTotal float64             `json:"cartTotal"`
}

// GetCart returns the current cart snapshot, which survives restarts and may
// be locally sourced while the backend is unreachable.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.sessions.Get(ctx, auth.UserID(ctx), auth.UserRole(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "getcart: opening session", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not open chat session")
		return
	}

	cart := s.Cart().Current()
	httpapi.OK(ctx, w, response{
		Cart:      cart,
		CartTotal: cart.Total(),
	})
}
