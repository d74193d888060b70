// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package sendmessage

import (
	"errors"
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
	Message string `json:"message"`
}

type response struct {
	Message   *chatdb.Turn        `json:"message"`
	State     session.State       `json:"state"`
	Cart      chatdb.CartSnapshot `json:"cart"`
	CartTotal float64             `json:"cartTotal"`
}

// SendMessage submits one chat turn and returns the assistant's reply. A
// backend outage still returns 200 with an error-styled turn so the client
// renders it inline like any other reply.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req request
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, err := h.sessions.Get(ctx, auth.UserID(ctx), auth.UserRole(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "sendmessage: opening session", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not open chat session")
		return
	}

	turn, err := s.Submit(ctx, req.Message)
	if err != nil {
		if errors.Is(err, session.ErrEmptySubmission) {
			httpapi.Error(ctx, w, http.StatusBadRequest, "Message is required")
			return
		}
		slog.ErrorContext(ctx, "sendmessage: submitting message", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not process message")
		return
	}

	cart := s.Cart().Current()
	httpapi.OK(ctx, w, response{
		Message:   turn,
		State:     s.State(),
		Cart:      cart,
		CartTotal: cart.Total(),
	})
}
