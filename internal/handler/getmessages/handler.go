// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package getmessages

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
	Messages []chatdb.Turn `json:"messages"`
	State    session.State `json:"state"`
}

// GetMessages returns the session's conversation in order.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.sessions.Get(ctx, auth.UserID(ctx), auth.UserRole(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "getmessages: opening session", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not open chat session")
		return
	}

	httpapi.OK(ctx, w, response{
		Messages: s.History(),
		State:    s.State(),
	})
}
