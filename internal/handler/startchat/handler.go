// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package startchat

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
	SessionID string        `json:"sessionId"`
	Role      chatdb.Role   `json:"role"`
	Messages  []chatdb.Turn `json:"messages"`
}

// StartChat opens the user's chat session, creating it with a greeting when
// this is the first request, and returns the conversation so far.
func (h *Handler) StartChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.sessions.Get(ctx, auth.UserID(ctx), auth.UserRole(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "startchat: opening session", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not start chat")
		return
	}

	httpapi.OK(ctx, w, response{
		SessionID: s.ID(),
		Role:      s.Role(),
		Messages:  s.History(),
	})
}
