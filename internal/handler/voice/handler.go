// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package voice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stellarsoil/assistant/internal/auth"
	"github.com/stellarsoil/assistant/internal/httpapi"
	"github.com/stellarsoil/assistant/internal/i18n"
	"github.com/stellarsoil/assistant/internal/session"
	"github.com/stellarsoil/assistant/internal/speech"
)

// NewHandler returns a Handler for voice capture. base is the server
// lifetime context; capture sessions outlive the requests that start them.
func NewHandler(base context.Context, sessions *session.Registry, pool *speech.Pool) *Handler {
	return &Handler{
		base:     base,
		sessions: sessions,
		pool:     pool,
	}
}

type Handler struct {
	base     context.Context
	sessions *session.Registry
	pool     *speech.Pool
}

type statusResponse struct {
	Capturing bool `json:"capturing"`
}

type resultRequest struct {
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
}

// Begin starts a voice capture session. Starting while one is already
// active leaves it in place.
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.sessions.Get(ctx, auth.UserID(ctx), auth.UserRole(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "voice: opening session", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not open chat session")
		return
	}
	capture := s.Capture()
	if capture == nil {
		httpapi.Error(ctx, w, http.StatusNotImplemented, "Voice input is not enabled")
		return
	}

	capture.Begin(i18n.ContextWithLanguage(h.base, i18n.UserLanguage(ctx)))
	httpapi.OK(ctx, w, statusResponse{Capturing: capture.Active()})
}

// End stops an active capture session without submitting anything.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.sessions.Get(ctx, auth.UserID(ctx), auth.UserRole(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "voice: opening session", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not open chat session")
		return
	}
	if capture := s.Capture(); capture != nil {
		capture.End()
	}
	httpapi.OK(ctx, w, statusResponse{Capturing: false})
}

// Result delivers the outcome of the client's recognition: a final
// transcript, which is submitted like typed text, or a recognition error,
// which ends capture without a turn.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resultRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	remote := h.pool.Get(auth.UserID(ctx))
	var err error
	if req.Error != "" {
		err = remote.PushError(errors.New(req.Error))
	} else {
		err = remote.PushFinal(req.Transcript)
	}
	if err != nil {
		httpapi.Error(ctx, w, http.StatusConflict, "No active voice capture")
		return
	}
	httpapi.OK(ctx, w, statusResponse{Capturing: false})
}
