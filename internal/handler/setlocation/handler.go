// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package setlocation

import (
	"log/slog"
	"net/http"

	"github.com/stellarsoil/assistant/internal/auth"
	"github.com/stellarsoil/assistant/internal/chatdb"
	"github.com/stellarsoil/assistant/internal/geo"
	"github.com/stellarsoil/assistant/internal/httpapi"
	"github.com/stellarsoil/assistant/internal/session"
)

func NewHandler(sessions *session.Registry, pool *geo.Pool) *Handler {
	return &Handler{
		sessions: sessions,
		pool:     pool,
	}
}

type Handler struct {
	sessions *session.Registry
	pool     *geo.Pool
}

type request struct {
	Coordinates [2]float64 `json:"coordinates"`
	Address     string     `json:"address"`
}

type response struct {
	Location *chatdb.Location `json:"location"`
}

// SetLocation records the location the client's geolocation grant produced.
// Later chat requests carry it for nearby-product matching.
func (h *Handler) SetLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req request
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, err := h.sessions.Get(ctx, auth.UserID(ctx), auth.UserRole(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "setlocation: opening session", "error", err)
		httpapi.Error(ctx, w, http.StatusInternalServerError, "Could not open chat session")
		return
	}

	h.pool.Get(auth.UserID(ctx)).Set(chatdb.Location{
		Coordinates: req.Coordinates,
		Address:     req.Address,
	})

	httpapi.OK(ctx, w, response{Location: s.RefreshLocation()})
}
