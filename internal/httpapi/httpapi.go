// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package httpapi implements the response envelope shared by all chat
// endpoints. Successful responses carry {"success": true, "data": ...},
// failures {"success": false, "error": "..."}.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Decode unmarshals the request body into v.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("httpapi: decoding request body: %w", err)
	}
	return nil
}

// OK writes data wrapped in a success envelope.
func OK(ctx context.Context, w http.ResponseWriter, data any) {
	write(ctx, w, http.StatusOK, envelope{Success: true, Data: data})
}

// Error writes msg wrapped in a failure envelope with the given status.
func Error(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	write(ctx, w, status, envelope{Success: false, Error: msg})
}

func write(ctx context.Context, w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.ErrorContext(ctx, "httpapi: encoding response", "error", err)
	}
}
