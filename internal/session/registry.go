// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stellarsoil/assistant/internal/cart"
	"github.com/stellarsoil/assistant/internal/chatdb"
	"github.com/stellarsoil/assistant/internal/conversation"
	"github.com/stellarsoil/assistant/internal/geo"
	"github.com/stellarsoil/assistant/internal/speech"
	"github.com/stellarsoil/assistant/internal/store"
)

// NewRegistry returns a Registry creating sessions on first use.
//
// recognizers creates the speech recognizer for a user's capture session;
// it may be nil when voice input is not wired.
func NewRegistry(backend Backend, db *store.DB, locations func(userID string) geo.Provider, recognizers func(userID string) speech.Recognizer, window int) *Registry {
	return &Registry{
		backend:     backend,
		db:          db,
		locations:   locations,
		recognizers: recognizers,
		window:      window,
		sessions:    map[string]*Session{},
	}
}

// Registry hands out the open chat session for each user. Turns and the
// confirmation token live only as long as the session; the cart outlives it
// through the durable store.
type Registry struct {
	backend     Backend
	db          *store.DB
	locations   func(userID string) geo.Provider
	recognizers func(userID string) speech.Recognizer
	window      int

	mu       sync.Mutex
	sessions map[string]*Session
}

// Get returns the open session for userID, creating one with a greeting
// turn when none exists. role only applies to a newly created session.
func (r *Registry) Get(ctx context.Context, userID string, role chatdb.Role) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return s, nil
	}

	engine, err := cart.NewEngine(ctx, r.db, userID)
	if err != nil {
		return nil, fmt.Errorf("session: creating cart engine: %w", err)
	}

	if role == "" {
		role = chatdb.RoleCustomer
	}
	s := &Session{
		id:       uuid.NewString(),
		role:     role,
		backend:  r.backend,
		log:      conversation.NewLog(),
		cart:     engine,
		location: geo.NewResolver(r.locations(userID)),
		window:   r.window,
		state:    StateIdle,
	}

	now := time.Now()
	s.log.Append(chatdb.Turn{
		ID:        chatdb.NewTurnID(now),
		Sender:    chatdb.SenderAssistant,
		Kind:      chatdb.TurnKindWelcome,
		Text:      Greeting(role, now),
		CreatedAt: now,
	})

	if r.recognizers != nil {
		s.capture = speech.NewCapture(r.recognizers(userID), func(ctx context.Context, text string) {
			if _, err := s.Submit(ctx, text); err != nil {
				// Blank transcripts are dropped silently, like blank typed input.
				return
			}
		})
	}

	r.sessions[userID] = s
	return s, nil
}
