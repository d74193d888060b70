// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package session drives the dialogue with the intent service for one user:
// the transaction state machine, custody of the single outstanding
// confirmation token, and the degraded add-to-cart path.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/stellarsoil/assistant/internal/cart"
	"github.com/stellarsoil/assistant/internal/chatdb"
	"github.com/stellarsoil/assistant/internal/conversation"
	"github.com/stellarsoil/assistant/internal/geo"
	"github.com/stellarsoil/assistant/internal/i18n"
	"github.com/stellarsoil/assistant/internal/intent"
	"github.com/stellarsoil/assistant/internal/speech"
)

// ErrEmptySubmission is returned for a blank submission. Nothing is
// appended and no request is sent.
var ErrEmptySubmission = errors.New("session: empty submission")

// State is the dialogue state of a session.
type State string

const (
	// StateIdle means no exchange is in flight.
	StateIdle State = "idle"
	// StateSending means a request to the intent service is in flight.
	StateSending State = "sending"
	// StateConfirmationRequired means the service proposed a side effect
	// and is waiting for the user's next submission.
	StateConfirmationRequired State = "confirmation_required"
)

const connectionTroubleText = "I'm having trouble connecting right now. Please try again in a moment."

// Backend is the subset of the intent service client used by a session.
type Backend interface {
	SendMessage(ctx context.Context, msg intent.Message) (*intent.Reply, error)
	AddToCart(ctx context.Context, productID string, quantity float64) (*intent.CartResult, error)
}

// Session is one user's open chat. Submissions are serialized: a submission
// arriving while another is in flight waits its turn, so at most one request
// races over the confirmation token slot.
type Session struct {
	id       string
	role     chatdb.Role
	backend  Backend
	log      *conversation.Log
	cart     *cart.Engine
	location *geo.Resolver
	capture  *speech.Capture
	window   int

	// submitMu queues concurrent submissions in arrival order.
	submitMu sync.Mutex

	mu      sync.Mutex
	state   State
	pending chatdb.PendingConfirmation
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Role returns the marketplace role the session was opened with.
func (s *Session) Role() chatdb.Role {
	return s.role
}

// History returns the conversation log read model.
func (s *Session) History() []chatdb.Turn {
	return s.log.History()
}

// Cart returns the cart reconciliation engine for the session's user.
func (s *Session) Cart() *cart.Engine {
	return s.cart
}

// Capture returns the voice input adapter, or nil when voice input is not
// wired.
func (s *Session) Capture() *speech.Capture {
	return s.capture
}

// RefreshLocation forces a new location fetch and reports the result.
func (s *Session) RefreshLocation() *chatdb.Location {
	return s.location.Refresh()
}

// State returns the current dialogue state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PendingConfirmation returns the outstanding confirmation token, or nil.
func (s *Session) PendingConfirmation() chatdb.PendingConfirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	out := make(chatdb.PendingConfirmation, len(s.pending))
	copy(out, s.pending)
	return out
}

// Submit sends one user submission through a full exchange with the intent
// service and returns the resulting assistant turn. Typed text, tapped
// suggested actions, and voice transcripts all arrive here.
//
// The confirmation token is attached verbatim when one is outstanding. A
// transport failure appends an apologetic error turn and leaves the token
// untouched; the failure happened before the service could act on it.
func (s *Session) Submit(ctx context.Context, text string) (*chatdb.Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySubmission
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	// The context window excludes the submission itself; the text rides
	// separately on the request.
	history := s.log.Windowed(s.window)
	now := time.Now()
	s.log.Append(chatdb.Turn{
		ID:        chatdb.NewTurnID(now),
		Sender:    chatdb.SenderUser,
		Text:      text,
		CreatedAt: now,
	})

	s.mu.Lock()
	pending := s.pending
	s.state = StateSending
	s.mu.Unlock()

	reply, err := s.backend.SendMessage(ctx, intent.Message{
		Text:                text,
		Role:                s.role,
		Language:            i18n.UserLanguage(ctx),
		History:             history,
		Location:            s.location.Location(),
		PendingConfirmation: pending,
	})
	if err != nil {
		turn := s.appendAssistant(chatdb.Turn{
			Kind: chatdb.TurnKindError,
			Text: connectionTroubleText,
		})
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		return &turn, nil
	}

	turn := s.appendAssistant(reply.Turn)

	s.mu.Lock()
	switch {
	case turn.RequiresConfirmation && reply.PendingConfirmation != nil:
		// A newer proposal replaces an unresolved one.
		s.pending = reply.PendingConfirmation
		s.state = StateConfirmationRequired
	default:
		// The exchange either committed the proposed action or moved past
		// it (a decline, or a plain informational reply); either way the
		// token was consumed by the service.
		s.pending = nil
		s.state = StateIdle
	}
	s.mu.Unlock()

	if reply.Cart != nil {
		if err := s.cart.ApplyServerSnapshot(ctx, *reply.Cart); err != nil {
			return &turn, fmt.Errorf("session: applying cart from reply: %w", err)
		}
	}
	return &turn, nil
}

// AddToCart performs the explicit add-to-cart side effect for a suggested
// product. On connectivity failure the line is appended to the local cart
// optimistically and a lower-severity warning turn is returned instead of an
// error. Business declines surface as an error turn with no cart change.
func (s *Session) AddToCart(ctx context.Context, productID string, quantity float64) (*chatdb.Turn, error) {
	res, err := s.backend.AddToCart(ctx, productID, quantity)
	if err != nil {
		var rejection *intent.RejectionError
		switch {
		case errors.As(err, &rejection):
			turn := s.appendAssistant(chatdb.Turn{
				Kind: chatdb.TurnKindError,
				Text: "Sorry, I couldn't add that to your cart: " + rejection.Message,
			})
			return &turn, nil
		case errors.Is(err, intent.ErrUnavailable):
			if err := s.cart.ApplyOptimistic(ctx, chatdb.CartLine{
				ID:       productID,
				Quantity: quantity,
			}); err != nil {
				return nil, fmt.Errorf("session: applying optimistic cart line: %w", err)
			}
			turn := s.appendAssistant(chatdb.Turn{
				Kind: chatdb.TurnKindWarning,
				Text: "Added to cart locally. Server connection unavailable, so the cart will be synchronized when connection is restored.",
			})
			return &turn, nil
		default:
			return nil, fmt.Errorf("session: adding to cart: %w", err)
		}
	}

	if res.Cart != nil {
		if err := s.cart.ApplyServerSnapshot(ctx, *res.Cart); err != nil {
			return nil, fmt.Errorf("session: applying cart after add: %w", err)
		}
	}
	turn := s.appendAssistant(chatdb.Turn{
		Kind: chatdb.TurnKindSuccess,
		Text: res.Message,
	})
	return &turn, nil
}

func (s *Session) appendAssistant(turn chatdb.Turn) chatdb.Turn {
	now := time.Now()
	turn.ID = chatdb.NewTurnID(now)
	turn.Sender = chatdb.SenderAssistant
	turn.CreatedAt = now
	s.log.Append(turn)
	return turn
}
