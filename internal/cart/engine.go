// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package cart reconciles the two sources of truth for the shopping cart:
// authoritative snapshots returned by the backend, and locally guessed lines
// appended while the backend is unreachable.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stellarsoil/assistant/internal/chatdb"
	"github.com/stellarsoil/assistant/internal/store"
)

// ErrInvalidLine is returned for an optimistic line without a product ID or
// positive quantity.
var ErrInvalidLine = errors.New("cart: invalid line")

// NewEngine returns an Engine for userID, restoring any snapshot persisted
// by a previous run.
func NewEngine(ctx context.Context, db *store.DB, userID string) (*Engine, error) {
	e := &Engine{
		db:  db,
		key: "cart/" + userID,
	}

	value, err := db.Get(ctx, e.key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("cart: restoring snapshot: %w", err)
		}
		return e, nil
	}
	if err := json.Unmarshal(value, &e.snapshot); err != nil {
		return nil, fmt.Errorf("cart: decoding persisted snapshot: %w", err)
	}
	return e, nil
}

// Engine owns the cart snapshot for one user. It is the only writer of the
// snapshot; every mutation is a whole-snapshot replace or a whole-line
// append, persisted before observers are notified.
type Engine struct {
	db  *store.DB
	key string

	mu       sync.Mutex
	snapshot chatdb.CartSnapshot
	subs     []chan chatdb.CartSnapshot
}

// ApplyServerSnapshot replaces the cart with an authoritative snapshot from
// the backend. Replacement is wholesale; no lines from the previous snapshot
// survive, and any local-optimistic provenance is cleared.
func (e *Engine) ApplyServerSnapshot(ctx context.Context, snapshot chatdb.CartSnapshot) error {
	snapshot.Provenance = chatdb.ProvenanceServer
	if snapshot.LastSyncedAt.IsZero() {
		snapshot.LastSyncedAt = time.Now()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.persistLocked(ctx, snapshot); err != nil {
		return err
	}
	e.snapshot = snapshot
	e.notifyLocked()
	return nil
}

// ApplyOptimistic appends line to the cart as a local guess. It is only
// called after an add-to-cart request failed due to connectivity, never for
// a business rejection. Missing fields fall back to a generic name, zero
// price, and a placeholder image. A line for the same product accumulates
// quantity instead of duplicating the ID.
func (e *Engine) ApplyOptimistic(ctx context.Context, line chatdb.CartLine) error {
	if line.ID == "" || line.Quantity <= 0 {
		return ErrInvalidLine
	}
	if line.Name == "" {
		line.Name = "Product"
	}
	if line.Unit == "" {
		line.Unit = "kg"
	}
	if line.ImageRef == "" {
		line.ImageRef = chatdb.PlaceholderImage
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := chatdb.CartSnapshot{
		Lines:        make([]chatdb.CartLine, len(e.snapshot.Lines)),
		Provenance:   chatdb.ProvenanceLocal,
		LastSyncedAt: time.Now(),
	}
	copy(next.Lines, e.snapshot.Lines)

	merged := false
	for i := range next.Lines {
		if next.Lines[i].ID == line.ID {
			next.Lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		next.Lines = append(next.Lines, line)
	}

	if err := e.persistLocked(ctx, next); err != nil {
		return err
	}
	e.snapshot = next
	e.notifyLocked()
	return nil
}

// Current returns the cart snapshot. The returned value is a copy; mutating
// it does not affect the engine.
func (e *Engine) Current() chatdb.CartSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyLocked()
}

// Subscribe registers an observer of cart changes, e.g. a badge view. Each
// change delivers the new snapshot; a slow observer misses intermediate
// snapshots rather than blocking mutations.
func (e *Engine) Subscribe() <-chan chatdb.CartSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch := make(chan chatdb.CartSnapshot, 1)
	e.subs = append(e.subs, ch)
	return ch
}

func (e *Engine) persistLocked(ctx context.Context, snapshot chatdb.CartSnapshot) error {
	value, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("cart: encoding snapshot: %w", err)
	}
	if err := e.db.Put(ctx, e.key, value); err != nil {
		return fmt.Errorf("cart: persisting snapshot: %w", err)
	}
	return nil
}

func (e *Engine) notifyLocked() {
	for _, ch := range e.subs {
		snapshot := e.copyLocked()
		select {
		case ch <- snapshot:
		default:
			// Replace a stale undelivered snapshot with the current one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

func (e *Engine) copyLocked() chatdb.CartSnapshot {
	out := e.snapshot
	out.Lines = make([]chatdb.CartLine, len(e.snapshot.Lines))
	copy(out.Lines, e.snapshot.Lines)
	return out
}
