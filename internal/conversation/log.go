// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package conversation holds the ordered, append-only log of turns in one
// chat session.
package conversation

import (
	"sync"

	"github.com/stellarsoil/assistant/internal/chatdb"
)

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Log is an append-only sequence of turns. Appended turns are never
// mutated; readers always see them in append order.
type Log struct {
	mu    sync.RWMutex
	turns []chatdb.Turn
}

// Append adds turn to the end of the log.
func (l *Log) Append(turn chatdb.Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
}

// History returns all turns in append order.
func (l *Log) History() []chatdb.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]chatdb.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Windowed returns the last n turns in chronological order, or fewer when
// the log is shorter. It is used to bound the context sent to the intent
// service.
func (l *Log) Windowed(n int) []chatdb.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := len(l.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]chatdb.Turn, len(l.turns)-start)
	copy(out, l.turns[start:])
	return out
}

// Len returns the number of turns in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
