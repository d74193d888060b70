// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package speech

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	mu       sync.Mutex
	events   chan Event
	starts   atomic.Int32
	startErr error
}

func (r *fakeRecognizer) Start(context.Context) (<-chan Event, error) {
	r.starts.Add(1)
	if r.startErr != nil {
		return nil, r.startErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(chan Event, 1)
	return r.events, nil
}

func (r *fakeRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events != nil {
		close(r.events)
		r.events = nil
	}
}

func (r *fakeRecognizer) emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events <- event
}

type submissions struct {
	mu    sync.Mutex
	texts []string
}

func (s *submissions) submit(_ context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func (s *submissions) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.texts...)
}

func waitIdle(t *testing.T, c *Capture) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !c.Active() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("capture did not return to idle")
}

func TestFinalResultSubmittedThenIdle(t *testing.T) {
	recognizer := &fakeRecognizer{}
	subs := &submissions{}
	capture := NewCapture(recognizer, subs.submit)

	require.True(t, capture.Begin(context.Background()))
	recognizer.emit(Event{Kind: EventFinalResult, Transcript: "I need 2kg tomatoes"})

	waitIdle(t, capture)
	assert.Equal(t, []string{"I need 2kg tomatoes"}, subs.all())
}

func TestSecondBeginIsNoOp(t *testing.T) {
	recognizer := &fakeRecognizer{}
	capture := NewCapture(recognizer, (&submissions{}).submit)

	require.True(t, capture.Begin(context.Background()))
	assert.False(t, capture.Begin(context.Background()))
	assert.Equal(t, int32(1), recognizer.starts.Load())

	capture.End()
	waitIdle(t, capture)
}

func TestRecognizerErrorResetsWithoutSubmission(t *testing.T) {
	recognizer := &fakeRecognizer{}
	subs := &submissions{}
	capture := NewCapture(recognizer, subs.submit)

	require.True(t, capture.Begin(context.Background()))
	recognizer.emit(Event{Kind: EventError, Err: errors.New("no speech detected")})

	waitIdle(t, capture)
	assert.Empty(t, subs.all())

	// A new session can start after the error.
	require.True(t, capture.Begin(context.Background()))
	capture.End()
	waitIdle(t, capture)
}

func TestStartFailureStaysIdle(t *testing.T) {
	recognizer := &fakeRecognizer{startErr: errors.New("not supported")}
	capture := NewCapture(recognizer, (&submissions{}).submit)

	assert.False(t, capture.Begin(context.Background()))
	assert.False(t, capture.Active())
}

func TestEndWhileIdleIsNoOp(t *testing.T) {
	recognizer := &fakeRecognizer{}
	capture := NewCapture(recognizer, (&submissions{}).submit)
	capture.End()
	assert.False(t, capture.Active())
}
