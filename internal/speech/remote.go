// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package speech

import (
	"context"
	"errors"
	"sync"
)

// ErrNotCapturing is returned when a recognition event arrives while no
// capture session is active.
var ErrNotCapturing = errors.New("speech: no active capture session")

// NewRemote returns a Remote recognizer.
func NewRemote() *Remote {
	return &Remote{}
}

// Remote is a Recognizer fed by a client relaying its platform speech
// capability: the browser runs recognition and pushes the final transcript
// or error here.
type Remote struct {
	mu     sync.Mutex
	events chan Event
}

// Start opens a recognition session.
func (r *Remote) Start(_ context.Context) (<-chan Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events != nil {
		return nil, errors.New("speech: capture session already active")
	}
	r.events = make(chan Event, 1)
	return r.events, nil
}

// Stop ends the session. Safe to call while idle.
func (r *Remote) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events != nil {
		close(r.events)
		r.events = nil
	}
}

// PushFinal relays a final transcript from the client.
func (r *Remote) PushFinal(transcript string) error {
	return r.push(Event{Kind: EventFinalResult, Transcript: transcript})
}

// PushError relays a recognition failure from the client.
func (r *Remote) PushError(err error) error {
	return r.push(Event{Kind: EventError, Err: err})
}

func (r *Remote) push(event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		return ErrNotCapturing
	}
	select {
	case r.events <- event:
		return nil
	default:
		return ErrNotCapturing
	}
}
