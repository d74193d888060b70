// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package speech adapts a speech recognizer into the same text submission
// path as typed input.
package speech

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wandb/parallel"
)

// EventKind is the type of a recognizer event.
type EventKind int

const (
	// EventFinalResult carries a final transcript.
	EventFinalResult EventKind = iota
	// EventError reports a recognition failure.
	EventError
)

// Event is one occurrence during a recognition session.
type Event struct {
	Kind       EventKind
	Transcript string
	Err        error
}

// Recognizer is a platform speech capture capability. Start opens a
// recognition session delivering events until the session ends, at which
// point the channel is closed. Stop ends the session early.
type Recognizer interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop()
}

// NewCapture returns a Capture funneling final transcripts into submit.
func NewCapture(recognizer Recognizer, submit func(ctx context.Context, text string)) *Capture {
	return &Capture{
		recognizer: recognizer,
		submit:     submit,
	}
}

// Capture is the voice input adapter. At most one recognition session is
// active at a time; a final transcript is submitted through the same path
// as typed text and then capture ends. Errors reset capture to idle without
// a retry and without submitting anything.
type Capture struct {
	recognizer Recognizer
	submit     func(ctx context.Context, text string)

	mu     sync.Mutex
	active bool
}

// Begin starts voice capture. It reports whether a new session was started;
// it is a no-op while a session is already active.
func (c *Capture) Begin(ctx context.Context) bool {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return false
	}
	c.active = true
	c.mu.Unlock()

	events, err := c.recognizer.Start(ctx)
	if err != nil {
		slog.WarnContext(ctx, "speech: starting recognizer", "error", err)
		c.setIdle()
		return false
	}

	grp := parallel.ErrGroup(parallel.Unlimited(ctx))
	grp.Go(func(ctx context.Context) error {
		return c.pump(ctx, events)
	})
	go func() {
		if err := grp.Wait(); err != nil {
			slog.WarnContext(ctx, "speech: recognition session ended", "error", err)
		}
		c.setIdle()
	}()
	return true
}

// End stops an active capture session. It is a no-op while idle.
func (c *Capture) End() {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active {
		c.recognizer.Stop()
	}
}

// Active reports whether a capture session is in progress.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Capture) pump(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			c.recognizer.Stop()
			return ctx.Err() //nolint:wrapcheck
		case event, ok := <-events:
			if !ok {
				return nil
			}
			switch event.Kind {
			case EventFinalResult:
				c.submit(ctx, event.Transcript)
				c.recognizer.Stop()
				return nil
			case EventError:
				// Nothing was said, so no turn is created.
				c.recognizer.Stop()
				return event.Err
			}
		}
	}
}

func (c *Capture) setIdle() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
}
