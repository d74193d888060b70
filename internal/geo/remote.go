// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package geo

import (
	"context"
	"errors"
	"sync"

	"github.com/stellarsoil/assistant/internal/chatdb"
)

// ErrNoLocation is returned by a Remote before the client has reported a
// location.
var ErrNoLocation = errors.New("geo: no location reported")

// NewRemote returns a Remote with no location.
func NewRemote() *Remote {
	return &Remote{}
}

// Remote is a Provider fed by the client relaying its geolocation grant.
// Locate fails until a location has been reported.
type Remote struct {
	mu       sync.Mutex
	location *chatdb.Location
}

func (r *Remote) Locate(context.Context) (chatdb.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.location == nil {
		return chatdb.Location{}, ErrNoLocation
	}
	return *r.location, nil
}

// Set records the client's reported location.
func (r *Remote) Set(loc chatdb.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.location = &loc
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{remotes: map[string]*Remote{}}
}

// Pool hands out one Remote per user so the HTTP surface reporting
// locations and the session resolving them share an instance.
type Pool struct {
	mu      sync.Mutex
	remotes map[string]*Remote
}

// Get returns the Remote for userID, creating it on first use.
func (p *Pool) Get(userID string) *Remote {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.remotes[userID]; ok {
		return r
	}
	r := NewRemote()
	p.remotes[userID] = r
	return r
}
