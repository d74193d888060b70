// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package geo resolves a coarse user location for outbound chat requests.
package geo

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/stellarsoil/assistant/internal/chatdb"
)

// Provider is a one-shot best-effort coordinate fetch, e.g. a browser
// geolocation grant relayed by the client.
type Provider interface {
	Locate(ctx context.Context) (chatdb.Location, error)
}

// NewResolver returns a Resolver over provider.
func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolver fetches the location at most once per session. A failed fetch
// leaves the location unset and is not retried automatically; Refresh
// triggers a new attempt. Lookups never block dialogue progress: while a
// fetch is pending, Location reports no location.
type Resolver struct {
	provider Provider
	group    singleflight.Group

	mu        sync.Mutex
	attempted bool
	location  *chatdb.Location
}

// Location returns the cached location, or nil when none is known. The
// first call kicks off the fetch in the background.
func (r *Resolver) Location() *chatdb.Location {
	r.mu.Lock()
	if r.location != nil {
		loc := *r.location
		r.mu.Unlock()
		return &loc
	}
	attempted := r.attempted
	r.attempted = true
	r.mu.Unlock()

	if !attempted {
		go r.fetch()
	}
	return nil
}

// Refresh fetches the location again, blocking until the attempt resolves.
// It returns the new location, or nil if the fetch failed.
func (r *Resolver) Refresh() *chatdb.Location {
	r.mu.Lock()
	r.attempted = true
	r.mu.Unlock()
	r.fetch()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.location == nil {
		return nil
	}
	loc := *r.location
	return &loc
}

func (r *Resolver) fetch() {
	// Collapse concurrent fetches into one provider call.
	_, _, _ = r.group.Do("locate", func() (any, error) {
		loc, err := r.provider.Locate(context.Background())
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		r.mu.Lock()
		r.location = &loc
		r.mu.Unlock()
		return loc, nil
	})
}
