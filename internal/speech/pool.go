// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package speech

import "sync"

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{remotes: map[string]*Remote{}}
}

// Pool hands out one Remote recognizer per user so the HTTP surface pushing
// transcripts and the capture session consuming them share an instance.
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
