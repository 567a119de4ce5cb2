// BikeLink Core
// Copyright (c) 2026 The BikeLink Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of BikeLink Core.
//
// BikeLink Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// BikeLink Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with BikeLink Core.  If not, see <http://www.gnu.org/licenses/>.

package state

import (
	"context"

	"github.com/BikeLinkProject/bikelink-core/pkg/helpers/syncutil"
	"github.com/BikeLinkProject/bikelink-core/pkg/links"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/rs/zerolog/log"
)

// EventQueueSize is the capacity of the shared event queue. Monitors drop
// events rather than block when the queue is full, so the buffer absorbs
// telemetry bursts from several controllers while the consumer catches up.
const EventQueueSize = 128

// State holds the runtime state of the BikeLink service.
//
// LOCKING RULES: The mu mutex protects all mutable fields. To prevent deadlocks:
//   - Never send to the event queue while holding the lock
//   - Never call Link.Write or Link.Reset while holding the lock
//   - Pattern: lock → modify state → copy needed data → unlock → act on links
//
// See SetLink, RemoveLink and the relay's Broadcast for examples.
type State struct {
	ctx           context.Context
	links         map[string]links.Link
	Events        chan<- events.GameEvent
	ctxCancelFunc context.CancelFunc
	sessionUUID   string
	mu            syncutil.RWMutex
	ready         bool
}

func NewState(sessionUUID string) (state *State, eventCh <-chan events.GameEvent) {
	eq := make(chan events.GameEvent, EventQueueSize)
	ctx, ctxCancelFunc := context.WithCancel(context.Background())
	return &State{
		links:         make(map[string]links.Link),
		Events:        eq,
		ctx:           ctx,
		ctxCancelFunc: ctxCancelFunc,
		sessionUUID:   sessionUUID,
	}, eq
}

// GetLink returns the Link for a given LinkID.
func (s *State) GetLink(linkID string) (links.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[linkID]
	return l, ok
}

// SetLink registers a link using its LinkID as the key.
// If a link with the same LinkID exists, it is closed first.
func (s *State) SetLink(link links.Link) {
	linkID := link.LinkID()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.links[linkID]
	if ok && existing != nil {
		err := existing.Close()
		if err != nil {
			log.Warn().Err(err).Msg("error closing existing link")
		}
	}

	s.links[linkID] = link
}

// RemoveLink removes a link by its LinkID and closes it.
func (s *State) RemoveLink(linkID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[linkID]
	if ok && l != nil {
		err := l.Close()
		if err != nil {
			log.Warn().Err(err).Msg("error closing link")
		}
	}
	delete(s.links, linkID)
}

// ListLinks returns all registered Link instances.
func (s *State) ListLinks() []links.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ls := make([]links.Link, 0, len(s.links))
	for _, l := range s.links {
		ls = append(ls, l)
	}

	return ls
}

// ConnectedStrings returns the connection strings of every registered link
// that is currently connected, for filtering discovery candidates.
func (s *State) ConnectedStrings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strs := make([]string, 0, len(s.links))
	for _, l := range s.links {
		if l != nil && l.Connected() {
			strs = append(strs, l.Device())
		}
	}

	return strs
}

// SetReady marks the serial side ready. The flag is one-way: it stays set
// even if every link later disconnects.
func (s *State) SetReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
}

func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *State) StopService() {
	s.ctxCancelFunc()
}

func (s *State) GetContext() context.Context {
	return s.ctx
}

func (s *State) SessionUUID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionUUID
}
