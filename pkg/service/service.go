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

// Package service supervises bike controller connections and moves their
// events to the consumer: discovery, connect and retry, the one-time reset
// pass, event dispatch, and the outbound relay.
package service

import (
	"errors"
	"sync"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/BikeLinkProject/bikelink-core/pkg/links"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/state"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Service is a handle on a running link service.
type Service struct {
	st   *state.State
	done chan struct{}
}

// Start brings up the link service: shared state, the event dispatcher, the
// connection supervisor, and the hotplug watcher. onEvent is invoked once per
// parsed event on the dispatch goroutine; a nil callback discards events.
func Start(cfg *config.Instance, onEvent func(events.GameEvent)) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config instance is required")
	}

	log.Info().Msgf("version: %s", config.AppVersion)

	sessionUUID := uuid.New().String()
	log.Info().Msgf("session UUID: %s", sessionUUID)

	st, eventCh := state.NewState(sessionUUID)

	if onEvent == nil {
		onEvent = func(events.GameEvent) {}
	}

	kick := make(chan struct{}, 1)

	var wg sync.WaitGroup

	log.Info().Msg("starting event dispatcher")
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatchEvents(st.GetContext(), eventCh, onEvent)
	}()

	log.Info().Msg("starting link manager")
	wg.Add(1)
	go func() {
		defer wg.Done()
		linkManager(cfg, st, clockwork.NewRealClock(), kick, supportedLinks)
	}()

	if cfg.HotplugEvents() {
		log.Info().Msg("starting hotplug watcher")
		wg.Add(1)
		go func() {
			defer wg.Done()
			watchDeviceEvents(st.GetContext(), devDir, kick)
		}()
	}

	doneCh := make(chan struct{})
	go func() {
		<-st.GetContext().Done()
		log.Info().Msg("service context cancelled, running cleanup")

		// Links are closed only after the supervisor has exited, so a
		// mid-round connect cannot slip a fresh link past cleanup.
		wg.Wait()

		for _, l := range st.ListLinks() {
			if l == nil {
				continue
			}
			if closeErr := l.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("error closing link")
			}
		}

		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	return &Service{st: st, done: doneCh}, nil
}

// Stop shuts the service down and blocks until cleanup has finished. Safe to
// call more than once.
func (s *Service) Stop() error {
	s.st.StopService()
	<-s.done
	return nil
}

// Done is closed once the service goroutines have exited and every link has
// been closed. Per-link monitors wind down on their own within one read
// timeout of their link closing.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Ready reports whether the one-time controller reset pass has completed.
// Once true it stays true for the rest of the run.
func (s *Service) Ready() bool {
	return s.st.Ready()
}

// UplinkReady reports whether the TCP uplink is connected right now. Unlike
// Ready this can flip back to false.
func (s *Service) UplinkReady() bool {
	for _, l := range links.FilterByCapability(s.st.ListLinks(), links.CapabilityUpstream) {
		if l.Connected() {
			return true
		}
	}
	return false
}

// Broadcast sends msg to every broadcast-capable connected link and returns
// the number of links that accepted it.
func (s *Service) Broadcast(msg string) int {
	return Broadcast(s.st, msg)
}

// SendUpstream relays msg to the TCP uplink, dropping it when no uplink is
// connected.
func (s *Service) SendUpstream(msg string) error {
	return SendUpstream(s.st, msg)
}

// ResetAllLinks reboots every connected reset-capable controller and returns
// the number of reset attempts made.
func (s *Service) ResetAllLinks() int {
	return ResetAllLinks(s.st)
}
