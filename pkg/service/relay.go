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

package service

import (
	"fmt"

	"github.com/BikeLinkProject/bikelink-core/pkg/links"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/state"
	"github.com/rs/zerolog/log"
)

// Broadcast sends one newline-terminated message to every broadcast-capable
// connected link and returns the number of links that accepted it. Until the
// one-time controller reset pass has run, broadcasts are dropped so messages
// never land on controllers that are about to reboot.
func Broadcast(st *state.State, msg string) int {
	if !st.Ready() {
		log.Debug().Msgf("links not ready, dropping broadcast: %s", msg)
		return 0
	}

	sent := 0
	for _, l := range links.FilterByCapability(st.ListLinks(), links.CapabilityBroadcast) {
		if !l.Connected() {
			continue
		}
		if err := l.Write(msg + "\n"); err != nil {
			log.Warn().Err(err).Msgf("error broadcasting to link: %s", l.Device())
			continue
		}
		sent++
	}

	if sent == 0 {
		log.Debug().Msgf("no connected link accepted broadcast: %s", msg)
	}

	return sent
}

// SendUpstream relays one newline-terminated message to the TCP uplink.
// A missing or closed uplink is not an error: telemetry is best-effort while
// the relay is away. A failed write closes the uplink itself, which puts it
// back on the supervisor's connect list.
func SendUpstream(st *state.State, msg string) error {
	for _, l := range links.FilterByCapability(st.ListLinks(), links.CapabilityUpstream) {
		if !l.Connected() {
			continue
		}
		if err := l.Write(msg + "\n"); err != nil {
			return fmt.Errorf("failed to send upstream: %w", err)
		}
		return nil
	}

	log.Debug().Msgf("no uplink connected, dropping message: %s", msg)
	return nil
}
