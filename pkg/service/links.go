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
	"strings"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/BikeLinkProject/bikelink-core/pkg/helpers"
	"github.com/BikeLinkProject/bikelink-core/pkg/links"
	"github.com/BikeLinkProject/bikelink-core/pkg/links/bikeserial"
	"github.com/BikeLinkProject/bikelink-core/pkg/links/tcplink"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/state"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// linkSource returns one fresh instance of every link driver. The supervisor
// asks for new instances each round, so a failed connect never leaves device
// state behind in a shared driver object.
type linkSource func(cfg *config.Instance) []links.Link

func supportedLinks(cfg *config.Instance) []links.Link {
	return []links.Link{
		bikeserial.NewLink(cfg),
		tcplink.NewLink(cfg),
	}
}

type toConnectDevice struct {
	connectionString string
	device           config.LinksConnect
}

// isPathConnected checks if any registered link is using the given path.
func isPathConnected(ls []links.Link, path string) bool {
	for _, l := range ls {
		if l != nil && l.Path() == path {
			return true
		}
	}
	return false
}

// connectLinks opens every configured link that is not yet registered, then
// runs auto-detection when it is enabled. Failed opens are logged and retried
// on the next round.
func connectLinks(cfg *config.Instance, st *state.State, source linkSource) {
	ls := st.ListLinks()
	var toConnect []toConnectDevice
	toConnectStrs := func() []string {
		var tc []string
		for _, device := range toConnect {
			tc = append(tc, device.connectionString)
		}
		return tc
	}

	for _, device := range cfg.ConnectLinks() {
		if !isPathConnected(ls, device.Path) &&
			!helpers.Contains(toConnectStrs(), device.ConnectionString()) {
			log.Debug().Msgf("config device not connected, adding: %s", device.ConnectionString())
			toConnect = append(toConnect, toConnectDevice{
				connectionString: device.ConnectionString(),
				device:           device,
			})
		}
	}

	// two config entries pointing at one device would fight over the port
	pathSeen := make(map[string]string)
	validToConnect := make([]toConnectDevice, 0, len(toConnect))
	for _, device := range toConnect {
		if firstConn, exists := pathSeen[device.device.Path]; exists {
			log.Warn().Msgf(
				"device path %s configured for multiple links (%s and %s) - ignoring %s",
				device.device.Path, firstConn, device.connectionString, device.connectionString,
			)
			continue
		}
		pathSeen[device.device.Path] = device.connectionString
		validToConnect = append(validToConnect, device)
	}

	// user defined links
	for _, device := range validToConnect {
		if isPathConnected(st.ListLinks(), device.device.Path) {
			continue
		}
		dt := links.NormalizeDriverID(device.device.Driver)
		for _, l := range source(cfg) {
			ids := l.IDs()
			normalizedIDs := make([]string, len(ids))
			for i, id := range ids {
				normalizedIDs[i] = links.NormalizeDriverID(id)
			}
			if !helpers.Contains(normalizedIDs, dt) {
				continue
			}
			log.Debug().Msgf("connecting to link: %s", device.connectionString)
			err := l.Open(device.device, st.Events)
			if err != nil {
				log.Warn().Msgf("error opening link: %s", err)
				continue
			}
			st.SetLink(l)
			log.Info().Msgf("opened link: %s", device.connectionString)
			break
		}
	}

	if cfg.AutoDetect() {
		detectLinks(cfg, st, source)
	}
}

// detectLinks runs discovery for every auto-detect driver and opens each new
// candidate. A driver instance owns at most one device, so additional
// candidates from the same driver get fresh instances.
func detectLinks(cfg *config.Instance, st *state.State, source linkSource) {
	connected := st.ConnectedStrings()

	for _, drv := range source(cfg) {
		metadata := drv.Metadata()
		if !metadata.DefaultAutoDetect {
			continue
		}

		inst := drv
		for _, candidate := range drv.Detect(connected) {
			parts := strings.SplitN(candidate, ":", 2)
			if len(parts) != 2 {
				log.Error().Msgf("invalid auto-detect string: %s", candidate)
				continue
			}

			if inst == nil {
				inst = driverInstance(cfg, source, metadata.ID)
				if inst == nil {
					break
				}
			}

			device := config.LinksConnect{Driver: parts[0], Path: parts[1]}
			err := inst.Open(device, st.Events)
			if err != nil {
				log.Debug().Err(err).Msgf("failed to connect detected link: %s", candidate)
				continue
			}

			if !inst.Connected() {
				if closeErr := inst.Close(); closeErr != nil {
					log.Debug().Err(closeErr).Msg("error closing link after failed connection")
				}
				continue
			}

			st.SetLink(inst)
			connected = append(connected, candidate)
			log.Info().Msgf("connected auto-detected link: %s", candidate)
			inst = nil
		}
	}
}

func driverInstance(cfg *config.Instance, source linkSource, id string) links.Link {
	for _, l := range source(cfg) {
		if l.Metadata().ID == id {
			return l
		}
	}
	return nil
}

// ResetAllLinks runs the reboot handshake on every connected reset-capable
// link in the registry and returns the number of reset attempts made.
func ResetAllLinks(st *state.State) int {
	attempts := 0
	for _, l := range links.FilterByCapability(st.ListLinks(), links.CapabilityReset) {
		if !l.Connected() {
			continue
		}
		attempts++
		if err := l.Reset(); err != nil {
			log.Warn().Err(err).Msgf("error resetting link: %s", l.Device())
		}
	}
	return attempts
}

// linkManager is the main service loop for device connections. It prunes
// dead links, connects configured and auto-detected devices, and runs the
// one-time controller reset pass once the first controller is up.
//
// The kick channel lets the hotplug watcher trigger a discovery round
// without waiting out the retry interval.
func linkManager(
	cfg *config.Instance,
	st *state.State,
	clock clockwork.Clock,
	kick <-chan struct{},
	source linkSource,
) {
	log.Info().Msgf("link manager started, auto-detect=%v", cfg.AutoDetect())

	ticker := clock.NewTicker(cfg.RetryInterval())
	defer ticker.Stop()

	connectAttempts := 0
	lastLinkCount := 0

	for {
		select {
		case <-st.GetContext().Done():
			log.Info().Msg("link manager shutting down via context cancellation")
			return
		case <-ticker.Chan():
		case <-kick:
			log.Debug().Msg("device change notification, running discovery now")
		}

		connectAttempts++
		ls := st.ListLinks()

		if len(ls) != lastLinkCount {
			if len(ls) == 0 {
				log.Info().Msg("all links disconnected")
			} else {
				log.Info().Msgf("link count changed: %d connected", len(ls))
			}
			lastLinkCount = len(ls)
		} else if connectAttempts%120 == 1 && len(ls) == 0 {
			// Only log if no links for 2 minutes
			log.Info().Msgf("no links connected after %d attempts, auto-detect=%v",
				connectAttempts, cfg.AutoDetect())
		}

		for _, l := range ls {
			if l != nil && !l.Connected() {
				linkID := l.LinkID()
				log.Debug().Msgf("pruning disconnected link: %s", linkID)
				st.RemoveLink(linkID)
			}
		}

		connectLinks(cfg, st, source)

		// Controllers reboot once per run, the first time any of them is
		// connected. Ready stays set from then on.
		if !st.Ready() {
			if n := ResetAllLinks(st); n > 0 {
				st.SetReady()
				log.Info().Msgf("controllers ready after reset pass (%d reset)", n)
			}
		}
	}
}
