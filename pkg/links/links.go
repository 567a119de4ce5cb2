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

// Package links defines the interface shared by all physical connection
// drivers: serial controllers and the TCP uplink.
package links

import (
	"errors"
	"strings"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/rs/zerolog/log"
)

type Capability string

const (
	// CapabilityBroadcast marks links that accept fan-out sends.
	CapabilityBroadcast Capability = "broadcast"
	// CapabilityReset marks links with a hardware reset line.
	CapabilityReset Capability = "reset"
	// CapabilityUpstream marks the link telemetry is relayed out on.
	CapabilityUpstream Capability = "upstream"
)

// ErrResetUnsupported is returned by Reset on links without a reset line.
var ErrResetUnsupported = errors.New("link does not support reset")

type DriverMetadata struct {
	ID                string
	Description       string
	DefaultEnabled    bool
	DefaultAutoDetect bool
}

type Link interface {
	// Metadata returns static configuration for this driver.
	Metadata() DriverMetadata
	// IDs returns the driver id strings accepted for this link in config.
	IDs() []string
	// Open any necessary connections to the device and start the read
	// monitor. Takes a device connection and a channel to send events.
	Open(config.LinksConnect, chan<- events.GameEvent) error
	// Close any open connections to the device and stop the monitor.
	Close() error
	// Detect searches for candidate devices and returns their connection
	// strings. Takes a list of currently connected connection strings;
	// candidates already in that list are not returned.
	Detect(connected []string) []string
	// Device returns the device connection string.
	Device() string
	// Path returns the underlying device path or endpoint address.
	Path() string
	// Connected returns true if the device is connected and active.
	Connected() bool
	// Info returns a string with information about the connected device.
	Info() string
	// LinkID returns the stable registry id for this link.
	LinkID() string
	// Write sends one line of text out the link. Blocks until the write
	// completes or fails.
	Write(string) error
	// Reset runs the hardware reset-and-reconnect handshake on links that
	// support it, respawning the read monitor on success.
	Reset() error
	// Capabilities returns the list of capabilities supported by this link.
	Capabilities() []Capability
}

// NormalizeDriverID maps user-facing driver id spellings onto the canonical
// form used by Metadata().ID.
func NormalizeDriverID(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "_", ""))
}

// Dispatch performs the non-blocking send every monitor uses to hand events
// to the service queue. A full queue drops the event with a warning rather
// than stalling device I/O.
func Dispatch(ch chan<- events.GameEvent, ev events.GameEvent) {
	select {
	case ch <- ev:
	default:
		log.Warn().
			Str("device", ev.Device).
			Str("kind", ev.Kind).
			Msg("event queue full, dropping event")
	}
}
