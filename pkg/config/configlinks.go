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

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// LinksConnect is one manually configured link connection.
type LinksConnect struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path,omitempty"`
}

func (l LinksConnect) ConnectionString() string {
	return fmt.Sprintf("%s:%s", l.Driver, l.Path)
}

func (c *Instance) AutoDetect() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Links.AutoDetect
}

func (c *Instance) SetAutoDetect(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Links.AutoDetect = enabled
}

func (c *Instance) ConnectLinks() []LinksConnect {
	c.mu.RLock()
	defer c.mu.RUnlock()
	connect := make([]LinksConnect, len(c.vals.Links.Connect))
	copy(connect, c.vals.Links.Connect)
	return connect
}

func (c *Instance) SetConnectLinks(connect []LinksConnect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Links.Connect = connect
}

func (c *Instance) SerialBaudRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Serial.BaudRate
}

func (c *Instance) SerialExcludedDevices() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	excluded := make([]string, len(c.vals.Serial.ExcludedDevices))
	copy(excluded, c.vals.Serial.ExcludedDevices)
	return excluded
}

func (c *Instance) SetSerialExcludedDevices(excluded []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Serial.ExcludedDevices = excluded
}

func (c *Instance) SerialPollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return secondsToDuration(c.vals.Serial.PollInterval)
}

func (c *Instance) SerialResetSettle() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return secondsToDuration(c.vals.Serial.ResetSettle)
}

func (c *Instance) SerialRebootWait() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return secondsToDuration(c.vals.Serial.RebootWait)
}

func (c *Instance) UplinkEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Uplink.Enabled && c.vals.Uplink.Host != ""
}

func (c *Instance) SetUplinkEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Uplink.Enabled = enabled
}

// UplinkAddr returns the uplink endpoint in host:port form.
func (c *Instance) UplinkAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return net.JoinHostPort(c.vals.Uplink.Host, strconv.Itoa(c.vals.Uplink.Port))
}

func (c *Instance) UplinkDialTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return secondsToDuration(c.vals.Uplink.DialTimeout)
}

func (c *Instance) UplinkReadTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return secondsToDuration(c.vals.Uplink.ReadTimeout)
}
