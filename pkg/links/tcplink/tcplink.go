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

package tcplink

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/BikeLinkProject/bikelink-core/pkg/helpers"
	"github.com/BikeLinkProject/bikelink-core/pkg/helpers/syncutil"
	"github.com/BikeLinkProject/bikelink-core/pkg/links"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Dialer opens the TCP connection to a relay endpoint (for mocking in tests).
type Dialer func(addr string, timeout time.Duration) (net.Conn, error)

// DefaultDialer is the default dialer that opens real TCP connections.
func DefaultDialer(addr string, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return conn, nil
}

// Link relays telemetry to the remote game consumer over a TCP socket and
// reads messages coming back. Unlike serial links there is no reset line; a
// dead socket is recovered by the supervisor reconnecting from scratch.
type Link struct {
	conn    net.Conn
	dial    Dialer
	cfg     *config.Instance
	clock   clockwork.Clock
	eq      chan<- events.GameEvent
	device  config.LinksConnect
	addr    string
	polling bool
	mu      syncutil.RWMutex // protects conn, polling
}

func NewLink(cfg *config.Instance) *Link {
	return &Link{
		cfg:   cfg,
		dial:  DefaultDialer,
		clock: clockwork.NewRealClock(),
	}
}

func (*Link) Metadata() links.DriverMetadata {
	return links.DriverMetadata{
		ID:                "tcplink",
		DefaultEnabled:    true,
		DefaultAutoDetect: true,
		Description:       "TCP relay uplink",
	}
}

func (*Link) IDs() []string {
	return []string{"tcplink", "tcp_link"}
}

func (l *Link) Open(device config.LinksConnect, eq chan<- events.GameEvent) error {
	if !helpers.Contains(l.IDs(), device.Driver) {
		return errors.New("invalid link id: " + device.Driver)
	}

	addr := device.Path

	log.Debug().Msgf("connecting to relay: %s", addr)

	conn, err := l.dial(addr, l.cfg.UplinkDialTimeout())
	if err != nil {
		return fmt.Errorf("failed to connect to relay %s: %w", addr, err)
	}

	l.mu.Lock()
	l.conn = conn
	l.device = device
	l.addr = addr
	l.eq = eq
	l.polling = true
	l.mu.Unlock()

	log.Info().Msgf("connected to relay: %s", addr)

	go l.monitor()

	return nil
}

// monitor reads messages from the relay until the link closes. One socket
// read is treated as one message: the relay wire protocol has no framing, so
// messages coalesced by TCP arrive merged and partial reads arrive truncated.
// Known limitation of the protocol, kept as-is for compatibility.
func (l *Link) monitor() {
	buf := make([]byte, 1024)

	for {
		l.mu.RLock()
		polling := l.polling
		conn := l.conn
		l.mu.RUnlock()
		if !polling {
			break
		}

		// A zero read timeout means block until data arrives; Close still
		// unblocks the read by closing the socket.
		if readTimeout := l.cfg.UplinkReadTimeout(); readTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
				log.Error().Err(err).Msg("failed to set read deadline on relay connection")
				l.markDisconnected()
				break
			}
		}

		n, err := conn.Read(buf)

		if n > 0 {
			msg := strings.ToValidUTF8(string(buf[:n]), "�")
			msg = strings.TrimRight(msg, " \t\r\n")
			if msg != "" {
				l.handleMessage(msg)
			}
		}

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// deadline pass with no data, poll again
				continue
			}

			l.mu.RLock()
			polling := l.polling
			l.mu.RUnlock()
			if !polling {
				// connection was closed under us by Close
				break
			}

			log.Error().Err(err).Msgf("failed to read from relay: %s", l.addr)
			l.markDisconnected()
			break
		}
	}
}

func (l *Link) handleMessage(msg string) {
	ev := events.Parse(msg)
	if ev == nil {
		return
	}

	ev.Time = l.clock.Now()
	ev.Source = l.device.ConnectionString()
	ev.Device = l.addr
	links.Dispatch(l.eq, *ev)
}

// markDisconnected flips the link closed and releases the socket so the
// supervisor reconnects it on its next pass.
func (l *Link) markDisconnected() {
	l.mu.Lock()
	wasPolling := l.polling
	l.polling = false
	conn := l.conn
	l.mu.Unlock()

	if wasPolling && conn != nil {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Msg("failed to close relay connection")
		}
	}
}

func (l *Link) Close() error {
	l.mu.Lock()
	l.polling = false
	conn := l.conn
	l.mu.Unlock()
	if conn != nil {
		err := conn.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("failed to close relay connection: %w", err)
		}
	}
	return nil
}

// Detect degenerates to the single configured endpoint: it is a candidate
// whenever the uplink is enabled and not already connected.
func (l *Link) Detect(connected []string) []string {
	if !l.cfg.UplinkEnabled() {
		return nil
	}

	connectionString := l.Metadata().ID + ":" + l.cfg.UplinkAddr()
	if helpers.Contains(connected, connectionString) {
		return nil
	}

	return []string{connectionString}
}

func (l *Link) Device() string {
	return l.device.ConnectionString()
}

func (l *Link) Path() string {
	return l.addr
}

func (l *Link) Connected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.polling && l.conn != nil
}

func (l *Link) Info() string {
	return l.addr
}

func (l *Link) LinkID() string {
	return links.GenerateLinkID(l.Metadata().ID, l.addr)
}

func (l *Link) Write(msg string) error {
	l.mu.RLock()
	conn := l.conn
	polling := l.polling
	l.mu.RUnlock()

	if !polling || conn == nil {
		return errors.New("link not connected")
	}

	if _, err := conn.Write([]byte(msg)); err != nil {
		// a relay socket that fails a write is done for; drop the link so
		// the supervisor dials a fresh one
		l.markDisconnected()
		return fmt.Errorf("failed to write to relay: %w", err)
	}
	return nil
}

func (*Link) Reset() error {
	return links.ErrResetUnsupported
}

func (*Link) Capabilities() []links.Capability {
	return []links.Capability{
		links.CapabilityUpstream,
	}
}
