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

package bikeserial

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/BikeLinkProject/bikelink-core/pkg/helpers"
	"github.com/BikeLinkProject/bikelink-core/pkg/helpers/syncutil"
	"github.com/BikeLinkProject/bikelink-core/pkg/links"
	"github.com/BikeLinkProject/bikelink-core/pkg/links/testutils"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// Controller lines are short status reports; anything longer without a
// delimiter is junk from a misbehaving device.
const maxLineSize = 1024

// Link reads telemetry lines from an exercise bike controller over a serial
// port. The controller firmware can be rebooted by toggling the DTR line,
// which Reset uses to get it out of a wedged state.
type Link struct {
	port        testutils.SerialPort
	portFactory testutils.SerialPortFactory
	listDevices func() ([]string, error)
	cfg         *config.Instance
	clock       clockwork.Clock
	eq          chan<- events.GameEvent
	device      config.LinksConnect
	path        string
	generation  int
	polling     bool
	resetting   bool
	mu          syncutil.RWMutex // protects port, generation, polling, resetting
}

func NewLink(cfg *config.Instance) *Link {
	return &Link{
		cfg:         cfg,
		portFactory: testutils.DefaultSerialPortFactory,
		listDevices: helpers.GetSerialDeviceList,
		clock:       clockwork.NewRealClock(),
	}
}

// SetClock replaces the clock used for reset delays. Only used in tests.
func (l *Link) SetClock(clock clockwork.Clock) {
	l.clock = clock
}

func (*Link) Metadata() links.DriverMetadata {
	return links.DriverMetadata{
		ID:                "bikeserial",
		DefaultEnabled:    true,
		DefaultAutoDetect: true,
		Description:       "Exercise bike serial controller",
	}
}

func (*Link) IDs() []string {
	return []string{"bikeserial", "bike_serial"}
}

func (l *Link) Open(device config.LinksConnect, eq chan<- events.GameEvent) error {
	if !helpers.Contains(l.IDs(), device.Driver) {
		return errors.New("invalid link id: " + device.Driver)
	}

	path := device.Path

	if runtime.GOOS != "windows" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("failed to stat device path %s: %w", path, err)
		}
	}

	log.Debug().Msgf("opening bike controller: %s", path)

	port, err := l.openPort(path)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.port = port
	l.device = device
	l.path = path
	l.eq = eq
	l.polling = true
	gen := l.generation
	l.mu.Unlock()

	log.Info().Msgf("opened bike controller: %s", path)

	go l.monitor(gen)

	return nil
}

func (l *Link) openPort(path string) (testutils.SerialPort, error) {
	port, err := l.portFactory(path, &serial.Mode{
		BaudRate: l.cfg.SerialBaudRate(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	// The read timeout doubles as the poll interval: a quiet controller
	// returns an empty read on this cadence so the monitor can notice
	// shutdown and reset requests.
	err = port.SetReadTimeout(l.cfg.SerialPollInterval())
	if err != nil {
		return nil, fmt.Errorf("failed to set read timeout on serial port: %w", err)
	}

	return port, nil
}

// monitor reads lines off the port and dispatches them as events until the
// link stops polling or gen is superseded by a reset.
func (l *Link) monitor(gen int) {
	buf := make([]byte, 1024)
	var lineBuf []byte
	overflowed := false

	for {
		l.mu.RLock()
		active := l.polling && l.generation == gen
		port := l.port
		l.mu.RUnlock()
		if !active {
			break
		}

		n, err := port.Read(buf)

		// Process any bytes read, even if there's an error
		if n > 0 {
			for i := range n {
				b := buf[i]

				if b == '\n' {
					if overflowed {
						overflowed = false
						lineBuf = lineBuf[:0]
						continue
					}

					if len(lineBuf) > 0 {
						line := strings.ToValidUTF8(string(lineBuf), "�")
						lineBuf = lineBuf[:0]
						l.handleLine(line)
					}
					continue
				}

				if overflowed {
					continue
				}

				if len(lineBuf) >= maxLineSize {
					log.Warn().Str("path", l.path).Msg("buffer overflow, discarding data until next delimiter")
					lineBuf = lineBuf[:0]
					overflowed = true
					continue
				}

				lineBuf = append(lineBuf, b)
			}
		}

		// Handle errors after processing any valid data
		if err != nil {
			l.mu.RLock()
			active := l.polling && l.generation == gen
			l.mu.RUnlock()
			if !active {
				// port was closed under us by Close or Reset
				break
			}

			log.Error().Err(err).Msgf("failed to read from bike controller: %s", l.path)
			l.closeGeneration(gen)
			break
		}
	}
}

func (l *Link) handleLine(line string) {
	ev := events.Parse(line)
	if ev == nil {
		return
	}

	ev.Time = l.clock.Now()
	ev.Source = l.device.ConnectionString()
	ev.Device = l.path
	links.Dispatch(l.eq, *ev)
}

// closeGeneration closes the link on behalf of the monitor for gen. A monitor
// left over from before a reset must not tear down the fresh port that
// replaced its own.
func (l *Link) closeGeneration(gen int) {
	l.mu.Lock()
	if l.generation != gen || l.resetting {
		l.mu.Unlock()
		return
	}
	l.polling = false
	port := l.port
	l.mu.Unlock()

	if port != nil {
		if err := port.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close serial port")
		}
	}
}

func (l *Link) Close() error {
	l.mu.Lock()
	l.polling = false
	port := l.port
	l.mu.Unlock()
	if port != nil {
		err := port.Close()
		if err != nil {
			return fmt.Errorf("failed to close serial port: %w", err)
		}
	}
	return nil
}

// Detect scans for serial devices that look like bike controllers. Devices on
// the configured exclusion list and devices already connected are skipped.
func (l *Link) Detect(connected []string) []string {
	devices, err := l.listDevices()
	if err != nil {
		log.Error().Err(err).Msg("failed to get serial device list")
		return nil
	}

	var candidates []string
	for _, device := range devices {
		if helpers.Contains(l.cfg.SerialExcludedDevices(), device) {
			continue
		}

		connectionString := l.Metadata().ID + ":" + device
		if helpers.Contains(connected, connectionString) {
			continue
		}

		candidates = append(candidates, connectionString)
	}

	return candidates
}

func (l *Link) Device() string {
	return l.device.ConnectionString()
}

func (l *Link) Path() string {
	return l.path
}

func (l *Link) Connected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return (l.polling || l.resetting) && l.port != nil
}

func (l *Link) Info() string {
	return l.path
}

func (l *Link) LinkID() string {
	return links.GenerateLinkID(l.Metadata().ID, l.path)
}

func (l *Link) Write(msg string) error {
	l.mu.RLock()
	port := l.port
	polling := l.polling
	l.mu.RUnlock()

	if !polling || port == nil {
		return errors.New("link not connected")
	}

	if _, err := port.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	return nil
}

// Reset power-cycles the controller by toggling the DTR line, reopens the
// device once the firmware has rebooted and starts a fresh monitor. The old
// monitor is retired through the generation counter. While a reset is in
// flight the link still reports Connected so it is not pruned and reconnected
// mid-handshake.
func (l *Link) Reset() error {
	l.mu.Lock()
	if l.resetting {
		l.mu.Unlock()
		return errors.New("reset already in progress")
	}
	if !l.polling || l.port == nil {
		l.mu.Unlock()
		return errors.New("link not connected")
	}
	l.resetting = true
	l.polling = false
	port := l.port
	path := l.path
	l.mu.Unlock()

	log.Info().Msgf("resetting bike controller: %s", path)

	newPort, err := l.rebootController(port, path)

	l.mu.Lock()
	l.resetting = false
	if err != nil {
		l.port = nil
		l.mu.Unlock()
		return err
	}
	l.generation++
	gen := l.generation
	l.port = newPort
	l.polling = true
	l.mu.Unlock()

	go l.monitor(gen)

	log.Info().Msgf("reset bike controller: %s", path)
	return nil
}

// rebootController drops DTR long enough for the controller to register the
// reset, raises it again and reopens the device after the firmware boot
// delay. The old port is closed in between because some platforms will not
// reopen a device that still has an open handle.
func (l *Link) rebootController(port testutils.SerialPort, path string) (testutils.SerialPort, error) {
	if err := port.SetDTR(false); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to lower DTR on %s: %w", path, err)
	}

	l.clock.Sleep(l.cfg.SerialResetSettle())

	if err := port.SetDTR(true); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to raise DTR on %s: %w", path, err)
	}

	if err := port.Close(); err != nil {
		log.Warn().Err(err).Msgf("failed to close serial port during reset: %s", path)
	}

	l.clock.Sleep(l.cfg.SerialRebootWait())

	return l.openPort(path)
}

func (*Link) Capabilities() []links.Capability {
	return []links.Capability{
		links.CapabilityBroadcast,
		links.CapabilityReset,
	}
}
