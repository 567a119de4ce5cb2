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

// Package mocks provides testify mock implementations of core interfaces.
package mocks

import (
	"fmt"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/BikeLinkProject/bikelink-core/pkg/links"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/stretchr/testify/mock"
)

// MockLink is a mock implementation of the Link interface using testify/mock.
type MockLink struct {
	mock.Mock
}

// Metadata returns static configuration for this driver
func (m *MockLink) Metadata() links.DriverMetadata {
	args := m.Called()
	if metadata, ok := args.Get(0).(links.DriverMetadata); ok {
		return metadata
	}
	return links.DriverMetadata{}
}

// IDs returns the driver id strings accepted for this link in config
func (m *MockLink) IDs() []string {
	args := m.Called()
	if ids, ok := args.Get(0).([]string); ok {
		return ids
	}
	return []string{}
}

// Open any necessary connections to the device and start the read monitor
func (m *MockLink) Open(linkConfig config.LinksConnect, eventChan chan<- events.GameEvent) error {
	args := m.Called(linkConfig, eventChan)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// Close any open connections to the device and stop the monitor
func (m *MockLink) Close() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// Detect searches for candidate devices and returns their connection strings
func (m *MockLink) Detect(connected []string) []string {
	args := m.Called(connected)
	if found, ok := args.Get(0).([]string); ok {
		return found
	}
	return nil
}

// Device returns the device connection string
func (m *MockLink) Device() string {
	args := m.Called()
	return args.String(0)
}

// Path returns the underlying device path or endpoint address
func (m *MockLink) Path() string {
	args := m.Called()
	return args.String(0)
}

// Connected returns true if the device is connected and active
func (m *MockLink) Connected() bool {
	args := m.Called()
	return args.Bool(0)
}

// Info returns a string with information about the connected device
func (m *MockLink) Info() string {
	args := m.Called()
	return args.String(0)
}

// LinkID returns the stable registry id for this link
func (m *MockLink) LinkID() string {
	args := m.Called()
	return args.String(0)
}

// Write sends one line of text out the link
func (m *MockLink) Write(data string) error {
	args := m.Called(data)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// Reset runs the hardware reset-and-reconnect handshake
func (m *MockLink) Reset() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// Capabilities returns the list of capabilities supported by this link
func (m *MockLink) Capabilities() []links.Capability {
	args := m.Called()
	if capabilities, ok := args.Get(0).([]links.Capability); ok {
		return capabilities
	}
	return []links.Capability{}
}

// Helper methods for testing

// SimulateEvent sends an event to the provided channel (for testing Open wiring)
func (*MockLink) SimulateEvent(eventChan chan<- events.GameEvent, ev events.GameEvent) {
	eventChan <- ev
}

// NewMockLink creates a new MockLink instance
func NewMockLink() *MockLink {
	m := &MockLink{}
	// Provide a safe optional default for Close() since it may or may not be called
	// depending on error conditions, defer statements, or cleanup patterns.
	m.On("Close").Return(nil).Maybe()
	return m
}

// SetupBasicMock configures the mock with typical default values for basic operations
func (m *MockLink) SetupBasicMock() {
	m.On("Metadata").Return(links.DriverMetadata{
		ID:                "mock-link",
		DefaultEnabled:    true,
		DefaultAutoDetect: true,
		Description:       "Mock Link for Testing",
	})
	m.On("IDs").Return([]string{"mock", "test"})
	m.On("Connected").Return(true)
	m.On("Device").Return("mock:test-device")
	m.On("Path").Return("test-device")
	m.On("LinkID").Return("mock-testdevice")
	m.On("Info").Return("Mock Link Test Device")
	m.On("Capabilities").Return([]links.Capability{links.CapabilityBroadcast})
}
