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

// Package testutils provides common testing utilities for link tests.
package testutils

import (
	"testing"
	"time"

	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/stretchr/testify/require"
)

// CreateTestEventChannel creates a buffered channel for link events with capacity of 10.
func CreateTestEventChannel(_ *testing.T) chan events.GameEvent {
	return make(chan events.GameEvent, 10)
}

// AssertEventReceived waits for an event to be received on the channel within the timeout.
// Returns the received event. Fails the test if no event is received within timeout.
func AssertEventReceived(t *testing.T, ch chan events.GameEvent, timeout time.Duration) events.GameEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		require.Fail(t, "expected event to be received within timeout", "timeout: %v", timeout)
		return events.GameEvent{}
	}
}

// AssertNoEvent verifies that no event is received on the channel within the timeout.
// Fails the test if an event is received.
func AssertNoEvent(t *testing.T, ch chan events.GameEvent, timeout time.Duration) {
	t.Helper()
	select {
	case ev := <-ch:
		require.Fail(t, "unexpected event received",
			"event: kind=%s, raw=%q, device=%s", ev.Kind, ev.Raw, ev.Device)
	case <-time.After(timeout):
		// Expected - no event received
	}
}

// CreateTempDevicePath creates a temporary file to represent a device path for testing.
// On Windows systems, it returns a COM port path. On Unix systems, it creates a temporary
// file and registers cleanup with t.Cleanup().
func CreateTempDevicePath(t *testing.T) string {
	t.Helper()

	// On Windows, the path check is often skipped, so we can use any path
	if isWindows() {
		return "COM1"
	}

	// On Unix systems, create a temporary file
	f, err := createTempFile(t, "", "device-test-*")
	if err != nil {
		t.Fatalf("failed to create temp device path: %v", err)
	}

	path := f.Name()
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	// Clean up when test is done
	t.Cleanup(func() {
		_ = removeTempFile(path)
	})

	return path
}
