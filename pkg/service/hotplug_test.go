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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSerialDeviceName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node string
		want bool
	}{
		{name: "usb serial adapter", node: "ttyUSB0", want: true},
		{name: "usb cdc device", node: "ttyACM1", want: true},
		{name: "onboard uart", node: "ttyS0", want: true},
		{name: "darwin callout device", node: "cu.usbserial-1410", want: true},
		{name: "disk node", node: "sda1", want: false},
		{name: "hid node", node: "hidraw0", want: false},
		{name: "empty name", node: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isSerialDeviceName(tt.node))
		})
	}
}

// kickAfterSerialNode keeps creating fresh serial device nodes until one
// lands after the watch is established and a kick comes back. The watcher
// sets itself up asynchronously, so nodes created before that are allowed
// to go unseen.
func kickAfterSerialNode(t *testing.T, dir, prefix string, kick <-chan struct{}) {
	t.Helper()
	n := 0
	require.Eventually(t, func() bool {
		name := fmt.Sprintf("%s%d", prefix, n)
		n++
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			return false
		}
		select {
		case <-kick:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatchDeviceEvents_KicksOnNewSerialNode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kick := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		watchDeviceEvents(ctx, dir, kick)
	}()

	kickAfterSerialNode(t, dir, "ttyUSB", kick)

	cancel()
	wg.Wait()
}

func TestWatchDeviceEvents_IgnoresNonSerialNodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kick := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		watchDeviceEvents(ctx, dir, kick)
	}()

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("hidraw%d", i)), nil, 0o600))
	}

	select {
	case <-kick:
		t.Fatal("non-serial device node must not trigger discovery")
	case <-time.After(300 * time.Millisecond):
	}

	// A serial node through the same watcher proves it was alive the whole
	// time, so the silence above was the filter and not a dead watcher.
	kickAfterSerialNode(t, dir, "ttyACM", kick)

	cancel()
	wg.Wait()
}

func TestWatchDeviceEvents_MissingDirReturns(t *testing.T) {
	t.Parallel()

	kick := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDeviceEvents(ctx, filepath.Join(t.TempDir(), "dev"), kick)

	assert.Empty(t, kick)
}

func TestWatchDeviceEvents_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		watchDeviceEvents(ctx, dir, make(chan struct{}, 1))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on context cancellation")
	}
}
