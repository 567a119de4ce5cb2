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

//go:build linux || darwin

package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(ServiceArgs{
		Entry: func() (func() error, error) {
			return func() error { return nil }, nil
		},
		TempDir: t.TempDir(),
	})
	require.NoError(t, err)
	return svc
}

func TestServicePidFileLifecycle(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	pid, err := svc.Pid()
	require.NoError(t, err)
	assert.Equal(t, 0, pid, "no pid file yet")
	assert.False(t, svc.Running())

	require.NoError(t, svc.createPidFile())

	pid, err = svc.Pid()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, svc.Running(), "the test process itself is alive")

	require.NoError(t, svc.removePidFile())
	assert.False(t, svc.Running())
}

func TestServicePid_GarbagePidFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	svc, err := NewService(ServiceArgs{
		Entry:   func() (func() error, error) { return nil, nil },
		TempDir: dir,
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.PidFile), []byte("not-a-pid"), 0o600))

	_, err = svc.Pid()
	require.Error(t, err)
	assert.False(t, svc.Running())
}

func TestServiceStop_NotRunning(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	err := svc.Stop()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service not running")
}

func TestServiceHandler_EmptyVerbIsNoop(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	verb := ""
	require.NoError(t, svc.ServiceHandler(&verb))
}

func TestServiceHandler_UnknownVerb(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	verb := "bogus"
	err := svc.ServiceHandler(&verb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown service argument")
}

func TestServiceHandler_StatusStopped(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	verb := "status"
	err := svc.ServiceHandler(&verb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service not running")
}
