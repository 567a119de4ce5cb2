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

package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestConfig(t *testing.T) {
	t.Parallel()

	fs := NewMemoryFS()
	configDir := t.TempDir()

	cfg, err := NewTestConfig(fs, configDir)

	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, config.BaseDefaults.Serial.BaudRate, cfg.SerialBaudRate())

	// Verify the config file exists on the real filesystem
	configPath := filepath.Join(configDir, config.CfgFile)
	_, err = os.Stat(configPath)
	assert.NoError(t, err, "config file should exist")
}

func TestNewTestConfig_RequiresFSHelper(t *testing.T) {
	t.Parallel()

	cfg, err := NewTestConfig(nil, t.TempDir())

	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestCreateDeviceTree(t *testing.T) {
	t.Parallel()

	fs := NewMemoryFS()
	err := fs.CreateDeviceTree("/dev", []string{"ttyUSB0", "ttyACM0"})
	require.NoError(t, err)

	assert.True(t, fs.FileExists("/dev/ttyUSB0"))
	assert.True(t, fs.FileExists("/dev/ttyACM0"))

	names, err := fs.ListFiles("/dev")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}
