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
)

// Test binaries never have a portable user dir next to them, so these cover
// the XDG fallback paths.

func TestConfigDir(t *testing.T) {
	t.Parallel()

	dir := ConfigDir()
	assert.NotEmpty(t, dir)
	assert.Equal(t, config.AppName, filepath.Base(dir))
}

func TestDataDir(t *testing.T) {
	t.Parallel()

	dir := DataDir()
	assert.NotEmpty(t, dir)
	assert.Equal(t, config.AppName, filepath.Base(dir))
}

func TestTempDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join(os.TempDir(), config.AppName), TempDir())
}

func TestHasUserDir_CachedResultIsStable(t *testing.T) {
	t.Parallel()

	dir1, ok1 := HasUserDir()
	dir2, ok2 := HasUserDir()
	assert.Equal(t, dir1, dir2)
	assert.Equal(t, ok1, ok2)
}
