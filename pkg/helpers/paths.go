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
	"sync"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/adrg/xdg"
)

var (
	userDirCache  string
	userDirExists bool
	userDirOnce   sync.Once
)

// HasUserDir reports whether a "user" directory sits next to the bikelinkd
// binary. When it does, config and data live under it instead of the XDG
// directories, for a portable install that travels with the relay hardware.
// The result is cached after the first call.
func HasUserDir() (string, bool) {
	userDirOnce.Do(func() {
		exePath, err := os.Executable()
		if err != nil {
			return
		}

		userDir := filepath.Join(filepath.Dir(exePath), config.UserDir)
		info, err := os.Stat(userDir)
		if err != nil || !info.IsDir() {
			return
		}

		userDirCache = userDir
		userDirExists = true
	})
	return userDirCache, userDirExists
}

// ConfigDir returns the directory the config file lives in.
func ConfigDir() string {
	if v, ok := HasUserDir(); ok {
		return v
	}
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir returns the directory for logs and other app state.
func DataDir() string {
	if v, ok := HasUserDir(); ok {
		return v
	}
	return filepath.Join(xdg.DataHome, config.AppName)
}

// TempDir returns the directory for runtime files like the service PID.
func TempDir() string {
	return filepath.Join(os.TempDir(), config.AppName)
}
