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
	"errors"
	"fmt"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
)

// NewTestConfig creates a config instance with default values in configDir.
// The config file lands on the real filesystem because the config package
// reads and writes through the OS; the FSHelper is accepted so callers that
// stage fixture files share one filesystem handle with the config setup.
func NewTestConfig(fsh *FSHelper, configDir string) (*config.Instance, error) {
	if fsh == nil {
		return nil, errors.New("filesystem helper is required")
	}

	cfg, err := config.NewConfig(configDir, config.BaseDefaults)
	if err != nil {
		return nil, fmt.Errorf("failed to create test config: %w", err)
	}
	return cfg, nil
}
