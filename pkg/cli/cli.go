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

// Package cli holds the flag handling and environment setup shared by the
// daemon entry point.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/BikeLinkProject/bikelink-core/pkg/helpers"
	"github.com/rs/zerolog"
)

type Flags struct {
	Config  *string
	Daemon  *bool
	Debug   *bool
	Version *bool
}

// SetupFlags defines the common CLI flags. Add any custom flags before
// calling Pre.
func SetupFlags() *Flags {
	return &Flags{
		Config: flag.String(
			"config",
			"",
			"override the config directory",
		),
		Daemon: flag.Bool(
			"daemon",
			false,
			"run the service in the foreground and log to stderr",
		),
		Debug: flag.Bool(
			"debug",
			false,
			"enable debug logging",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

// Pre runs flag parsing and actions any immediate flags that don't require
// environment setup.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("BikeLink v%s\n", config.AppVersion)
		os.Exit(0)
	}
}

// Setup initializes logging and the user config. configDir may be empty to
// use the default location. Exits the process with a message on stderr if the
// environment cannot be prepared, since there is nowhere to log yet.
//
//nolint:gocritic // config struct copied for immutability
func Setup(configDir string, defaultConfig config.Values, writers []io.Writer) *config.Instance {
	if configDir == "" {
		configDir = helpers.ConfigDir()
	}

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	if err := helpers.InitLogging(helpers.DataDir(), writers); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(configDir, defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return cfg
}
