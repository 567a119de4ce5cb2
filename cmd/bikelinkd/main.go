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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/BikeLinkProject/bikelink-core/pkg/cli"
	"github.com/BikeLinkProject/bikelink-core/pkg/config"
	"github.com/BikeLinkProject/bikelink-core/pkg/helpers"
	"github.com/BikeLinkProject/bikelink-core/pkg/service"
	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// logGameEvent is the daemon's built-in event consumer.
func logGameEvent(ev events.GameEvent) {
	switch ev.Kind {
	case events.KindRFID:
		log.Info().Msgf("rfid token: %s (%s)", ev.Raw, ev.Source)
	case events.KindScore:
		if ev.Metric != "" {
			log.Info().Msgf("%s reading: %.2f (%s)", ev.Metric, ev.Score, ev.Source)
		} else {
			log.Info().Msgf("score: %.2f (%s)", ev.Score, ev.Source)
		}
	default:
		log.Debug().Msgf("unclassified line from %s: %q", ev.Source, ev.Raw)
	}
}

func run() error {
	flags := cli.SetupFlags()
	serviceFlag := flag.String(
		"service",
		"",
		"manage the background service (start|stop|restart|status)",
	)
	flags.Pre()

	var logWriters []io.Writer
	if *flags.Daemon {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg := cli.Setup(*flags.Config, config.BaseDefaults, logWriters)
	if *flags.Debug {
		cfg.SetDebugLogging(true)
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	if *serviceFlag != "" {
		var extraArgs []string
		if *flags.Config != "" {
			extraArgs = []string{"-config", *flags.Config}
		}

		svc, err := helpers.NewService(helpers.ServiceArgs{
			Entry: func() (func() error, error) {
				s, err := service.Start(cfg, logGameEvent)
				if err != nil {
					return nil, fmt.Errorf("error starting service: %w", err)
				}
				return s.Stop, nil
			},
			ExtraArgs: extraArgs,
		})
		if err != nil {
			return fmt.Errorf("error creating service: %w", err)
		}

		if err := svc.ServiceHandler(serviceFlag); err != nil {
			return fmt.Errorf("service handler failed: %w", err)
		}
		return nil
	}

	svc, err := service.Start(cfg, logGameEvent)
	if err != nil {
		log.Error().Msgf("error starting service: %s", err)
		return fmt.Errorf("error starting service: %w", err)
	}

	if *flags.Daemon {
		log.Info().Msg("started in daemon mode")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
	case <-svc.Done():
	}

	if stopErr := svc.Stop(); stopErr != nil {
		log.Error().Msgf("error stopping service: %s", stopErr)
	}

	return nil
}
