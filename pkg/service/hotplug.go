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
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const devDir = "/dev"

// isSerialDeviceName reports whether a device node name looks like a serial
// port on any supported platform.
func isSerialDeviceName(name string) bool {
	return strings.HasPrefix(name, "tty") || strings.HasPrefix(name, "cu.")
}

// watchDeviceEvents kicks the link manager when a serial device node shows
// up, so a freshly plugged controller connects without waiting out the retry
// interval. The manager's ticker stays authoritative: losing the watcher only
// delays a connect, it never loses one.
func watchDeviceEvents(ctx context.Context, dir string, kick chan<- struct{}) {
	if _, err := os.Stat(dir); err != nil {
		log.Debug().Msgf("device directory not present, skipping hotplug events: %s", dir)
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Debug().Err(err).Msg("failed to create hotplug watcher, relying on polling")
		return
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Msg("error closing hotplug watcher")
		}
	}()

	if err := watcher.Add(dir); err != nil {
		log.Debug().Err(err).Msgf("failed to watch %s, relying on polling", dir)
		return
	}

	log.Debug().Msgf("watching %s for new serial devices", dir)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isSerialDeviceName(filepath.Base(event.Name)) {
				continue
			}
			log.Debug().Msgf("new serial device node: %s", event.Name)
			select {
			case kick <- struct{}{}:
			default:
				// a discovery round is already pending
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(watchErr).Msg("hotplug watcher error")
		}
	}
}
