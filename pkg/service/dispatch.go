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

	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/rs/zerolog/log"
)

// dispatchEvents drains the shared event queue and hands each event to the
// consumer callback. The callback runs on this goroutine only, so events keep
// their per-link order and a slow consumer backs up the queue instead of the
// device monitors.
func dispatchEvents(ctx context.Context, eventCh <-chan events.GameEvent, onEvent func(events.GameEvent)) {
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("event dispatcher shutting down via context cancellation")
			return
		case ev := <-eventCh:
			onEvent(ev)
		}
	}
}
