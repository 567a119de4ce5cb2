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
	"sync"
	"testing"
	"time"

	"github.com/BikeLinkProject/bikelink-core/pkg/service/events"
	"github.com/stretchr/testify/assert"
)

func recvEvent(t *testing.T, ch <-chan events.GameEvent) events.GameEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.GameEvent{}
	}
}

func TestDispatchEvents_DeliversInOrder(t *testing.T) {
	t.Parallel()

	eventCh := make(chan events.GameEvent, 8)
	got := make(chan events.GameEvent, 8)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatchEvents(ctx, eventCh, func(ev events.GameEvent) { got <- ev })
	}()

	eventCh <- events.GameEvent{Kind: events.KindRFID, Raw: "12345678"}
	eventCh <- events.GameEvent{Kind: events.KindScore, Metric: events.MetricRPM, Score: 100, Raw: "RPM:100.0"}
	eventCh <- events.GameEvent{Kind: events.KindScore, Score: 3.5, Raw: "3.5"}

	first := recvEvent(t, got)
	assert.Equal(t, events.KindRFID, first.Kind)
	assert.Equal(t, "12345678", first.Raw)

	second := recvEvent(t, got)
	assert.Equal(t, events.KindScore, second.Kind)
	assert.Equal(t, events.MetricRPM, second.Metric)

	third := recvEvent(t, got)
	assert.InDelta(t, 3.5, third.Score, 0.001)

	cancel()
	wg.Wait()
}

func TestDispatchEvents_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	eventCh := make(chan events.GameEvent)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		dispatchEvents(ctx, eventCh, func(events.GameEvent) {})
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop on context cancellation")
	}
}
