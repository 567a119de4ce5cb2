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

// Package events defines the typed event record produced from raw controller
// lines and the classifier that turns one line into one event.
package events

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	KindRFID    = "rfid"
	KindScore   = "score"
	KindUnknown = "unknown"

	MetricRPM  = "rpm"
	MetricKcal = "kcal"
)

// Controller telemetry line prefixes. Matching is exact-case, the same as the
// firmware emits them.
const (
	prefixRPM   = "RPM:"
	prefixKcal  = "kCal:"
	prefixPulse = "PULSE:"
)

// GameEvent is one parsed line from one link. Kind is always set; Metric and
// Score are only meaningful for score events. Time, Source and Device are
// filled in by the link that read the line.
type GameEvent struct {
	Time   time.Time
	Kind   string
	Source string
	Device string
	Raw    string
	Metric string
	Score  float64
}

// Parse classifies one raw line. A nil result means the line produces no
// event (empty input or ignored telemetry). Rules apply in priority order:
// telemetry prefixes, 8-character alphanumeric RFID token, the legacy "a"
// token, a bare float score, then unknown.
func Parse(line string) *GameEvent {
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "\r")

	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, prefixPulse) {
		// pulse readings are noise for the game layer
		return nil
	}

	if strings.HasPrefix(line, prefixRPM) {
		if v, err := parseMetricValue(line, prefixRPM); err == nil {
			return &GameEvent{Kind: KindScore, Raw: line, Metric: MetricRPM, Score: v}
		}
	}

	if strings.HasPrefix(line, prefixKcal) {
		if v, err := parseMetricValue(line, prefixKcal); err == nil {
			return &GameEvent{Kind: KindScore, Raw: line, Metric: MetricKcal, Score: v}
		}
	}

	if isRFIDToken(line) {
		return &GameEvent{Kind: KindRFID, Raw: line}
	}

	// legacy single-character token from the first controller batch
	if line == "a" {
		return &GameEvent{Kind: KindRFID, Raw: line}
	}

	if v, err := strconv.ParseFloat(line, 64); err == nil {
		return &GameEvent{Kind: KindScore, Raw: line, Score: v}
	}

	return &GameEvent{Kind: KindUnknown, Raw: line}
}

func parseMetricValue(line, prefix string) (float64, error) {
	val := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, err //nolint:wrapcheck // caller only branches on success
	}
	return f, nil
}

// isRFIDToken reports whether line is exactly 8 alphanumeric characters.
// Letters and numbers are checked per Unicode category so tokens survive
// whatever the firmware's string handling emits.
func isRFIDToken(line string) bool {
	if utf8.RuneCountInString(line) != 8 {
		return false
	}
	for _, r := range line {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
