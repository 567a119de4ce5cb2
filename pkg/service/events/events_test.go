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

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		line       string
		wantNil    bool
		wantKind   string
		wantMetric string
		wantScore  float64
	}{
		{
			name:    "empty line",
			line:    "",
			wantNil: true,
		},
		{
			name:    "whitespace only",
			line:    "   \r\n",
			wantNil: true,
		},
		{
			name:     "8 char alphanumeric token",
			line:     "ABCD1234",
			wantKind: KindRFID,
		},
		{
			name:     "8 letters",
			line:     "abcdefgh",
			wantKind: KindRFID,
		},
		{
			name:     "8 digits prefers rfid over score",
			line:     "12345678",
			wantKind: KindRFID,
		},
		{
			name:     "8 unicode letters",
			line:     "ΩΩΩΩΩΩΩΩ",
			wantKind: KindRFID,
		},
		{
			name:     "legacy a token",
			line:     "a",
			wantKind: KindRFID,
		},
		{
			name:     "token with surrounding whitespace",
			line:     "  ABCD1234 \r",
			wantKind: KindRFID,
		},
		{
			name:      "seven digits is a score",
			line:      "1234567",
			wantKind:  KindScore,
			wantScore: 1234567,
		},
		{
			name:      "nine digits is a score",
			line:      "123456789",
			wantKind:  KindScore,
			wantScore: 123456789,
		},
		{
			name:      "plain float",
			line:      "12.5",
			wantKind:  KindScore,
			wantScore: 12.5,
		},
		{
			name:      "negative float",
			line:      "-3",
			wantKind:  KindScore,
			wantScore: -3,
		},
		{
			name:      "scientific notation",
			line:      "1e3",
			wantKind:  KindScore,
			wantScore: 1000,
		},
		{
			name:       "rpm telemetry",
			line:       "RPM:180.0",
			wantKind:   KindScore,
			wantMetric: MetricRPM,
			wantScore:  180,
		},
		{
			name:       "rpm telemetry with space",
			line:       "RPM: 200.5",
			wantKind:   KindScore,
			wantMetric: MetricRPM,
			wantScore:  200.5,
		},
		{
			name:       "kcal telemetry",
			line:       "kCal:12.5",
			wantKind:   KindScore,
			wantMetric: MetricKcal,
			wantScore:  12.5,
		},
		{
			name:    "pulse telemetry is ignored",
			line:    "PULSE:78",
			wantNil: true,
		},
		{
			name:    "pulse prefix without payload is ignored",
			line:    "PULSE:",
			wantNil: true,
		},
		{
			name:     "rpm with bad payload is unknown",
			line:     "RPM:fast",
			wantKind: KindUnknown,
		},
		{
			name:     "lowercase rpm prefix is unknown",
			line:     "rpm:180.0",
			wantKind: KindUnknown,
		},
		{
			name:     "nine mixed alphanumerics is unknown",
			line:     "ABCD12345",
			wantKind: KindUnknown,
		},
		{
			name:     "garbage is unknown",
			line:     "!!not-a-thing!!",
			wantKind: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ev := Parse(tt.line)
			if tt.wantNil {
				assert.Nil(t, ev)
				return
			}

			require.NotNil(t, ev)
			assert.Equal(t, tt.wantKind, ev.Kind)
			assert.Equal(t, tt.wantMetric, ev.Metric)
			if tt.wantKind == KindScore {
				assert.InDelta(t, tt.wantScore, ev.Score, 0.0001)
			}
			assert.NotEmpty(t, ev.Raw)
		})
	}
}

func TestParseRawPreserved(t *testing.T) {
	t.Parallel()

	ev := Parse("ABCD1234")
	require.NotNil(t, ev)
	assert.Equal(t, "ABCD1234", ev.Raw)

	ev = Parse("mystery payload")
	require.NotNil(t, ev)
	assert.Equal(t, "mystery payload", ev.Raw)
}

func TestParseIsDeterministic(t *testing.T) {
	t.Parallel()

	for range 3 {
		ev := Parse("RPM:180.0")
		require.NotNil(t, ev)
		assert.Equal(t, KindScore, ev.Kind)
		assert.Equal(t, MetricRPM, ev.Metric)
		assert.InDelta(t, 180.0, ev.Score, 0.0001)
	}
}

func BenchmarkParse(b *testing.B) {
	lines := []string{"ABCD1234", "RPM:180.0", "12.5", "garbage line", ""}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Parse(lines[i%len(lines)])
	}
}
