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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		xs   []string
		x    string
		want bool
	}{
		{
			name: "present",
			xs:   []string{"/dev/ttyUSB0", "/dev/ttyACM0"},
			x:    "/dev/ttyACM0",
			want: true,
		},
		{
			name: "absent",
			xs:   []string{"/dev/ttyUSB0"},
			x:    "/dev/ttyUSB1",
			want: false,
		},
		{
			name: "empty slice",
			xs:   []string{},
			x:    "/dev/ttyUSB0",
			want: false,
		},
		{
			name: "nil slice",
			xs:   nil,
			x:    "anything",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Contains(tt.xs, tt.x))
		})
	}
}

func TestContainsInts(t *testing.T) {
	t.Parallel()
	assert.True(t, Contains([]int{1, 2, 3}, 2))
	assert.False(t, Contains([]int{1, 2, 3}, 4))
}

func TestMapKeys(t *testing.T) {
	t.Parallel()

	m := map[string]int{"b": 2, "a": 1, "c": 3}
	keys := MapKeys(m)
	assert.Len(t, keys, 3)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
}

func TestAlphaMapKeys(t *testing.T) {
	t.Parallel()

	m := map[string]bool{"zeta": true, "alpha": true, "mid": false}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, AlphaMapKeys(m))

	assert.Empty(t, AlphaMapKeys(map[string]int{}))
}
