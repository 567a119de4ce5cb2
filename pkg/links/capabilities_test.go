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

package links_test

import (
	"testing"

	"github.com/BikeLinkProject/bikelink-core/pkg/links"
	"github.com/BikeLinkProject/bikelink-core/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockLink(caps []links.Capability) *mocks.MockLink {
	m := mocks.NewMockLink()
	m.On("Capabilities").Return(caps)
	m.On("Connected").Return(true)
	return m
}

func TestHasCapability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		check        links.Capability
		capabilities []links.Capability
		expected     bool
	}{
		{
			name:         "has reset capability",
			capabilities: []links.Capability{links.CapabilityReset},
			check:        links.CapabilityReset,
			expected:     true,
		},
		{
			name:         "does not have reset capability",
			capabilities: []links.Capability{},
			check:        links.CapabilityReset,
			expected:     false,
		},
		{
			name:         "has multiple capabilities including broadcast",
			capabilities: []links.Capability{links.CapabilityReset, links.CapabilityBroadcast},
			check:        links.CapabilityBroadcast,
			expected:     true,
		},
		{
			name:         "has upstream but not broadcast",
			capabilities: []links.Capability{links.CapabilityUpstream},
			check:        links.CapabilityBroadcast,
			expected:     false,
		},
		{
			name:         "nil capabilities slice",
			capabilities: nil,
			check:        links.CapabilityReset,
			expected:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := mocks.NewMockLink()
			m.On("Capabilities").Return(tt.capabilities)
			result := links.HasCapability(m, tt.check)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFilterByCapability(t *testing.T) {
	t.Parallel()

	t.Run("filters to broadcast-capable links", func(t *testing.T) {
		t.Parallel()

		ls := []links.Link{
			createMockLink([]links.Capability{links.CapabilityBroadcast, links.CapabilityReset}),
			createMockLink([]links.Capability{links.CapabilityUpstream}),
			createMockLink([]links.Capability{links.CapabilityBroadcast}),
		}

		got := links.FilterByCapability(ls, links.CapabilityBroadcast)
		require.Len(t, got, 2)
	})

	t.Run("skips nil links", func(t *testing.T) {
		t.Parallel()

		ls := []links.Link{
			nil,
			createMockLink([]links.Capability{links.CapabilityBroadcast}),
			nil,
		}

		got := links.FilterByCapability(ls, links.CapabilityBroadcast)
		require.Len(t, got, 1)
	})

	t.Run("empty input returns empty result", func(t *testing.T) {
		t.Parallel()

		got := links.FilterByCapability(nil, links.CapabilityBroadcast)
		assert.Empty(t, got)
	})
}
