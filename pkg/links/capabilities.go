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

package links

// CapabilityProvider is an interface for types that can report their
// capabilities. This allows capability checking without requiring the
// full Link interface.
type CapabilityProvider interface {
	Capabilities() []Capability
}

// HasCapability checks if a link has a specific capability.
func HasCapability(l CapabilityProvider, capability Capability) bool {
	for _, c := range l.Capabilities() {
		if c == capability {
			return true
		}
	}
	return false
}

// FilterByCapability returns only the Links that have the specified capability.
func FilterByCapability(ls []Link, capability Capability) []Link {
	result := make([]Link, 0, len(ls))
	for _, l := range ls {
		if l == nil {
			continue
		}
		if HasCapability(l, capability) {
			result = append(result, l)
		}
	}
	return result
}
