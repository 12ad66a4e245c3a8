/*
Copyright © 2019 the InMAP authors.
This file is part of zreplace.

zreplace is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

zreplace is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with zreplace.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package zreplace replaces elevation values in gridded elevation
// and bathymetry files. Every cell of an input grid is streamed, cells
// matching a replacement Policy are given a new value, and a copy of
// the grid is written with its observed elevation range recomputed.
package zreplace

import (
	"fmt"
	"math"
)

// Version gives the version number.
const Version = "1.0.0"

// Tolerance is the largest absolute difference (exclusive) between a
// cell value and ReplaceExact.Old for the cell to be replaced.
const Tolerance = 0.01

// A Policy decides which valid cells are replaced and with what.
type Policy interface {
	// Apply returns the value that z should be replaced with and
	// whether z matched the policy.
	Apply(z float32) (float32, bool)

	fmt.Stringer
}

// ReplaceNegative replaces every negative value with New. It is
// sometimes called "land mode": negative elevations lie below the
// reference datum.
type ReplaceNegative struct {
	New float32
}

// Apply implements Policy.
func (p ReplaceNegative) Apply(z float32) (float32, bool) {
	if z < 0 {
		return p.New, true
	}
	return z, false
}

func (p ReplaceNegative) String() string {
	return fmt.Sprintf("replace negative values with %g", p.New)
}

// ReplaceExact replaces every value within Tolerance of Old with New.
type ReplaceExact struct {
	Old, New float32
}

// Apply implements Policy.
func (p ReplaceExact) Apply(z float32) (float32, bool) {
	if math.Abs(float64(z)-float64(p.Old)) < Tolerance {
		return p.New, true
	}
	return z, false
}

func (p ReplaceExact) String() string {
	return fmt.Sprintf("replace values within %g of %g with %g", Tolerance, p.Old, p.New)
}

// Mode names accepted by NewPolicy.
const (
	ModeNegative = "negative"
	ModeExact    = "exact"
)

// NewPolicy returns the policy selected by mode. An empty mode
// selects ReplaceExact when old is given and ReplaceNegative otherwise.
func NewPolicy(mode string, replacement float32, old *float32) (Policy, error) {
	if mode == "" {
		mode = ModeNegative
		if old != nil {
			mode = ModeExact
		}
	}
	switch mode {
	case ModeNegative:
		if old != nil {
			return nil, &UsageError{Msg: fmt.Sprintf("an old value cannot be used with mode %q", mode)}
		}
		return ReplaceNegative{New: replacement}, nil
	case ModeExact:
		if old == nil {
			return nil, &UsageError{Msg: fmt.Sprintf("mode %q requires an old value", mode)}
		}
		return ReplaceExact{Old: *old, New: replacement}, nil
	default:
		return nil, &UsageError{Msg: fmt.Sprintf("invalid mode %q; valid modes are %q and %q", mode, ModeNegative, ModeExact)}
	}
}
