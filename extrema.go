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

package zreplace

import (
	"gonum.org/v1/gonum/floats"
)

// extrema tracks the range of the valid values of a grid. Values are
// buffered one row at a time, so memory use is proportional to the
// grid width.
type extrema struct {
	row      []float64
	min, max float64
	ok       bool
}

func newExtrema(width int) *extrema {
	return &extrema{row: make([]float64, 0, width)}
}

// add records a value in the current row.
func (e *extrema) add(z float32) {
	e.row = append(e.row, float64(z))
}

// endRow folds the current row into the running range.
func (e *extrema) endRow() {
	if len(e.row) == 0 {
		return
	}
	min, max := floats.Min(e.row), floats.Max(e.row)
	if !e.ok {
		e.min, e.max, e.ok = min, max, true
	} else {
		if min < e.min {
			e.min = min
		}
		if max > e.max {
			e.max = max
		}
	}
	e.row = e.row[:0]
}

// bounds returns the range of all values in completed rows, and
// false if there were none.
func (e *extrema) bounds() (min, max float32, ok bool) {
	return float32(e.min), float32(e.max), e.ok
}
