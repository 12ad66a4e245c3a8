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

// Package grid defines the storage contract shared by the gridded
// elevation file drivers. A grid is a Height x Width array of records
// addressed by (row, column); drivers provide random access to single
// records so that callers can stream a grid without holding it in memory.
package grid

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a coordinate falls outside of the
// extent declared in a grid header.
var ErrOutOfBounds = errors.New("grid: coordinate out of bounds")

// Header holds the summary information about a grid.
type Header struct {
	// Width is the number of columns in the grid.
	Width int
	// Height is the number of rows in the grid.
	Height int

	// MinObservedZ and MaxObservedZ are the smallest and largest
	// z values actually present in the valid cells of the grid.
	MinObservedZ, MaxObservedZ float32

	// Metadata holds any format-specific header fields. Drivers pass
	// them through unchanged when a header is copied to a new file.
	Metadata map[string]string
}

// Validate checks that the header describes a non-empty grid.
func (h Header) Validate() error {
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("grid: invalid dimensions %dx%d; width and height must be >0", h.Width, h.Height)
	}
	return nil
}

// Contains returns whether c falls within the grid extent.
func (h Header) Contains(c Coord) bool {
	return c.Row >= 0 && c.Row < h.Height && c.Col >= 0 && c.Col < h.Width
}

// Index returns the row-major position of c.
func (h Header) Index(c Coord) int64 {
	return int64(c.Row)*int64(h.Width) + int64(c.Col)
}

// Copy returns a deep copy of h.
func (h Header) Copy() Header {
	o := h
	if h.Metadata != nil {
		o.Metadata = make(map[string]string, len(h.Metadata))
		for k, v := range h.Metadata {
			o.Metadata[k] = v
		}
	}
	return o
}

// Coord is a cell location within a grid.
type Coord struct {
	Row, Col int
}

func (c Coord) String() string { return fmt.Sprintf("(row %d, col %d)", c.Row, c.Col) }

// Record is a single grid cell.
type Record struct {
	// Status is a bit field describing the cell. Zero means the
	// cell holds no data; any other value marks a valid measurement.
	Status uint16

	// Z is the elevation of the cell.
	Z float32
}

// Status bits.
const (
	Null         uint16 = 0
	Real         uint16 = 1 << 0
	Interpolated uint16 = 1 << 1
	Digitized    uint16 = 1 << 2
	Land         uint16 = 1 << 3
)

// Valid returns whether r holds a measurement.
func (r Record) Valid() bool { return r.Status != Null }

// Reader provides random read access to an open grid.
type Reader interface {
	// Header returns the header the grid was opened with.
	Header() Header

	// ReadRecord returns the record stored at c.
	ReadRecord(c Coord) (Record, error)

	Close() error
}

// Writer provides random write access to a newly created grid.
type Writer interface {
	// WriteRecord stores r at c.
	WriteRecord(c Coord, r Record) error

	// UpdateHeader replaces the stored header. The dimensions
	// must match the ones the grid was created with.
	UpdateHeader(h Header) error

	Close() error
}

// CheckUpdate returns an error if h cannot replace the header
// of a grid created with dimensions of orig.
func CheckUpdate(orig, h Header) error {
	if orig.Width != h.Width || orig.Height != h.Height {
		return fmt.Errorf("grid: cannot change dimensions from %dx%d to %dx%d in a header update",
			orig.Width, orig.Height, h.Width, h.Height)
	}
	return nil
}
