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
	"fmt"

	"github.com/spatialmodel/zreplace/grid"
)

// UsageError is returned when a command is invoked with the wrong
// arguments.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return "zreplace: " + e.Msg }

// FileKind tells which of the two files of a run an error refers to.
type FileKind int

// The files of a run.
const (
	Input FileKind = iota
	Output
)

func (k FileKind) String() string {
	if k == Input {
		return "input"
	}
	return "output"
}

// OpenError is returned when the input grid cannot be opened or the
// output grid cannot be created. Err holds the grid store diagnostic.
type OpenError struct {
	Kind FileKind
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("zreplace: opening %s file %s: %v", e.Kind, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ScanError is returned when a record cannot be read or written
// while the grid is being processed.
type ScanError struct {
	Coord grid.Coord
	Err   error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("zreplace: processing cell %v: %v", e.Coord, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }
