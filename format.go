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
	"path/filepath"
	"strings"

	"github.com/spatialmodel/zreplace/grid"
	"github.com/spatialmodel/zreplace/grid/chrtr2"
	"github.com/spatialmodel/zreplace/grid/ncgrid"
)

// Format is a grid file format.
type Format int

// Supported formats.
const (
	UnknownFormat Format = iota
	CHRTR2
	NetCDF
)

var formatNames = []string{"unknown", "CHRTR2", "netCDF"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[UnknownFormat]
	}
	return formatNames[f]
}

var formatExtensions = map[string]Format{
	".ch2":    CHRTR2,
	".chrtr2": CHRTR2,
	".nc":     NetCDF,
	".ncf":    NetCDF,
	".cdf":    NetCDF,
}

// DetermineFormat determines the grid format from the extension of
// fileName.
func DetermineFormat(fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if f, ok := formatExtensions[ext]; ok {
		return f, nil
	}
	return UnknownFormat, fmt.Errorf("zreplace: unsupported grid format for file %s (extension %q)", fileName, ext)
}

// OpenGrid opens the grid at path for reading.
func OpenGrid(path string) (grid.Reader, error) {
	f, err := DetermineFormat(path)
	if err != nil {
		return nil, err
	}
	var r grid.Reader
	switch f {
	case CHRTR2:
		r, err = chrtr2.Open(path)
	case NetCDF:
		r, err = ncgrid.Open(path)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateGrid creates a new grid at path with header h.
func CreateGrid(path string, h grid.Header) (grid.Writer, error) {
	f, err := DetermineFormat(path)
	if err != nil {
		return nil, err
	}
	var w grid.Writer
	switch f {
	case CHRTR2:
		w, err = chrtr2.Create(path, h)
	case NetCDF:
		w, err = ncgrid.Create(path, h)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}
