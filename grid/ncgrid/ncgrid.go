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

// Package ncgrid stores elevation grids in netCDF classic files.
//
// A grid is held in the variables "z" (float32, dimensions y and x),
// "status" (int16, dimensions y and x) and "observed_z" (float64, the
// observed minimum and maximum). Header metadata is stored as global
// string attributes.
package ncgrid

import (
	"fmt"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/zreplace/grid"
)

// Variable names.
const (
	ZVar        = "z"
	StatusVar   = "status"
	ObservedVar = "observed_z"
)

// File is an open netCDF grid file.
type File struct {
	w        *os.File
	f        *cdf.File
	h        grid.Header
	writable bool
}

// Open opens the netCDF grid at path for reading.
func Open(path string) (*File, error) {
	w, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncgrid: %v", err)
	}
	f, err := cdf.Open(w)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("ncgrid: reading header of %s: %v", path, err)
	}
	h, err := readHeader(f)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("ncgrid: %s: %v", path, err)
	}
	return &File{w: w, f: f, h: h}, nil
}

func readHeader(f *cdf.File) (grid.Header, error) {
	var h grid.Header
	for _, v := range []string{ZVar, StatusVar, ObservedVar} {
		if f.Header.Lengths(v) == nil {
			return h, fmt.Errorf("missing variable %q; not a grid file", v)
		}
	}
	dims := f.Header.Lengths(ZVar)
	if len(dims) != 2 {
		return h, fmt.Errorf("variable %q has %d dimensions; want 2", ZVar, len(dims))
	}
	h.Height, h.Width = dims[0], dims[1]
	if err := h.Validate(); err != nil {
		return h, err
	}
	if sd := f.Header.Lengths(StatusVar); len(sd) != 2 || sd[0] != h.Height || sd[1] != h.Width {
		return h, fmt.Errorf("variable %q dimensions %v do not match %q", StatusVar, sd, ZVar)
	}

	observed := make([]float64, 2)
	if _, err := f.Reader(ObservedVar, nil, nil).Read(observed); err != nil {
		return h, fmt.Errorf("reading %q: %v", ObservedVar, err)
	}
	h.MinObservedZ, h.MaxObservedZ = float32(observed[0]), float32(observed[1])

	for _, a := range f.Header.Attributes("") {
		if s, ok := f.Header.GetAttribute("", a).(string); ok {
			if h.Metadata == nil {
				h.Metadata = make(map[string]string)
			}
			h.Metadata[a] = s
		}
	}
	return h, nil
}

// Create creates a new netCDF grid at path with header h, truncating
// any existing file. Every record of the new file is initialized as
// no-data.
func Create(path string, h grid.Header) (*File, error) {
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("ncgrid: creating %s: %v", path, err)
	}
	h = h.Copy()
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}
	if _, ok := h.Metadata["comment"]; !ok {
		h.Metadata["comment"] = "zreplace elevation grid"
	}

	ch := cdf.NewHeader([]string{"y", "x", "range"}, []int{h.Height, h.Width, 2})
	ch.AddVariable(ZVar, []string{"y", "x"}, []float32{0})
	ch.AddAttribute(ZVar, "description", "elevation")
	ch.AddVariable(StatusVar, []string{"y", "x"}, []int16{0})
	ch.AddAttribute(StatusVar, "description", "status bit field; 0 marks cells without data")
	ch.AddAttribute(StatusVar, "_FillValue", []int16{0})
	ch.AddVariable(ObservedVar, []string{"range"}, []float64{0})
	ch.AddAttribute(ObservedVar, "description", "observed minimum and maximum of z")

	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(h.Metadata))
	for k := range h.Metadata {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		ch.AddAttribute("", k, h.Metadata[k])
	}
	ch.Define()

	w, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("ncgrid: %v", err)
	}
	f, err := cdf.Create(w, ch) // writes the header to w
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("ncgrid: writing header of %s: %v", path, err)
	}
	for _, v := range []string{ZVar, StatusVar} {
		if err = f.Fill(v); err != nil {
			w.Close()
			return nil, fmt.Errorf("ncgrid: initializing %q in %s: %v", v, path, err)
		}
	}
	o := &File{w: w, f: f, h: h, writable: true}
	if err = o.writeObserved(h); err != nil {
		w.Close()
		return nil, err
	}
	return o, nil
}

func (f *File) writeObserved(h grid.Header) error {
	v := []float64{float64(h.MinObservedZ), float64(h.MaxObservedZ)}
	if _, err := f.f.Writer(ObservedVar, []int{0}, []int{len(v)}).Write(v); err != nil {
		return fmt.Errorf("ncgrid: writing %q: %v", ObservedVar, err)
	}
	return nil
}

// Header returns a copy of the file header.
func (f *File) Header() grid.Header { return f.h.Copy() }

// ReadRecord reads the record at c.
func (f *File) ReadRecord(c grid.Coord) (grid.Record, error) {
	if !f.h.Contains(c) {
		return grid.Record{}, fmt.Errorf("ncgrid: reading %v: %v", c, grid.ErrOutOfBounds)
	}
	idx := []int{c.Row, c.Col}
	status := []int16{0}
	if _, err := f.f.Reader(StatusVar, idx, idx).Read(status); err != nil {
		return grid.Record{}, fmt.Errorf("ncgrid: reading status at %v: %v", c, err)
	}
	z := []float32{0}
	if _, err := f.f.Reader(ZVar, idx, idx).Read(z); err != nil {
		return grid.Record{}, fmt.Errorf("ncgrid: reading z at %v: %v", c, err)
	}
	return grid.Record{Status: uint16(status[0]), Z: z[0]}, nil
}

// WriteRecord writes r at c.
func (f *File) WriteRecord(c grid.Coord, r grid.Record) error {
	if !f.writable {
		return fmt.Errorf("ncgrid: writing %v: file is open read-only", c)
	}
	if !f.h.Contains(c) {
		return fmt.Errorf("ncgrid: writing %v: %v", c, grid.ErrOutOfBounds)
	}
	// Writers stop with io.EOF when they reach end, so end is one past
	// the cell being written.
	begin, end := []int{c.Row, c.Col}, []int{c.Row, c.Col + 1}
	if _, err := f.f.Writer(StatusVar, begin, end).Write([]int16{int16(r.Status)}); err != nil {
		return fmt.Errorf("ncgrid: writing status at %v: %v", c, err)
	}
	if _, err := f.f.Writer(ZVar, begin, end).Write([]float32{r.Z}); err != nil {
		return fmt.Errorf("ncgrid: writing z at %v: %v", c, err)
	}
	return nil
}

// UpdateHeader stores the observed range of h. netCDF headers are
// fixed once the file has been created, so h may not change the
// dimensions or the metadata.
func (f *File) UpdateHeader(h grid.Header) error {
	if !f.writable {
		return fmt.Errorf("ncgrid: updating header: file is open read-only")
	}
	if err := grid.CheckUpdate(f.h, h); err != nil {
		return fmt.Errorf("ncgrid: updating header: %v", err)
	}
	for k, v := range h.Metadata {
		if f.h.Metadata[k] != v {
			return fmt.Errorf("ncgrid: updating header: metadata %q cannot change after the file is created", k)
		}
	}
	if err := f.writeObserved(h); err != nil {
		return err
	}
	f.h.MinObservedZ, f.h.MaxObservedZ = h.MinObservedZ, h.MaxObservedZ
	return nil
}

// Close closes the file.
func (f *File) Close() error {
	if f.writable {
		if err := cdf.UpdateNumRecs(f.w); err != nil {
			f.w.Close()
			return fmt.Errorf("ncgrid: %v", err)
		}
	}
	if err := f.w.Close(); err != nil {
		return fmt.Errorf("ncgrid: %v", err)
	}
	return nil
}
