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

// Package chrtr2 reads and writes CHRTR2 gridded elevation files.
//
// A CHRTR2 file starts with a HeaderSize byte ASCII header made of
// "[TAG] = value" lines terminated by an "[END OF HEADER]" line and
// padded with NUL bytes. The header is followed by Width*Height fixed
// size records stored in row-major order. Each record is a big-endian
// uint16 status bit field followed by a big-endian IEEE-754 float32
// elevation.
package chrtr2

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/spatialmodel/zreplace/grid"
)

const (
	// HeaderSize is the size of the ASCII header block in bytes.
	HeaderSize = 16384

	// RecordSize is the size of one encoded record in bytes.
	RecordSize = 6
)

// File is an open CHRTR2 file.
type File struct {
	f        *os.File
	h        grid.Header
	writable bool
	buf      [RecordSize]byte
}

// Open opens the CHRTR2 file at path for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chrtr2: %v", err)
	}
	h, err := ReadHeader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("chrtr2: reading header of %s: %v", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("chrtr2: %v", err)
	}
	if want := dataSize(h); fi.Size() < want {
		f.Close()
		return nil, fmt.Errorf("chrtr2: %s is truncated: size is %d bytes but a %dx%d grid needs %d",
			path, fi.Size(), h.Width, h.Height, want)
	}
	return &File{f: f, h: h}, nil
}

// Create creates a new CHRTR2 file at path with header h, truncating
// any existing file. Every record of the new file is initialized as
// no-data.
func Create(path string, h grid.Header) (*File, error) {
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("chrtr2: creating %s: %v", path, err)
	}
	hdr, err := encodeHeader(h)
	if err != nil {
		return nil, fmt.Errorf("chrtr2: creating %s: %v", path, err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("chrtr2: %v", err)
	}
	if _, err = f.WriteAt(hdr, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("chrtr2: writing header of %s: %v", path, err)
	}
	if err = f.Truncate(dataSize(h)); err != nil {
		f.Close()
		return nil, fmt.Errorf("chrtr2: allocating %s: %v", path, err)
	}
	return &File{f: f, h: h.Copy(), writable: true}, nil
}

func dataSize(h grid.Header) int64 {
	return HeaderSize + int64(h.Width)*int64(h.Height)*RecordSize
}

func (f *File) offset(c grid.Coord) int64 {
	return HeaderSize + f.h.Index(c)*RecordSize
}

// Header returns a copy of the file header.
func (f *File) Header() grid.Header { return f.h.Copy() }

// ReadRecord reads the record at c.
func (f *File) ReadRecord(c grid.Coord) (grid.Record, error) {
	if !f.h.Contains(c) {
		return grid.Record{}, fmt.Errorf("chrtr2: reading %v: %v", c, grid.ErrOutOfBounds)
	}
	if _, err := f.f.ReadAt(f.buf[:], f.offset(c)); err != nil {
		return grid.Record{}, fmt.Errorf("chrtr2: reading %v: %v", c, err)
	}
	return decodeRecord(f.buf[:]), nil
}

// WriteRecord writes r at c.
func (f *File) WriteRecord(c grid.Coord, r grid.Record) error {
	if !f.writable {
		return fmt.Errorf("chrtr2: writing %v: file is open read-only", c)
	}
	if !f.h.Contains(c) {
		return fmt.Errorf("chrtr2: writing %v: %v", c, grid.ErrOutOfBounds)
	}
	encodeRecord(f.buf[:], r)
	if _, err := f.f.WriteAt(f.buf[:], f.offset(c)); err != nil {
		return fmt.Errorf("chrtr2: writing %v: %v", c, err)
	}
	return nil
}

// UpdateHeader rewrites the header block of the file.
func (f *File) UpdateHeader(h grid.Header) error {
	if !f.writable {
		return fmt.Errorf("chrtr2: updating header: file is open read-only")
	}
	if err := grid.CheckUpdate(f.h, h); err != nil {
		return fmt.Errorf("chrtr2: updating header: %v", err)
	}
	hdr, err := encodeHeader(h)
	if err != nil {
		return fmt.Errorf("chrtr2: updating header: %v", err)
	}
	if _, err = f.f.WriteAt(hdr, 0); err != nil {
		return fmt.Errorf("chrtr2: updating header: %v", err)
	}
	f.h = h.Copy()
	return nil
}

// Close closes the file.
func (f *File) Close() error {
	if err := f.f.Close(); err != nil {
		return fmt.Errorf("chrtr2: %v", err)
	}
	return nil
}

func decodeRecord(b []byte) grid.Record {
	return grid.Record{
		Status: binary.BigEndian.Uint16(b[0:2]),
		Z:      math.Float32frombits(binary.BigEndian.Uint32(b[2:6])),
	}
}

func encodeRecord(b []byte, r grid.Record) {
	binary.BigEndian.PutUint16(b[0:2], r.Status)
	binary.BigEndian.PutUint32(b[2:6], math.Float32bits(r.Z))
}
