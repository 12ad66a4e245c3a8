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

package chrtr2

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/zreplace/grid"
)

func testHeader() grid.Header {
	return grid.Header{
		Width:        3,
		Height:       2,
		MinObservedZ: -12.5,
		MaxObservedZ: 40.25,
		Metadata: map[string]string{
			"VERSION":       "CHRTR2 library V2.10 - 01/18/12",
			"CREATION DATE": "Thu Jan 19 10:00:00 2012",
			"MIN X":         "-76.5",
			"MIN Y":         "36.25",
			"GRID SIZE":     "0.05 minutes",
		},
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := testHeader()
	block, err := encodeHeader(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(block) != HeaderSize {
		t.Fatalf("header block is %d bytes; want %d", len(block), HeaderSize)
	}
	if !bytes.HasPrefix(block, []byte("[VERSION] = CHRTR2 library V2.10 - 01/18/12\n")) {
		t.Errorf("header does not start with the input version tag: %q", block[:64])
	}
	h2, err := ReadHeader(bytes.NewReader(block))
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(h, h2); len(diff) != 0 {
		t.Errorf("header round trip: %v", diff)
	}
}

func TestHeaderDefaultVersion(t *testing.T) {
	h := grid.Header{Width: 2, Height: 1}
	block, err := encodeHeader(h)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(block, []byte("[VERSION] = "+Version+"\n")) {
		t.Errorf("header does not start with the version tag: %q", block[:64])
	}
	if bytes.Count(block, []byte("[VERSION]")) != 1 {
		t.Errorf("version tag written more than once: %q", block[:128])
	}
	h2, err := ReadHeader(bytes.NewReader(block))
	if err != nil {
		t.Fatal(err)
	}
	if v := h2.Metadata["VERSION"]; v != Version {
		t.Errorf("version = %q; want %q", v, Version)
	}
}

func TestReadHeaderErrors(t *testing.T) {
	pad := func(s string) []byte {
		b := make([]byte, HeaderSize)
		copy(b, s)
		return b
	}
	tests := []struct {
		name, header, err string
	}{
		{
			name:   "no version",
			header: "[WIDTH] = 2\n[HEIGHT] = 2\n[END OF HEADER]\n",
			err:    "not a CHRTR2 file",
		},
		{
			name:   "no end",
			header: "[VERSION] = x\n[WIDTH] = 2\n[HEIGHT] = 2\n",
			err:    "missing [END OF HEADER]",
		},
		{
			name:   "bad width",
			header: "[VERSION] = x\n[WIDTH] = two\n[HEIGHT] = 2\n[END OF HEADER]\n",
			err:    "parsing [WIDTH]",
		},
		{
			name:   "zero height",
			header: "[VERSION] = x\n[WIDTH] = 2\n[HEIGHT] = 0\n[END OF HEADER]\n",
			err:    "invalid dimensions",
		},
		{
			name:   "malformed",
			header: "[VERSION] = x\nWIDTH 2\n[END OF HEADER]\n",
			err:    "malformed line",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadHeader(bytes.NewReader(pad(test.header)))
			if err == nil || !strings.Contains(err.Error(), test.err) {
				t.Errorf("error = %v; want it to contain %q", err, test.err)
			}
		})
	}
	t.Run("short", func(t *testing.T) {
		if _, err := ReadHeader(strings.NewReader("[VERSION] = x\n")); err == nil {
			t.Error("expected an error for a short header block")
		}
	})
}

func TestEncodeHeaderReservedTag(t *testing.T) {
	h := testHeader()
	h.Metadata["WIDTH"] = "4"
	if _, err := encodeHeader(h); err == nil {
		t.Error("expected an error for a reserved metadata tag")
	}
}

func TestEncodeHeaderBadVersion(t *testing.T) {
	h := testHeader()
	h.Metadata["VERSION"] = "V1\n[WIDTH] = 9"
	if _, err := encodeHeader(h); err == nil {
		t.Error("expected an error for a multi-line version")
	}
}

func TestFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "chrtr2")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "test.ch2")

	h := testHeader()
	w, err := Create(path, h)
	if err != nil {
		t.Fatal(err)
	}
	want := map[grid.Coord]grid.Record{
		{Row: 0, Col: 0}: {Status: grid.Real, Z: -12.5},
		{Row: 0, Col: 2}: {Status: grid.Real | grid.Land, Z: 40.25},
		{Row: 1, Col: 1}: {Status: grid.Interpolated, Z: 3.125},
	}
	for c, r := range want {
		if err = w.WriteRecord(c, r); err != nil {
			t.Fatal(err)
		}
	}
	if err = w.WriteRecord(grid.Coord{Row: 2, Col: 0}, grid.Record{}); err == nil {
		t.Error("expected an out of bounds error")
	}
	h.MinObservedZ, h.MaxObservedZ = -1, 1
	if err = w.UpdateHeader(h); err != nil {
		t.Fatal(err)
	}
	bad := h.Copy()
	bad.Width = 4
	if err = w.UpdateHeader(bad); err == nil {
		t.Error("expected an error when changing dimensions")
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != HeaderSize+3*2*RecordSize {
		t.Errorf("file size = %d; want %d", fi.Size(), HeaderSize+3*2*RecordSize)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if diff := pretty.Diff(h, r.Header()); len(diff) != 0 {
		t.Errorf("header: %v", diff)
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			c := grid.Coord{Row: row, Col: col}
			rec, err := r.ReadRecord(c)
			if err != nil {
				t.Fatal(err)
			}
			if rec != want[c] {
				t.Errorf("%v: have %+v, want %+v", c, rec, want[c])
			}
		}
	}
	if _, err = r.ReadRecord(grid.Coord{Row: 0, Col: -1}); err == nil {
		t.Error("expected an out of bounds error")
	}
	if err = r.WriteRecord(grid.Coord{}, grid.Record{}); err == nil {
		t.Error("expected an error writing to a read-only file")
	}
}

func TestOpenTruncated(t *testing.T) {
	dir, err := ioutil.TempDir("", "chrtr2")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "short.ch2")

	block, err := encodeHeader(testHeader())
	if err != nil {
		t.Fatal(err)
	}
	if err = ioutil.WriteFile(path, block, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err = Open(path); err == nil || !strings.Contains(err.Error(), "truncated") {
		t.Errorf("error = %v; want truncated file error", err)
	}
	if _, err = Open(filepath.Join(dir, "missing.ch2")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
