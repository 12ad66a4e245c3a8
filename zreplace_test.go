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
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestReplaceNegative(t *testing.T) {
	p := ReplaceNegative{New: 0}
	tests := []struct {
		z, want float32
		match   bool
	}{
		{z: -5, want: 0, match: true},
		{z: -1.2, want: 0, match: true},
		{z: -0.001, want: 0, match: true},
		{z: 0, want: 0, match: false},
		{z: 3, want: 3, match: false},
	}
	for _, test := range tests {
		z, match := p.Apply(test.z)
		if z != test.want || match != test.match {
			t.Errorf("Apply(%g) = (%g, %v); want (%g, %v)", test.z, z, match, test.want, test.match)
		}
	}
}

func TestReplaceExact(t *testing.T) {
	p := ReplaceExact{Old: 10, New: -9999}
	tests := []struct {
		z, want float32
		match   bool
	}{
		{z: 10, want: -9999, match: true},
		{z: 10.005, want: -9999, match: true},
		{z: 9.995, want: -9999, match: true},
		{z: 10.02, want: 10.02, match: false},
		{z: 9.98, want: 9.98, match: false},
		{z: 3, want: 3, match: false},
		{z: -10, want: -10, match: false},
	}
	for _, test := range tests {
		z, match := p.Apply(test.z)
		if z != test.want || match != test.match {
			t.Errorf("Apply(%g) = (%g, %v); want (%g, %v)", test.z, z, match, test.want, test.match)
		}
	}
}

func TestNewPolicy(t *testing.T) {
	old := float32(10)
	tests := []struct {
		name string
		mode string
		old  *float32
		want Policy
		err  bool
	}{
		{name: "implicit negative", want: ReplaceNegative{New: 1}},
		{name: "implicit exact", old: &old, want: ReplaceExact{Old: 10, New: 1}},
		{name: "negative", mode: ModeNegative, want: ReplaceNegative{New: 1}},
		{name: "exact", mode: ModeExact, old: &old, want: ReplaceExact{Old: 10, New: 1}},
		{name: "exact without old", mode: ModeExact, err: true},
		{name: "negative with old", mode: ModeNegative, old: &old, err: true},
		{name: "bad mode", mode: "land", err: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := NewPolicy(test.mode, 1, test.old)
			if test.err {
				var ue *UsageError
				if !errors.As(err, &ue) {
					t.Errorf("error = %v; want a *UsageError", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(p, test.want) {
				t.Errorf("policy = %#v; want %#v", p, test.want)
			}
		})
	}
}

func TestDetermineFormat(t *testing.T) {
	tests := map[string]Format{
		"grid.ch2":         CHRTR2,
		"dir/GRID.CH2":     CHRTR2,
		"grid.chrtr2":      CHRTR2,
		"grid.nc":          NetCDF,
		"grid.ncf":         NetCDF,
		"/tmp/x/grid.cdf":  NetCDF,
		"grid.tif":         UnknownFormat,
		"no_extension_now": UnknownFormat,
	}
	for name, want := range tests {
		f, err := DetermineFormat(name)
		if f != want {
			t.Errorf("%s: format = %v; want %v", name, f, want)
		}
		if (err != nil) != (want == UnknownFormat) {
			t.Errorf("%s: unexpected error state: %v", name, err)
		}
	}
}

func TestFormatString(t *testing.T) {
	for f, want := range map[Format]string{
		UnknownFormat: "unknown",
		CHRTR2:        "CHRTR2",
		NetCDF:        "netCDF",
		Format(7):     "unknown",
		Format(-1):    "unknown",
	} {
		if got := f.String(); got != want {
			t.Errorf("Format(%d).String() = %q; want %q", int(f), got, want)
		}
	}
}

func TestPercenter(t *testing.T) {
	var got []int
	p := newPercenter(ObserverFunc(func(percent int) { got = append(got, percent) }), 3)
	for j := 0; j < 3; j++ {
		p.row(j)
		p.row(j) // Duplicates are not reported.
	}
	p.done()
	want := []int{0, 33, 67, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("progress = %v; want %v", got, want)
	}

	newPercenter(nil, 10).row(5) // A nil observer is ignored.
}

func TestTextProgress(t *testing.T) {
	var b bytes.Buffer
	p := TextProgress(&b, CHRTR2)
	p.Progress(7)
	p.Progress(100)
	want := "Processing CHRTR2 file - 007% complete\rProcessing CHRTR2 file - 100% complete\r"
	if b.String() != want {
		t.Errorf("output = %q; want %q", b.String(), want)
	}
}

func TestExtrema(t *testing.T) {
	e := newExtrema(3)
	if _, _, ok := e.bounds(); ok {
		t.Error("empty extrema should not have bounds")
	}
	e.endRow() // An empty row is ignored.
	e.add(3)
	e.add(-1)
	e.endRow()
	e.add(7)
	e.endRow()
	min, max, ok := e.bounds()
	if !ok || min != -1 || max != 7 {
		t.Errorf("bounds = (%g, %g, %v); want (-1, 7, true)", min, max, ok)
	}
}
