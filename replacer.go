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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/zreplace/grid"
)

// Replacer copies grids while replacing the values selected by a
// Policy.
type Replacer struct {
	// Policy selects the cells to replace. It is required.
	Policy Policy

	// Progress, if not nil, receives progress updates.
	Progress Observer

	// Log receives diagnostic messages. If it is nil,
	// the logrus standard logger is used.
	Log logrus.FieldLogger
}

// RunResult summarizes a completed run.
type RunResult struct {
	Width, Height int

	// Cells is the number of cells visited, ValidCells the number
	// of those holding data and Replaced the number of valid cells
	// whose value was replaced.
	Cells, ValidCells, Replaced int

	// MinZ and MaxZ are the observed range of the valid output
	// values. They are only meaningful if HasData is true.
	MinZ, MaxZ float32
	HasData    bool
}

func (r *Replacer) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// Run reads the grid at inputPath and writes the transformed grid to
// a new file at outputPath. The formats of both files are determined
// from their extensions. If either file cannot be opened, an
// *OpenError is returned. If processing fails part way through, the
// partial output file is removed and a *ScanError is returned.
func (r *Replacer) Run(inputPath, outputPath string) (*RunResult, error) {
	if r.Policy == nil {
		return nil, errors.New("zreplace: no replacement policy specified")
	}
	if samePath(inputPath, outputPath) {
		return nil, &OpenError{Kind: Output, Path: outputPath, Err: errors.New("the output file is the same as the input file")}
	}

	in, err := OpenGrid(inputPath)
	if err != nil {
		return nil, &OpenError{Kind: Input, Path: inputPath, Err: err}
	}
	h := in.Header()

	out, err := CreateGrid(outputPath, h)
	if err != nil {
		in.Close()
		return nil, &OpenError{Kind: Output, Path: outputPath, Err: err}
	}

	log := r.log().WithFields(logrus.Fields{
		"input":  inputPath,
		"output": outputPath,
	})
	log.WithFields(logrus.Fields{
		"width":  h.Width,
		"height": h.Height,
		"policy": r.Policy.String(),
	}).Info("replacing grid values")

	abort := func(err error) (*RunResult, error) {
		in.Close()
		out.Close()
		if rmErr := os.Remove(outputPath); rmErr != nil {
			log.WithError(rmErr).Warn("removing partial output file")
		}
		return nil, err
	}

	res, err := r.scan(in, out, h)
	if err != nil {
		return abort(err)
	}
	if err = in.Close(); err != nil {
		return abort(fmt.Errorf("zreplace: closing input: %v", err))
	}
	if err = r.finish(out, h, res); err != nil {
		out.Close()
		os.Remove(outputPath)
		return nil, err
	}
	if err = out.Close(); err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("zreplace: closing output: %v", err)
	}

	log.WithFields(logrus.Fields{
		"cells":    res.Cells,
		"valid":    res.ValidCells,
		"replaced": res.Replaced,
		"min_z":    res.MinZ,
		"max_z":    res.MaxZ,
	}).Info("replacement complete")
	return res, nil
}

// Stream copies every record of src to dst in row-major order,
// applying the policy to valid records, and then updates the
// header of dst with the observed range. It does not close either
// grid.
func (r *Replacer) Stream(src grid.Reader, dst grid.Writer) (*RunResult, error) {
	if r.Policy == nil {
		return nil, errors.New("zreplace: no replacement policy specified")
	}
	h := src.Header()
	res, err := r.scan(src, dst, h)
	if err != nil {
		return nil, err
	}
	if err = r.finish(dst, h, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Replacer) scan(src grid.Reader, dst grid.Writer, h grid.Header) (*RunResult, error) {
	res := &RunResult{Width: h.Width, Height: h.Height}
	ext := newExtrema(h.Width)
	prog := newPercenter(r.Progress, h.Height)

	for j := 0; j < h.Height; j++ {
		prog.row(j)
		for k := 0; k < h.Width; k++ {
			c := grid.Coord{Row: j, Col: k}
			rec, err := src.ReadRecord(c)
			if err != nil {
				return nil, &ScanError{Coord: c, Err: err}
			}

			// No-data records are copied unchanged.
			if rec.Valid() {
				var replaced bool
				rec.Z, replaced = r.Policy.Apply(rec.Z)
				if replaced {
					res.Replaced++
				}
				res.ValidCells++
				ext.add(rec.Z)
			}

			if err = dst.WriteRecord(c, rec); err != nil {
				return nil, &ScanError{Coord: c, Err: err}
			}
			res.Cells++
		}
		ext.endRow()
	}
	prog.done()

	res.MinZ, res.MaxZ, res.HasData = ext.bounds()
	return res, nil
}

// finish stores the observed range in the header of dst. A grid
// without valid cells gets a range of zero.
func (r *Replacer) finish(dst grid.Writer, h grid.Header, res *RunResult) error {
	h = h.Copy()
	if res.HasData {
		h.MinObservedZ, h.MaxObservedZ = res.MinZ, res.MaxZ
	} else {
		h.MinObservedZ, h.MaxObservedZ = 0, 0
		r.log().Warn("grid has no valid cells; setting the observed range to zero")
	}
	if err := dst.UpdateHeader(h); err != nil {
		return fmt.Errorf("zreplace: updating output header: %v", err)
	}
	return nil
}

// samePath returns whether a and b refer to the same file.
func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
