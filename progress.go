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
	"io"
	"math"
)

// An Observer is notified of the progress of a run.
type Observer interface {
	// Progress is called with the percentage of rows processed
	// each time the whole percentage changes.
	Progress(percent int)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(percent int)

// Progress implements Observer.
func (f ObserverFunc) Progress(percent int) { f(percent) }

// TextProgress returns an Observer that writes a progress line for a
// file of format f to w, overwriting the previous one.
func TextProgress(w io.Writer, f Format) Observer {
	return ObserverFunc(func(percent int) {
		fmt.Fprintf(w, "Processing %s file - %03d%% complete\r", f, percent)
	})
}

// percenter converts row counts to whole percentages and reports
// them to an Observer when they change.
type percenter struct {
	obs    Observer
	height int
	last   int
}

func newPercenter(obs Observer, height int) *percenter {
	return &percenter{obs: obs, height: height, last: -1}
}

// row reports progress at the start of row j.
func (p *percenter) row(j int) {
	p.report(int(math.Floor(float64(j)/float64(p.height)*100 + 0.5)))
}

// done reports completion.
func (p *percenter) done() { p.report(100) }

func (p *percenter) report(percent int) {
	if p.obs == nil || percent == p.last {
		return
	}
	p.last = percent
	p.obs.Progress(percent)
}
