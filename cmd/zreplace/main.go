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

// Command zreplace is a command-line interface for replacing values
// in gridded elevation files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spatialmodel/zreplace"
	"github.com/spatialmodel/zreplace/zreplaceutil"
)

// Exit statuses.
const (
	exitError = 1
	exitUsage = 2
)

func main() {
	cmd, err := zreplaceutil.Root.ExecuteC()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	var ue *zreplace.UsageError
	if errors.As(err, &ue) {
		if cmd != nil {
			fmt.Fprint(os.Stderr, "\n"+cmd.UsageString())
		}
		os.Exit(exitUsage)
	}
	os.Exit(exitError)
}
