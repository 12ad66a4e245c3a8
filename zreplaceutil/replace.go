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

package zreplaceutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/zreplace"
)

// Replace copies the grid in InputFile to OutputFile, replacing the
// values selected by p.
//
// Either file may be stored remotely (see OpenBucket); remote files are
// staged through a temporary directory.
// Log messages and progress are written to w. If LogFile is not empty,
// log messages are additionally written to LogFile.
func Replace(ctx context.Context, w io.Writer, InputFile, OutputFile, LogFile string, p zreplace.Policy) (*zreplace.RunResult, error) {
	dir, err := ioutil.TempDir("", "zreplace")
	if err != nil {
		return nil, fmt.Errorf("zreplaceutil: creating staging directory: %v", err)
	}
	defer os.RemoveAll(dir)

	upload := &uploader{dir: dir}

	log := logrus.New()
	log.Out = w
	var logfile *os.File
	if LogFile != "" {
		logfile, err = os.Create(upload.maybeUpload(LogFile))
		if err != nil {
			return nil, fmt.Errorf("zreplaceutil: problem creating log file: %v", err)
		}
		defer logfile.Close()
		log.Out = io.MultiWriter(w, logfile)
	}

	input, err := maybeDownload(ctx, InputFile, dir)
	if err != nil {
		return nil, &zreplace.OpenError{Kind: zreplace.Input, Path: InputFile, Err: err}
	}
	output := upload.maybeUpload(OutputFile)

	// An unknown format is reported when the file is opened.
	format, _ := zreplace.DetermineFormat(input)

	r := &zreplace.Replacer{
		Policy:   p,
		Progress: zreplace.TextProgress(w, format),
		Log:      log,
	}
	res, err := r.Run(input, output)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "\n%d of %d valid cells replaced. Observed z range: [%g, %g].\n",
		res.Replaced, res.ValidCells, res.MinZ, res.MaxZ)

	if logfile != nil {
		if err = logfile.Close(); err != nil {
			return nil, fmt.Errorf("zreplaceutil: closing log file: %v", err)
		}
	}
	if err = upload.uploadOutput(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// GridInfo summarizes the header of a grid file.
type GridInfo struct {
	File                       string
	Format                     string
	Width, Height              int
	MinObservedZ, MaxObservedZ float32
	Metadata                   map[string]string `toml:",omitempty"`
}

// Info writes the header of the grid at path to w in TOML format.
func Info(ctx context.Context, w io.Writer, path string) error {
	dir, err := ioutil.TempDir("", "zreplace")
	if err != nil {
		return fmt.Errorf("zreplaceutil: creating staging directory: %v", err)
	}
	defer os.RemoveAll(dir)

	local, err := maybeDownload(ctx, path, dir)
	if err != nil {
		return &zreplace.OpenError{Kind: zreplace.Input, Path: path, Err: err}
	}
	g, err := zreplace.OpenGrid(local)
	if err != nil {
		return &zreplace.OpenError{Kind: zreplace.Input, Path: path, Err: err}
	}
	defer g.Close()

	format, _ := zreplace.DetermineFormat(local)
	h := g.Header()
	info := GridInfo{
		File:         path,
		Format:       format.String(),
		Width:        h.Width,
		Height:       h.Height,
		MinObservedZ: h.MinObservedZ,
		MaxObservedZ: h.MaxObservedZ,
		Metadata:     h.Metadata,
	}
	if err = toml.NewEncoder(w).Encode(info); err != nil {
		return fmt.Errorf("zreplaceutil: writing header information: %v", err)
	}
	return nil
}
