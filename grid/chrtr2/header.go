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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spatialmodel/zreplace/grid"
)

// Version is written to the [VERSION] tag of created files whose
// header does not carry a version of its own.
const Version = "zreplace CHRTR2 library V1.00"

// Header tags with a fixed meaning. All other tags, including
// [VERSION], are kept in grid.Header.Metadata.
const (
	tagVersion = "VERSION"
	tagWidth   = "WIDTH"
	tagHeight  = "HEIGHT"
	tagMinZ    = "MIN OBSERVED Z"
	tagMaxZ    = "MAX OBSERVED Z"
	tagEnd     = "[END OF HEADER]"
)

// ReadHeader parses a CHRTR2 header block from r.
func ReadHeader(r io.Reader) (grid.Header, error) {
	var h grid.Header
	block := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, block); err != nil {
		return h, fmt.Errorf("reading %d byte header block: %v", HeaderSize, err)
	}
	if i := bytes.IndexByte(block, 0); i >= 0 {
		block = block[:i]
	}

	var (
		haveVersion, haveWidth, haveHeight, haveEnd bool
		line                                        int
	)
	s := bufio.NewScanner(bytes.NewReader(block))
	for s.Scan() {
		line++
		text := strings.TrimRight(s.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if text == tagEnd {
			haveEnd = true
			break
		}
		tag, val, err := splitTag(text)
		if err != nil {
			return h, fmt.Errorf("header line %d: %v", line, err)
		}
		switch tag {
		case tagVersion:
			haveVersion = true
			if h.Metadata == nil {
				h.Metadata = make(map[string]string)
			}
			h.Metadata[tag] = val
		case tagWidth:
			if h.Width, err = strconv.Atoi(val); err != nil {
				return h, fmt.Errorf("header line %d: parsing [%s]: %v", line, tag, err)
			}
			haveWidth = true
		case tagHeight:
			if h.Height, err = strconv.Atoi(val); err != nil {
				return h, fmt.Errorf("header line %d: parsing [%s]: %v", line, tag, err)
			}
			haveHeight = true
		case tagMinZ:
			if h.MinObservedZ, err = parseFloat32(val); err != nil {
				return h, fmt.Errorf("header line %d: parsing [%s]: %v", line, tag, err)
			}
		case tagMaxZ:
			if h.MaxObservedZ, err = parseFloat32(val); err != nil {
				return h, fmt.Errorf("header line %d: parsing [%s]: %v", line, tag, err)
			}
		default:
			if h.Metadata == nil {
				h.Metadata = make(map[string]string)
			}
			h.Metadata[tag] = val
		}
	}
	if err := s.Err(); err != nil {
		return h, err
	}
	switch {
	case !haveVersion:
		return h, fmt.Errorf("missing [%s] tag; not a CHRTR2 file", tagVersion)
	case !haveEnd:
		return h, fmt.Errorf("missing %s", tagEnd)
	case !haveWidth || !haveHeight:
		return h, fmt.Errorf("missing [%s] or [%s] tag", tagWidth, tagHeight)
	}
	return h, h.Validate()
}

// splitTag splits a "[TAG] = value" line.
func splitTag(line string) (tag, val string, err error) {
	if !strings.HasPrefix(line, "[") {
		return "", "", fmt.Errorf("malformed line %q", line)
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return "", "", fmt.Errorf("malformed line %q", line)
	}
	tag = line[1:end]
	rest := strings.TrimSpace(line[end+1:])
	if !strings.HasPrefix(rest, "=") {
		return "", "", fmt.Errorf("malformed line %q", line)
	}
	return tag, strings.TrimSpace(rest[1:]), nil
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// encodeHeader returns the HeaderSize byte header block for h.
func encodeHeader(h grid.Header) ([]byte, error) {
	version := Version
	if v := h.Metadata[tagVersion]; v != "" {
		version = v
	}
	if strings.ContainsAny(version, "\n\r\x00") {
		return nil, fmt.Errorf("invalid value for header tag [%s]: %q", tagVersion, version)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] = %s\n", tagVersion, version)
	fmt.Fprintf(&b, "[%s] = %d\n", tagWidth, h.Width)
	fmt.Fprintf(&b, "[%s] = %d\n", tagHeight, h.Height)
	fmt.Fprintf(&b, "[%s] = %s\n", tagMinZ, formatFloat32(h.MinObservedZ))
	fmt.Fprintf(&b, "[%s] = %s\n", tagMaxZ, formatFloat32(h.MaxObservedZ))

	// Sort the tags so they write in the same order every time.
	tags := make([]string, 0, len(h.Metadata))
	for t := range h.Metadata {
		if t != tagVersion {
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	for _, t := range tags {
		v := h.Metadata[t]
		switch {
		case t == "" || strings.ContainsAny(t, "[]\n\r\x00"):
			return nil, fmt.Errorf("invalid header tag %q", t)
		case strings.ContainsAny(v, "\n\r\x00"):
			return nil, fmt.Errorf("invalid value for header tag [%s]: %q", t, v)
		case t == tagWidth || t == tagHeight || t == tagMinZ || t == tagMaxZ:
			return nil, fmt.Errorf("reserved header tag [%s] in metadata", t)
		}
		fmt.Fprintf(&b, "[%s] = %s\n", t, v)
	}
	b.WriteString(tagEnd + "\n")

	if b.Len() > HeaderSize {
		return nil, fmt.Errorf("header is %d bytes; the maximum is %d", b.Len(), HeaderSize)
	}
	block := make([]byte, HeaderSize)
	copy(block, b.Bytes())
	return block, nil
}
