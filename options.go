// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package imagestore

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Options specifies transformations that can be performed on an image
// before it is served.  The cached image itself is never modified.
type Options struct {
	// Width and Height are the requested size in pixels.  Values between 0
	// and 1 are a fraction of the original size.  Zero leaves that
	// dimension to be derived from the aspect ratio.
	Width  float64
	Height float64

	// If true, resize the image to fit in the specified dimensions.  Image
	// will not be cropped, and aspect ratio will be maintained.
	Fit bool

	// Rotate image the specified degrees counter-clockwise.  Valid values
	// are 90, 180, 270.
	Rotate int

	FlipVertical   bool
	FlipHorizontal bool
}

var emptyOptions = Options{}

func (o Options) String() string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%vx%v", o.Width, o.Height)
	if o.Fit {
		buf.WriteString(",fit")
	}
	if o.Rotate != 0 {
		fmt.Fprintf(buf, ",r%d", o.Rotate)
	}
	if o.FlipVertical {
		buf.WriteString(",fv")
	}
	if o.FlipHorizontal {
		buf.WriteString(",fh")
	}
	return buf.String()
}

// ParseOptions parses str as a comma separated list of transformation
// options.  The following options can be specified in any order:
//
//	{size}   - "100x200" sets width and height, "100" sets both, "100x" or
//	           "x200" set only one.  Fractions such as "0.5x" are relative.
//	fit      - fit the image within the requested size
//	r{deg}   - rotate counter-clockwise by 90, 180, or 270 degrees
//	fv, fh   - flip vertically or horizontally
//
// Unrecognized options are ignored.
func ParseOptions(str string) Options {
	var o Options

	for _, part := range strings.Split(str, ",") {
		switch {
		case part == "":
			continue
		case part == "fit":
			o.Fit = true
		case part == "fv":
			o.FlipVertical = true
		case part == "fh":
			o.FlipHorizontal = true
		case len(part) > 2 && part[0] == 'r':
			o.Rotate, _ = strconv.Atoi(part[1:])
		case strings.ContainsRune(part, 'x'):
			size := strings.SplitN(part, "x", 2)
			if size[0] != "" {
				o.Width, _ = strconv.ParseFloat(size[0], 64)
			}
			if size[1] != "" {
				o.Height, _ = strconv.ParseFloat(size[1], 64)
			}
		default:
			if size, err := strconv.ParseFloat(part, 64); err == nil {
				o.Width = size
				o.Height = size
			}
		}
	}

	return o
}
