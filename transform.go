// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package imagestore

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// compression quality of encoded jpegs
const jpegQuality = 95

// Transform returns a copy of m with the transformations in opt applied.  m
// itself is not modified.  If opt requests no transformation, m is returned.
func Transform(m image.Image, opt Options) image.Image {
	if opt == emptyOptions {
		return m
	}

	// convert percentage width and height values to absolute values
	imgW := m.Bounds().Dx()
	imgH := m.Bounds().Dy()
	w := dimension(opt.Width, imgW)
	h := dimension(opt.Height, imgH)

	// never resize larger than the original image
	if w > imgW {
		w = imgW
	}
	if h > imgH {
		h = imgH
	}

	// resize
	if (w != 0 || h != 0) && (w != imgW || h != imgH) {
		switch {
		case opt.Fit:
			if w == 0 {
				w = imgW
			}
			if h == 0 {
				h = imgH
			}
			m = imaging.Fit(m, w, h, imaging.Lanczos)
		case w == 0 || h == 0:
			m = imaging.Resize(m, w, h, imaging.Lanczos)
		default:
			m = imaging.Thumbnail(m, w, h, imaging.Lanczos)
		}
	}

	// flip
	if opt.FlipVertical {
		m = imaging.FlipV(m)
	}
	if opt.FlipHorizontal {
		m = imaging.FlipH(m)
	}

	// rotate
	switch opt.Rotate {
	case 90:
		m = imaging.Rotate90(m)
	case 180:
		m = imaging.Rotate180(m)
	case 270:
		m = imaging.Rotate270(m)
	}

	return m
}

// dimension converts a requested size v into pixels, relative to the
// original size orig when v is a fraction.
func dimension(v float64, orig int) int {
	switch {
	case 0 < v && v < 1:
		return int(float64(orig) * v)
	case v < 0:
		return 0
	default:
		return int(v)
	}
}

// encode writes m to w in the specified format and returns the content type
// of the written data.  Formats that cannot be encoded are written as png.
func encode(w io.Writer, m image.Image, format string) (string, error) {
	switch format {
	case "gif":
		return "image/gif", gif.Encode(w, m, nil)
	case "jpeg":
		return "image/jpeg", jpeg.Encode(w, m, &jpeg.Options{Quality: jpegQuality})
	case "bmp":
		return "image/bmp", bmp.Encode(w, m)
	case "tiff":
		return "image/tiff", tiff.Encode(w, m, nil)
	default:
		return "image/png", png.Encode(w, m)
	}
}
