// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package imagestore

import (
	"bytes"
	"image"
	_ "image/gif"  // register gif format
	_ "image/jpeg" // register jpeg format
	_ "image/png"  // register png format
	"io"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"  // register bmp format
	_ "golang.org/x/image/tiff" // register tiff format
	_ "golang.org/x/image/webp" // register webp format
)

// Exif Orientation Tag values
// http://sylvana.net/jpegcrop/exif_orientation.html
const (
	topLeftSide     = 1
	topRightSide    = 2
	bottomRightSide = 3
	bottomLeftSide  = 4
	leftSideTop     = 5
	rightSideTop    = 6
	rightSideBottom = 7
	leftSideBottom  = 8
)

// Decode decodes an image encoded in any of the registered formats and
// returns it along with the format name.  Images carrying an EXIF
// orientation tag are rotated and flipped so that they display upright.
func Decode(b []byte) (image.Image, string, error) {
	m, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", err
	}

	if format == "jpeg" || format == "tiff" {
		m = orient(m, exifOrientation(bytes.NewReader(b)))
	}
	return m, format, nil
}

// exifOrientation returns the EXIF orientation of the image in r, or
// topLeftSide if the image has no usable orientation tag.
func exifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return topLeftSide
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return topLeftSide
	}
	o, err := tag.Int(0)
	if err != nil {
		return topLeftSide
	}
	return o
}

// orient transforms m according to the EXIF orientation value o.
func orient(m image.Image, o int) image.Image {
	switch o {
	case topRightSide:
		return imaging.FlipH(m)
	case bottomRightSide:
		return imaging.Rotate180(m)
	case bottomLeftSide:
		return imaging.FlipV(m)
	case leftSideTop:
		return imaging.Transpose(m)
	case rightSideTop:
		return imaging.Rotate270(m)
	case rightSideBottom:
		return imaging.Transverse(m)
	case leftSideBottom:
		return imaging.Rotate90(m)
	}
	return m
}
