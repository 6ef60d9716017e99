// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package imagestore

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		input string
		want  Options
	}{
		{"", emptyOptions},
		{"x", emptyOptions},
		{"r", emptyOptions},
		{"0", emptyOptions},
		{",,,,", emptyOptions},

		// size variations
		{"1x", Options{Width: 1}},
		{"x1", Options{Height: 1}},
		{"1x2", Options{Width: 1, Height: 2}},
		{"-1x-2", Options{Width: -1, Height: -2}},
		{"0.1x0.2", Options{Width: 0.1, Height: 0.2}},
		{"1", Options{Width: 1, Height: 1}},
		{"0.1", Options{Width: 0.1, Height: 0.1}},

		// additional flags
		{"fit", Options{Fit: true}},
		{"r90", Options{Rotate: 90}},
		{"fv", Options{FlipVertical: true}},
		{"fh", Options{FlipHorizontal: true}},

		// mix of valid and invalid flags
		{"FOO,1,BAR,r90,BAZ", Options{Width: 1, Height: 1, Rotate: 90}},

		// flags, in different orders
		{"50x50,fit,r90,fv,fh", Options{Width: 50, Height: 50, Fit: true, Rotate: 90, FlipVertical: true, FlipHorizontal: true}},
		{"r90,fh,fv,fit,50x50", Options{Width: 50, Height: 50, Fit: true, Rotate: 90, FlipVertical: true, FlipHorizontal: true}},
	}

	for _, tt := range tests {
		if got, want := ParseOptions(tt.input), tt.want; got != want {
			t.Errorf("ParseOptions(%q) returned %#v, want %#v", tt.input, got, want)
		}
	}
}

func TestOptions_String(t *testing.T) {
	tests := []struct {
		Options Options
		String  string
	}{
		{emptyOptions, "0x0"},
		{Options{Width: 1, Height: 2, Fit: true, Rotate: 90, FlipVertical: true, FlipHorizontal: true}, "1x2,fit,r90,fv,fh"},
		{Options{Width: 0.15, Height: 1.3, Rotate: 45}, "0.15x1.3,r45"},
	}

	for i, tt := range tests {
		if got, want := tt.Options.String(), tt.String; got != want {
			t.Errorf("%d. Options.String returned %v, want %v", i, got, want)
		}
	}
}

func TestTransform(t *testing.T) {
	src := newImage(2, 2, red, green, blue, yellow)

	tests := []struct {
		opt  Options
		want image.Image
	}{
		// no transformation returns the image itself
		{emptyOptions, src},

		// flips
		{Options{FlipHorizontal: true}, newImage(2, 2, green, red, yellow, blue)},
		{Options{FlipVertical: true}, newImage(2, 2, blue, yellow, red, green)},
		{Options{FlipHorizontal: true, FlipVertical: true}, newImage(2, 2, yellow, blue, green, red)},

		// rotations
		{Options{Rotate: 45}, src},
		{Options{Rotate: 90}, newImage(2, 2, green, yellow, red, blue)},
		{Options{Rotate: 180}, newImage(2, 2, yellow, blue, green, red)},
		{Options{Rotate: 270}, newImage(2, 2, blue, red, yellow, green)},

		// never scale up
		{Options{Width: 100, Height: 100}, src},
	}

	for _, tt := range tests {
		got := Transform(src, tt.opt)
		if got.Bounds().Size() != tt.want.Bounds().Size() {
			t.Errorf("Transform(%v) returned size %v, want %v", tt.opt, got.Bounds().Size(), tt.want.Bounds().Size())
			continue
		}
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				g := color.NRGBAModel.Convert(got.At(x, y))
				w := color.NRGBAModel.Convert(tt.want.At(x, y))
				if g != w {
					t.Errorf("Transform(%v) pixel (%d,%d) = %v, want %v", tt.opt, x, y, g, w)
				}
			}
		}
	}
}

func TestTransform_Resize(t *testing.T) {
	src := newImage(64, 128, red)

	tests := []struct {
		opt  Options
		want image.Point
	}{
		{Options{Width: 0.5}, image.Pt(32, 64)},
		{Options{Height: 0.5}, image.Pt(32, 64)},
		{Options{Width: 32, Height: 32}, image.Pt(32, 32)},
		{Options{Width: 32, Height: 32, Fit: true}, image.Pt(16, 32)},
		{Options{Width: 32, Fit: true}, image.Pt(32, 64)},
		{Options{Width: -10}, image.Pt(64, 128)},
		{Options{Width: 64, Height: 128}, image.Pt(64, 128)},
	}

	for _, tt := range tests {
		if got := Transform(src, tt.opt).Bounds().Size(); got != tt.want {
			t.Errorf("Transform(%v) returned size %v, want %v", tt.opt, got, tt.want)
		}
	}
}

func TestEncode(t *testing.T) {
	m := newImage(2, 2, red)
	tests := []struct {
		format      string
		contentType string
		decodedAs   string
	}{
		{"jpeg", "image/jpeg", "jpeg"},
		{"png", "image/png", "png"},
		{"gif", "image/gif", "gif"},
		{"bmp", "image/bmp", "bmp"},
		{"tiff", "image/tiff", "tiff"},
		{"webp", "image/png", "png"},
	}

	for _, tt := range tests {
		buf := new(bytes.Buffer)
		ct, err := encode(buf, m, tt.format)
		if err != nil {
			t.Errorf("encode(%q) returned error: %v", tt.format, err)
			continue
		}
		if ct != tt.contentType {
			t.Errorf("encode(%q) returned content type %q, want %q", tt.format, ct, tt.contentType)
		}
		if _, format, err := image.Decode(buf); err != nil || format != tt.decodedAs {
			t.Errorf("encode(%q) output decoded as %q (err %v), want %q", tt.format, format, err, tt.decodedAs)
		}
	}
}
