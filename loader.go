// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package imagestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// DefaultExtensions are the file extensions tried by a BundleLoader that
// does not specify its own.
var DefaultExtensions = []string{".jpg"}

// A Loader locates and decodes the named image.  Load should return an
// error wrapping ErrNotFound if no resource exists for name, and a
// *DecodeError if the resource exists but cannot be decoded.
type Loader interface {
	Load(ctx context.Context, name string) (*Image, error)
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc func(ctx context.Context, name string) (*Image, error)

// Load calls f(ctx, name).
func (f LoaderFunc) Load(ctx context.Context, name string) (*Image, error) {
	return f(ctx, name)
}

// A Bundle is a read-only store of named files, such as a directory of
// application resources or a bucket in remote object storage.
//
// ReadFile returns an error satisfying errors.Is(err, fs.ErrNotExist) if the
// named file does not exist.
type Bundle interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// FSBundle is a Bundle backed by an fs.FS.
type FSBundle struct {
	FS fs.FS
}

// DirBundle returns a Bundle reading files from the directory dir.
func DirBundle(dir string) FSBundle {
	return FSBundle{FS: os.DirFS(dir)}
}

// ReadFile implements the Bundle interface.
func (b FSBundle) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(b.FS, name)
}

// BundleLoader is a Loader that reads images from a Bundle.  For a name,
// each of Extensions is appended in turn and the first file that exists is
// decoded.
type BundleLoader struct {
	Bundle Bundle

	// Extensions to try, in order.  If empty, DefaultExtensions is used.
	Extensions []string

	// Scale assigned to loaded images.  If zero, DefaultScale is used.
	Scale int

	Logger *zap.Logger
}

// Load implements the Loader interface.
func (l *BundleLoader) Load(ctx context.Context, name string) (*Image, error) {
	exts := l.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	scale := l.Scale
	if scale == 0 {
		scale = DefaultScale
	}

	var missing error
	for _, ext := range exts {
		file := name + ext
		b, err := l.Bundle.ReadFile(ctx, file)
		if errors.Is(err, fs.ErrNotExist) {
			if missing == nil {
				missing = err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("imagestore: reading %q: %w", file, err)
		}

		m, format, err := Decode(b)
		if err != nil {
			return nil, &DecodeError{Name: file, Err: err}
		}
		if l.Logger != nil {
			l.Logger.Debug("decoded image", zap.String("file", file), zap.Int("bytes", len(b)))
		}
		return &Image{Image: m, Name: name, Format: format, Scale: scale}, nil
	}

	return nil, fmt.Errorf("%w: %q: %w", ErrNotFound, name, missing)
}

// LoadJSON reads filename from b and decodes its JSON contents into a value
// of type T.  An error wrapping ErrNotFound is returned if the file does not
// exist, and a *DecodeError if its contents do not match T.
func LoadJSON[T any](ctx context.Context, b Bundle, filename string) (T, error) {
	var zero T

	data, err := b.ReadFile(ctx, filename)
	if errors.Is(err, fs.ErrNotExist) {
		return zero, fmt.Errorf("%w: %q: %w", ErrNotFound, filename, err)
	}
	if err != nil {
		return zero, fmt.Errorf("imagestore: reading %q: %w", filename, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, &DecodeError{Name: filename, Err: err}
	}
	return v, nil
}
