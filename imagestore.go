// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

// Package imagestore provides a load-once cache of decoded images, keyed by
// resource name.  For typical use of creating a Store and serving its images
// over HTTP, see cmd/landmarks/main.go.
package imagestore // import "willnorris.com/go/imagestore"

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultScale is the pixel density assigned to loaded images when a loader
// does not specify one.  Bundled landmark photos are authored at 2x.
const DefaultScale = 2

// ErrEmptyName is returned when an image is requested with an empty name.
var ErrEmptyName = errors.New("imagestore: empty resource name")

// ErrNotFound reports that no backing resource exists for a name.
var ErrNotFound = errors.New("imagestore: resource not found")

// DecodeError reports a resource that was found but could not be decoded.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("imagestore: decoding %q: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Image is a decoded, in-memory image resource.
type Image struct {
	image.Image

	Name   string // resource name, also used as the image label
	Format string // name of the format used to decode the image ("jpeg", "png", ...)
	Scale  int    // pixels per point

	loaded time.Time // when the Store loaded the image
}

// Size returns the logical size of the image in points, which is its pixel
// size divided by its scale.
func (m *Image) Size() image.Point {
	s := m.Bounds().Size()
	if m.Scale > 1 {
		s = s.Div(m.Scale)
	}
	return s
}

// Store serves decoded images by name, loading and decoding each image at
// most once for the lifetime of the Store.
//
// Store never evicts entries; it grows with the number of distinct names
// requested.  Callers that need to release an image can use Delete.
//
// A Store is safe for concurrent use.  Concurrent requests for the same
// missing name share a single call to the Loader.
type Store struct {
	Loader Loader      // loader used on cache misses
	Logger *zap.Logger // if nil, nothing is logged

	mu     sync.Mutex
	images map[string]*Image
	group  singleflight.Group
}

// NewStore constructs a new Store that loads images using l.
func NewStore(l Loader) *Store {
	return &Store{
		Loader: l,
		images: make(map[string]*Image),
	}
}

// Get returns the image with the specified name, loading it on first
// access.  Later calls for the same name return the same *Image without
// consulting the Loader.
//
// If the image cannot be loaded, the error is returned and nothing is
// cached, so a later call will try to load it again.
//
// A load shared by concurrent callers is not canceled when one of them
// gives up.  A caller whose ctx is done returns ctx.Err() right away, and the
// load carries on for the others.
func (s *Store) Get(ctx context.Context, name string) (*Image, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	if m, ok := s.lookup(name); ok {
		cacheHits.Inc()
		return m, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loadCtx := context.WithoutCancel(ctx)
	var leader bool
	ch := s.group.DoChan(name, func() (interface{}, error) {
		leader = true
		// a load for name may have completed between lookup and DoChan
		if m, ok := s.lookup(name); ok {
			cacheHits.Inc()
			return m, nil
		}
		cacheMisses.Inc()
		m, err := s.load(loadCtx, name)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.images == nil {
			s.images = make(map[string]*Image)
		}
		s.images[name] = m
		s.mu.Unlock()
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if !leader {
			// joined a load started by another caller
			if res.Err != nil {
				cacheMisses.Inc()
			} else {
				cacheHits.Inc()
			}
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Image), nil
	}
}

// MustGet is like Get but panics if the image cannot be loaded.  It is
// intended for images that are expected to always be present, such as
// resources bundled with the application.
func (s *Store) MustGet(ctx context.Context, name string) *Image {
	m, err := s.Get(ctx, name)
	if err != nil {
		panic(fmt.Sprintf("imagestore: couldn't load image %q: %v", name, err))
	}
	return m
}

// Len returns the number of images held by the Store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Delete removes the named image from the Store.  Other images are not
// affected.  A later Get for name will load the image again.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	delete(s.images, name)
	s.mu.Unlock()
}

func (s *Store) lookup(name string) (*Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.images[name]
	return m, ok
}

func (s *Store) load(ctx context.Context, name string) (*Image, error) {
	if s.Loader == nil {
		return nil, fmt.Errorf("imagestore: no loader configured for %q", name)
	}

	start := time.Now()
	m, err := s.Loader.Load(ctx, name)
	d := time.Since(start)
	loadSummary.Observe(d.Seconds())

	if err != nil {
		loadErrors.WithLabelValues(errorKind(err)).Inc()
		s.logger().Warn("error loading image", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("imagestore: loader returned no image for %q", name)
	}
	if m.Scale == 0 {
		m.Scale = DefaultScale
	}
	if m.Name == "" {
		m.Name = name
	}
	m.loaded = time.Now()

	s.logger().Debug("loaded image",
		zap.String("name", name),
		zap.String("format", m.Format),
		zap.Duration("duration", d))
	return m, nil
}

func (s *Store) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// errorKind classifies err for the load error metric.
func errorKind(err error) string {
	var derr *DecodeError
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &derr):
		return "decode"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
