// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

// Package landmark provides the landmark data model and a catalog that
// tracks which landmarks a user has marked as favorites.
package landmark

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"willnorris.com/go/imagestore"
)

// DefaultDataFile is the name of the bundled landmark data file.
const DefaultDataFile = "landmarkData.json"

// ErrUnknownLandmark is returned for operations on a landmark ID that is not
// in the catalog.
var ErrUnknownLandmark = errors.New("landmark: unknown landmark")

// Category groups landmarks by kind.
type Category string

const (
	Featured  Category = "Featured"
	Lakes     Category = "Lakes"
	Rivers    Category = "Rivers"
	Mountains Category = "Mountains"
)

// Coordinates is a geographic location in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// Landmark is a named place with an associated image.
type Landmark struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Park        string      `json:"park"`
	State       string      `json:"state"`
	City        string      `json:"city"`
	Category    Category    `json:"category"`
	Description string      `json:"description,omitempty"`
	IsFeatured  bool        `json:"isFeatured"`
	IsFavorite  bool        `json:"isFavorite"`
	Coordinates Coordinates `json:"coordinates"`

	// ImageName is the resource name of the landmark's image in an
	// imagestore.Store, without extension.
	ImageName string `json:"imageName"`
}

// Image returns the landmark's image from s.
func (l Landmark) Image(ctx context.Context, s *imagestore.Store) (*imagestore.Image, error) {
	return s.Get(ctx, l.ImageName)
}

// Load reads landmarks from the named JSON file in b.
func Load(ctx context.Context, b imagestore.Bundle, filename string) ([]Landmark, error) {
	landmarks, err := imagestore.LoadJSON[[]Landmark](ctx, b, filename)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(landmarks))
	for _, l := range landmarks {
		if seen[l.ID] {
			return nil, &imagestore.DecodeError{Name: filename, Err: fmt.Errorf("duplicate landmark id %d", l.ID)}
		}
		seen[l.ID] = true
	}
	return landmarks, nil
}

// Catalog holds the landmarks shown to a user, along with the user's
// favorites and display preference.  A Catalog is safe for concurrent use.
type Catalog struct {
	mu                sync.RWMutex
	landmarks         []Landmark
	index             map[int]int // landmark ID to position in landmarks
	showFavoritesOnly bool
}

// NewCatalog returns a Catalog holding a copy of landmarks, in order.
func NewCatalog(landmarks []Landmark) *Catalog {
	c := &Catalog{
		landmarks: append([]Landmark(nil), landmarks...),
		index:     make(map[int]int, len(landmarks)),
	}
	for i, l := range c.landmarks {
		c.index[l.ID] = i
	}
	return c
}

// LoadCatalog reads landmarks from the named JSON file in b and returns a
// Catalog holding them.
func LoadCatalog(ctx context.Context, b imagestore.Bundle, filename string) (*Catalog, error) {
	landmarks, err := Load(ctx, b, filename)
	if err != nil {
		return nil, err
	}
	return NewCatalog(landmarks), nil
}

// All returns all landmarks, in catalog order.
func (c *Catalog) All() []Landmark {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Landmark(nil), c.landmarks...)
}

// List returns the landmarks to display.  If favoritesOnly is true, only
// landmarks marked as favorites are returned.
func (c *Catalog) List(favoritesOnly bool) []Landmark {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var list []Landmark
	for _, l := range c.landmarks {
		if !favoritesOnly || l.IsFavorite {
			list = append(list, l)
		}
	}
	return list
}

// Visible returns the landmarks to display according to the catalog's
// ShowFavoritesOnly preference.
func (c *Catalog) Visible() []Landmark {
	return c.List(c.ShowFavoritesOnly())
}

// Featured returns the featured landmarks.
func (c *Catalog) Featured() []Landmark {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var list []Landmark
	for _, l := range c.landmarks {
		if l.IsFeatured {
			list = append(list, l)
		}
	}
	return list
}

// Get returns the landmark with the specified ID.
func (c *Catalog) Get(id int) (Landmark, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return Landmark{}, fmt.Errorf("%w: %d", ErrUnknownLandmark, id)
	}
	return c.landmarks[i], nil
}

// ToggleFavorite flips the favorite status of the landmark with the
// specified ID and returns the updated landmark.
func (c *Catalog) ToggleFavorite(id int) (Landmark, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return Landmark{}, fmt.Errorf("%w: %d", ErrUnknownLandmark, id)
	}
	c.landmarks[i].IsFavorite = !c.landmarks[i].IsFavorite
	return c.landmarks[i], nil
}

// ShowFavoritesOnly reports whether only favorite landmarks should be
// displayed.
func (c *Catalog) ShowFavoritesOnly() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.showFavoritesOnly
}

// SetShowFavoritesOnly sets whether only favorite landmarks should be
// displayed.
func (c *Catalog) SetShowFavoritesOnly(v bool) {
	c.mu.Lock()
	c.showFavoritesOnly = v
	c.mu.Unlock()
}
