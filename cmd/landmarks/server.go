// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"willnorris.com/go/imagestore/landmark"
)

// landmarkResponse is the JSON representation of a landmark returned to
// clients.
type landmarkResponse struct {
	landmark.Landmark
	ImageURL string `json:"imageURL"`
}

type server struct {
	catalog *landmark.Catalog
	logger  *zap.Logger
}

// newServer returns the handler for all routes served by landmarks.  images
// serves requests under /images/.
func newServer(images http.Handler, c *landmark.Catalog, logger *zap.Logger) http.Handler {
	s := &server{catalog: c, logger: logger}

	mux := http.NewServeMux()
	mux.Handle("GET /images/{name}", images)
	mux.HandleFunc("GET /landmarks", s.listLandmarks)
	mux.HandleFunc("GET /landmarks/{id}", s.getLandmark)
	mux.HandleFunc("POST /landmarks/{id}/favorite", s.toggleFavorite)
	mux.HandleFunc("GET /preferences/favorites-only", s.getFavoritesOnly)
	mux.HandleFunc("PUT /preferences/favorites-only", s.setFavoritesOnly)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// listLandmarks lists landmarks.  The favorites query parameter overrides
// the catalog's favorites-only preference.
func (s *server) listLandmarks(w http.ResponseWriter, r *http.Request) {
	var list []landmark.Landmark
	if v := r.URL.Query().Get("favorites"); v != "" {
		favoritesOnly, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid favorites value %q", v), http.StatusBadRequest)
			return
		}
		list = s.catalog.List(favoritesOnly)
	} else {
		list = s.catalog.Visible()
	}

	resp := make([]landmarkResponse, 0, len(list))
	for _, l := range list {
		resp = append(resp, newLandmarkResponse(l))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *server) getLandmark(w http.ResponseWriter, r *http.Request) {
	id, ok := s.landmarkID(w, r)
	if !ok {
		return
	}
	l, err := s.catalog.Get(id)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newLandmarkResponse(l))
}

func (s *server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := s.landmarkID(w, r)
	if !ok {
		return
	}
	l, err := s.catalog.ToggleFavorite(id)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	s.logger.Info("toggled favorite", zap.Int("id", id), zap.Bool("favorite", l.IsFavorite))
	s.writeJSON(w, http.StatusOK, newLandmarkResponse(l))
}

func (s *server) getFavoritesOnly(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.ShowFavoritesOnly())
}

func (s *server) setFavoritesOnly(w http.ResponseWriter, r *http.Request) {
	var v bool
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	s.catalog.SetShowFavoritesOnly(v)
	s.writeJSON(w, http.StatusOK, v)
}

func (s *server) landmarkID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid landmark id %q", r.PathValue("id")), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *server) catalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, landmark.ErrUnknownLandmark) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Error("catalog error", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("error writing response", zap.Error(err))
	}
}

func newLandmarkResponse(l landmark.Landmark) landmarkResponse {
	return landmarkResponse{
		Landmark: l,
		ImageURL: "/images/" + url.PathEscape(l.ImageName),
	}
}
