// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package imagestore

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Handler serves images from a Store over HTTP.
//
// The image name is taken from the "name" path value if the handler was
// registered with a pattern such as "GET /images/{name}", or else from the
// last element of the request path.  Transformation options may be provided
// in the "options" query parameter, using the syntax of ParseOptions.
type Handler struct {
	Store  *Store
	Logger *zap.Logger

	// MaxAge, if non-zero, is sent to clients in a Cache-Control header.
	MaxAge time.Duration
}

// NewHandler constructs a Handler serving images from s.
func NewHandler(s *Store, logger *zap.Logger) *Handler {
	return &Handler{Store: s, Logger: logger}
}

// ServeHTTP handles image requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { httpRequestsResponseTime.Observe(time.Since(start).Seconds()) }()

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := requestName(r)
	opt := ParseOptions(r.URL.Query().Get("options"))

	m, err := h.Store.Get(r.Context(), name)
	if err != nil {
		status := errorStatus(err)
		msg := fmt.Sprintf("error loading image %q: %v", name, err)
		if status == http.StatusInternalServerError {
			h.logger().Error(msg)
		} else {
			h.logger().Debug(msg)
		}
		if status == statusClientClosedRequest {
			// nobody is listening for a body
			w.WriteHeader(status)
			return
		}
		http.Error(w, msg, status)
		return
	}

	etag := imageETag(m, opt)
	w.Header().Set("Etag", etag)
	if h.MaxAge > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(h.MaxAge.Seconds())))
	}
	if check304(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var img = m.Image
	if opt != emptyOptions {
		t := time.Now()
		img = Transform(img, opt)
		imageTransformationSummary.Observe(time.Since(t).Seconds())
	}

	buf := new(bytes.Buffer)
	contentType, err := encode(buf, img, m.Format)
	if err != nil {
		msg := fmt.Sprintf("error encoding image %q: %v", name, err)
		h.logger().Error(msg)
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	h.logger().Debug("serving image",
		zap.String("name", name),
		zap.Stringer("options", opt),
		zap.Int("bytes", buf.Len()))
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, buf); err != nil {
		h.logger().Debug("error writing response", zap.String("name", name), zap.Error(err))
	}
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func requestName(r *http.Request) string {
	if name := r.PathValue("name"); name != "" {
		return name
	}
	name := path.Base(r.URL.Path)
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// statusClientClosedRequest is the non-standard status nginx records for
// requests abandoned by the client.
const statusClientClosedRequest = 499

// errorStatus returns the HTTP status code appropriate for a Store error.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// imageETag returns the entity tag for m served with options opt.  An image
// reloaded after Store.Delete gets a new tag, since its content may differ.
func imageETag(m *Image, opt Options) string {
	h := md5.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d", m.Name, m.Format, opt, m.loaded.UnixNano())
	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`
}

// check304 checks whether we should send a 304 Not Modified in response to
// req for an entity with the tag etag.  If-None-Match may list several tags,
// or be the special value "*" which matches any tag.
func check304(req *http.Request, etag string) bool {
	inm := req.Header.Get("If-None-Match")
	if inm == "" {
		return false
	}
	for _, tag := range strings.Split(inm, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == etag {
			return true
		}
	}
	return false
}
