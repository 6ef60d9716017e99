// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

// Package httpbundle provides an imagestore.Bundle implementation that
// fetches resources from an HTTP origin, optionally caching responses.
package httpbundle

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	aia "github.com/fcjr/aia-transport-go"
	"github.com/gregjones/httpcache"
	"go.uber.org/zap"
)

// Bundle reads resources relative to a base URL.
type Bundle struct {
	Client  *http.Client // client used to fetch resources
	BaseURL *url.URL     // resources are resolved relative to this URL

	// UserAgent, if set, is sent with every request.
	UserAgent string

	Logger *zap.Logger
}

// New constructs a Bundle fetching resources relative to base.  If c is not
// nil, responses are cached in c according to their HTTP caching headers.
// The provided http RoundTripper will be used to fetch remote URLs.  If nil
// is provided, a transport which fetches missing intermediate certificates
// is used.
func New(base *url.URL, c httpcache.Cache, transport http.RoundTripper) *Bundle {
	if transport == nil {
		transport = defaultTransport()
	}
	if c != nil {
		transport = &httpcache.Transport{
			Transport:           transport,
			Cache:               c,
			MarkCachedResponses: true,
		}
	}

	u := *base
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &Bundle{
		Client:  &http.Client{Transport: transport},
		BaseURL: &u,
	}
}

func defaultTransport() http.RoundTripper {
	t, err := aia.NewTransport()
	if err != nil {
		return http.DefaultTransport
	}
	return t
}

// ReadFile implements the imagestore.Bundle interface.
func (b *Bundle) ReadFile(ctx context.Context, name string) ([]byte, error) {
	u := b.BaseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(name, "/")})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching %v: %w", u, err)
	}
	defer resp.Body.Close()

	cached := resp.Header.Get(httpcache.XFromCache) == "1"
	b.logger().Debug("fetched resource",
		zap.Stringer("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Bool("cached", cached))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	default:
		return nil, fmt.Errorf("remote URL %q returned status: %v", u, resp.Status)
	}

	value, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body from %v: %w", u, err)
	}
	return value, nil
}

func (b *Bundle) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}
