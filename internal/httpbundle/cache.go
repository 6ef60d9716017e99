// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package httpbundle

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PaulARoy/azurestoragecache"
	"github.com/die-net/lrucache"
	"github.com/die-net/lrucache/twotier"
	"github.com/gomodule/redigo/redis"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	rediscache "github.com/gregjones/httpcache/redis"
	"github.com/peterbourgon/diskv"
)

const defaultMemorySize = 100

// ParseCache parses a whitespace separated list of cache specifications and
// returns the resulting Cache.  When more than one cache is specified, they
// are combined into tiers using the twotier package, with earlier caches
// checked first.  An empty string returns a nil Cache.
//
// Supported specifications are:
//
//	memory                - in-memory LRU cache of 100MB
//	memory:{size}:{age}   - in-memory LRU cache of size MB, entries expire after age
//	redis://host:port     - redis server; password read from $REDIS_PASSWORD
//	azure://container     - Azure Storage container; credentials from the environment
//	file:///path, /path   - on-disk cache rooted at path
func ParseCache(s string) (httpcache.Cache, error) {
	var c httpcache.Cache
	for _, v := range strings.Fields(s) {
		tier, err := parseCache(v)
		if err != nil {
			return nil, err
		}
		if c == nil {
			c = tier
		} else {
			c = twotier.New(c, tier)
		}
	}
	return c, nil
}

// parseCache parses c and returns the specified Cache implementation.
func parseCache(c string) (httpcache.Cache, error) {
	if c == "memory" {
		c = fmt.Sprintf("memory:%d", defaultMemorySize)
	}

	u, err := url.Parse(c)
	if err != nil {
		return nil, fmt.Errorf("error parsing cache %q: %w", c, err)
	}

	switch u.Scheme {
	case "azure":
		return azurestoragecache.New("", "", u.Host)
	case "memory":
		return lruCache(u.Opaque)
	case "redis":
		conn, err := redis.DialURL(u.String(), redis.DialPassword(os.Getenv("REDIS_PASSWORD")))
		if err != nil {
			return nil, err
		}
		return rediscache.NewWithClient(conn), nil
	case "file":
		return diskCache(u.Path), nil
	case "":
		return diskCache(c), nil
	default:
		return nil, fmt.Errorf("unsupported cache %q", c)
	}
}

// lruCache creates an LRU Cache with the specified options of the form
// "maxSize:maxAge".  maxSize is specified in megabytes, maxAge is a duration.
func lruCache(options string) (*lrucache.LruCache, error) {
	parts := strings.SplitN(options, ":", 2)
	size, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, err
	}

	var age time.Duration
	if len(parts) > 1 {
		age, err = time.ParseDuration(parts[1])
		if err != nil {
			return nil, err
		}
	}

	return lrucache.New(size*1e6, int64(age.Seconds())), nil
}

func diskCache(path string) *diskcache.Cache {
	d := diskv.New(diskv.Options{
		BasePath: path,

		// For file "c0ffee", store file as "c0/ff/c0ffee"
		Transform: func(s string) []string { return []string{s[0:2], s[2:4]} },
	})
	return diskcache.NewWithDiskv(d)
}
