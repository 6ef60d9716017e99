// Copyright 2026 The imagestore authors.
// SPDX-License-Identifier: Apache-2.0

package imagestore

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "imagestore",
		Name:      "cache_hits_total",
		Help:      "Number of image lookups served from memory.",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "imagestore",
		Name:      "cache_misses_total",
		Help:      "Number of image lookups that required a load.",
	})
	loadSummary = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "imagestore",
		Name:      "image_load_seconds",
		Help:      "Time taken to load and decode images in seconds.",
	})
	loadErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "imagestore",
		Name:      "image_load_errors_total",
		Help:      "Total image load failures, by kind.",
	}, []string{"kind"})
	imageTransformationSummary = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "imagestore",
		Name:      "image_transformation_seconds",
		Help:      "Time taken for image transformations in seconds.",
	})
	httpRequestsResponseTime = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "http",
		Name:      "response_time_seconds",
		Help:      "Request response times",
	})
)

func init() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
	prometheus.MustRegister(loadSummary)
	prometheus.MustRegister(loadErrors)
	prometheus.MustRegister(imageTransformationSummary)
	prometheus.MustRegister(httpRequestsResponseTime)
}
