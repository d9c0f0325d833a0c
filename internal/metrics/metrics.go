// SPDX-License-Identifier: MIT

// Package metrics exposes the gateway's prometheus instrumentation.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ThumbnailFetchTotal tracks thumbnail resolution outcomes:
	// hit_index, downloaded, negcache, no_thumbnail, upstream_error,
	// download_error.
	ThumbnailFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ivsgw_thumbnail_fetch_total",
		Help: "Thumbnail resolution attempts by outcome",
	}, []string{"outcome"})

	// UpstreamRequestDuration tracks IVS API call latency by operation and
	// whether the call succeeded.
	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ivsgw_upstream_request_duration_seconds",
		Help:    "IBM Video API request latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation", "success"})

	// HTTPRequestsTotal tracks inbound requests by route and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ivsgw_http_requests_total",
		Help: "Inbound HTTP requests by route and status",
	}, []string{"route", "status"})
)

// IncThumbnailFetch records a thumbnail resolution outcome.
func IncThumbnailFetch(outcome string) {
	ThumbnailFetchTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstreamRequest records an IVS API call.
func ObserveUpstreamRequest(operation string, success bool, d time.Duration) {
	UpstreamRequestDuration.WithLabelValues(operation, strconv.FormatBool(success)).Observe(d.Seconds())
}

// IncHTTPRequest records an inbound request.
func IncHTTPRequest(route string, status int) {
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
