// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "yttools"

var (
	// CacheOperationsTotal tracks transcript cache operations.
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error, dropped
	//   - backend: memory, redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of transcript cache operations",
		},
		[]string{"operation", "status", "backend"},
	)

	// UpstreamRequestsTotal tracks requests to YouTube upstream endpoints.
	// Labels:
	//   - endpoint: oembed, watch, timedtext
	//   - status: success, error
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream YouTube requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestsTotal tracks served HTTP requests.
	// Labels:
	//   - method: GET, POST, DELETE
	//   - status: numeric status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "status"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
	CacheStatusDropped = "dropped"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Upstream endpoint constants.
const (
	UpstreamOEmbed    = "oembed"
	UpstreamWatch     = "watch"
	UpstreamTimedtext = "timedtext"
)

// Upstream status constants.
const (
	UpstreamStatusSuccess = "success"
	UpstreamStatusError   = "error"
)
