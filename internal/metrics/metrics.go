// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package metrics provides Prometheus instrumentation for CartAtlas:
// API endpoint latency and throughput, MongoDB operation performance,
// image store uploads, and reconciliation sweep activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Document store metrics
	MongoOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_operation_duration_seconds",
			Help:    "Duration of MongoDB operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	MongoOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_operation_errors_total",
			Help: "Total number of MongoDB operation errors",
		},
		[]string{"operation", "collection"},
	)

	// Image store metrics
	ImageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Total number of image store uploads",
		},
		[]string{"status"}, // "success", "failure", "rejected"
	)

	ImageUploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_upload_duration_seconds",
			Help:    "Duration of single image uploads in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Reconciliation sweep metrics
	ReconcileSweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_sweeps_total",
			Help: "Total number of pod/cart reference reconciliation sweeps",
		},
	)

	ReconcileRepairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_repairs_total",
			Help: "Total number of reference repairs applied by the sweeper",
		},
		[]string{"kind"}, // "reattached", "pruned"
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordMongoOp records one document store operation.
func RecordMongoOp(operation, collection string, duration time.Duration, err error) {
	MongoOpDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		MongoOpErrors.WithLabelValues(operation, collection).Inc()
	}
}
