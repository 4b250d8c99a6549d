// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package images

import (
	"context"
	"errors"
	"io"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/cartatlas/cartatlas/internal/logging"
	"github.com/cartatlas/cartatlas/internal/metrics"
)

// BreakerStore wraps a Store with a circuit breaker so a degraded Cloudinary
// fails fast instead of tying up request handlers.
//
// The breaker uses real time for its interval and timeout calculations.
// Tests exercise the wrapped store directly rather than waiting out breaker
// state transitions.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[UploadedImage]
}

// NewBreakerStore wraps inner with a breaker that opens after a 60% failure
// rate over at least 10 requests and probes again after one minute.
func NewBreakerStore(inner Store) *BreakerStore {
	cb := gobreaker.NewCircuitBreaker[UploadedImage](gobreaker.Settings{
		Name:        "cloudinary",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("image store circuit breaker state change")
		},
	})

	return &BreakerStore{inner: inner, cb: cb}
}

func (s *BreakerStore) Upload(ctx context.Context, r io.Reader) (UploadedImage, error) {
	start := time.Now()
	img, err := s.cb.Execute(func() (UploadedImage, error) {
		return s.inner.Upload(ctx, r)
	})
	metrics.ImageUploadDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
			return UploadedImage{}, ErrUnavailable
		}
		metrics.ImageUploadsTotal.WithLabelValues("failure").Inc()
		return UploadedImage{}, err
	}

	metrics.ImageUploadsTotal.WithLabelValues("success").Inc()
	return img, nil
}

// Destroy bypasses the breaker. Cleanup of already uploaded assets should
// always be attempted, even when uploads are failing.
func (s *BreakerStore) Destroy(ctx context.Context, publicID string) error {
	return s.inner.Destroy(ctx, publicID)
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
