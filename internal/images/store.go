// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package images stores uploaded food cart photos in Cloudinary.
//
// Uploads flow through a circuit breaker so a degraded image CDN cannot
// stall API handlers, and batch uploads clean up after themselves: if any
// file in a batch fails, every image already uploaded for that batch is
// destroyed best-effort so no orphaned assets accumulate.
package images

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable is returned when the image store rejects a request because
// its circuit breaker is open.
var ErrUnavailable = errors.New("image store unavailable")

// UploadedImage identifies a stored image. PublicID is the handle needed to
// destroy the asset later.
type UploadedImage struct {
	URL      string
	PublicID string
}

// Store uploads and destroys images.
type Store interface {
	Upload(ctx context.Context, r io.Reader) (UploadedImage, error)

	// Destroy removes a previously uploaded image. Destroying an unknown
	// public id is not an error.
	Destroy(ctx context.Context, publicID string) error
}
