// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package api

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/auth"
	"github.com/cartatlas/cartatlas/internal/images"
	"github.com/cartatlas/cartatlas/internal/service"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger files spill to disk.
const maxMultipartMemory = 32 << 20

// Pinger is the health probe the handler runs against the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services behind the REST surface.
type Handler struct {
	pods     *service.PodService
	carts    *service.CartService
	uploader *images.BatchUploader
	db       Pinger
}

// NewHandler wires the HTTP handlers to their services. db may be nil in
// tests; the health endpoint then skips the database probe.
func NewHandler(pods *service.PodService, carts *service.CartService, uploader *images.BatchUploader, db Pinger) *Handler {
	return &Handler{pods: pods, carts: carts, uploader: uploader, db: db}
}

// decodeJSON decodes a request body strictly: unknown fields are rejected
// so the patch allow-lists cannot be bypassed by extra keys.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathID parses the {id} route parameter as an ObjectID.
func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

// principal returns the authenticated user id. Routes calling this are
// always behind the auth middleware.
func principal(r *http.Request) (primitive.ObjectID, bool) {
	return auth.UserIDFromContext(r.Context())
}

// uploadedURLs uploads any multipart image files and returns their URLs in
// submission order.
func (h *Handler) uploadedURLs(r *http.Request, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	results, err := h.uploader.UploadAll(r.Context(), files)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(results))
	for i, img := range results {
		urls[i] = img.URL
	}
	return urls, nil
}
