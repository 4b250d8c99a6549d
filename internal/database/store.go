// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package database provides persistence for CartAtlas documents.
//
// Two implementations exist: the MongoDB store used in production and an
// in-memory store used by tests. Both maintain a 2dsphere-equivalent contract
// for the Near query: results ordered by increasing distance from the center,
// bounded by a maximum distance in meters.
package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/models"
)

// ErrNotFound is returned when a document id does not resolve.
var ErrNotFound = errors.New("document not found")

// PodStore persists CartPod documents.
type PodStore interface {
	Insert(ctx context.Context, pod models.CartPod) (models.CartPod, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.CartPod, error)
	List(ctx context.Context) ([]models.CartPod, error)
	Update(ctx context.Context, pod models.CartPod) (models.CartPod, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Near returns pods whose location lies within maxMeters of the center
	// point, ordered by increasing distance.
	Near(ctx context.Context, lng, lat, maxMeters float64) ([]models.CartPod, error)

	// AttachCart appends cartID to the pod's foodCarts list. Idempotent:
	// an already-present id is not duplicated. A missing pod is a no-op.
	AttachCart(ctx context.Context, podID, cartID primitive.ObjectID) error

	// DetachCart removes cartID from the pod's foodCarts list. A missing
	// pod or an absent id is a no-op.
	DetachCart(ctx context.Context, podID, cartID primitive.ObjectID) error
}

// CartStore persists FoodCart documents.
type CartStore interface {
	Insert(ctx context.Context, cart models.FoodCart) (models.FoodCart, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.FoodCart, error)
	List(ctx context.Context) ([]models.FoodCart, error)
	Update(ctx context.Context, cart models.FoodCart) (models.FoodCart, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ListByPod returns every cart whose cartPod back-reference equals podID.
	ListByPod(ctx context.Context, podID primitive.ObjectID) ([]models.FoodCart, error)

	// SearchByFoodType returns carts with a foodServed entry matching the
	// substring case-insensitively.
	SearchByFoodType(ctx context.Context, substring string) ([]models.FoodCart, error)
}
