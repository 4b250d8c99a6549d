// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package models defines the CartAtlas document types stored in MongoDB and
// the wire shapes returned by the API.
//
// Two aggregates exist: CartPod (a geolocated cluster of food carts) and
// FoodCart (a single vendor). The relationship is bidirectional and
// denormalized: a pod lists its cart ids in FoodCarts, and each cart carries
// a CartPod back-reference. The service layer keeps the two sides consistent.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartPod represents a physical location hosting one or more food carts.
type CartPod struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Location    GeoJSONPoint         `bson:"location" json:"location"`
	FoodCarts   []primitive.ObjectID `bson:"foodCarts" json:"foodCarts"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasCart reports whether the pod's foodCarts list contains the given id.
func (p *CartPod) HasCart(cartID primitive.ObjectID) bool {
	for _, id := range p.FoodCarts {
		if id == cartID {
			return true
		}
	}
	return false
}

// FoodCartSummary is the trimmed cart shape embedded in pod responses,
// mirroring the populate select of name, image, foodServed and location.
type FoodCartSummary struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Image      string             `bson:"image,omitempty" json:"image,omitempty"`
	FoodServed []string           `bson:"foodServed" json:"foodServed"`
	Location   GeoJSONPoint       `bson:"location" json:"location"`
}

// PopulatedCartPod is a pod with its cart references resolved to summaries.
type PopulatedCartPod struct {
	CartPod
	FoodCarts []FoodCartSummary `json:"foodCarts"`
}
