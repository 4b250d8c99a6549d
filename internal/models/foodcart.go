// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is a single review left on a food cart by a principal.
type Rating struct {
	Rating int                `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Review string             `bson:"review,omitempty" json:"review,omitempty"`
	User   primitive.ObjectID `bson:"user" json:"user"`
}

// FoodCart represents one vendor cart assigned to exactly one pod.
//
// AverageRating is derived from Ratings and recomputed before every persist
// that touches the ratings list; it is never computed lazily at read time and
// never stored stale.
type FoodCart struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	CartPod        primitive.ObjectID `bson:"cartPod" json:"cartPod"`
	Location       GeoJSONPoint       `bson:"location" json:"location"`
	Image          string             `bson:"image,omitempty" json:"image,omitempty"`
	MenuImages     []string           `bson:"menuImages" json:"menuImages"`
	SpecialsImages []string           `bson:"specialsImages" json:"specialsImages"`
	FoodServed     []string           `bson:"foodServed" json:"foodServed"`
	Ratings        []Rating           `bson:"ratings" json:"ratings"`
	AverageRating  float64            `bson:"averageRating" json:"averageRating"`
	CreatedBy      primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AverageRating computes the arithmetic mean of the ratings, 0 when empty.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}

// RecalculateAverageRating refreshes the derived average from the ratings
// list. Must be called on every path that mutates Ratings, before persisting.
func (f *FoodCart) RecalculateAverageRating() {
	f.AverageRating = AverageRating(f.Ratings)
}

// HasImage reports whether the cart carries at least one image of any kind.
func (f *FoodCart) HasImage() bool {
	return f.Image != "" || len(f.MenuImages) > 0 || len(f.SpecialsImages) > 0
}

// Summary trims the cart to the shape embedded in pod responses.
func (f *FoodCart) Summary() FoodCartSummary {
	return FoodCartSummary{
		ID:         f.ID,
		Name:       f.Name,
		Image:      f.Image,
		FoodServed: f.FoodServed,
		Location:   f.Location,
	}
}

// PopulatedFoodCart is a cart with its pod back-reference resolved to the
// full pod document. Pod is nil when the referenced pod no longer exists
// (a dangling reference the reconciliation sweep reports).
type PopulatedFoodCart struct {
	FoodCart
	Pod *CartPod `json:"cartPodDetail,omitempty"`
}
