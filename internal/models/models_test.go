// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package models

import (
	"math"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAverageRating(t *testing.T) {
	user := primitive.NewObjectID()
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []int{3}, 3},
		{"five three four", []int{5, 3, 4}, 4.0},
		{"all ones", []int{1, 1, 1, 1}, 1},
		{"all fives", []int{5, 5}, 5},
		{"non-integer mean", []int{4, 5}, 4.5},
		{"thirds", []int{1, 2, 2}, 5.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratings := make([]Rating, len(tt.ratings))
			for i, v := range tt.ratings {
				ratings[i] = Rating{Rating: v, User: user}
			}
			if got := AverageRating(ratings); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AverageRating() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecalculateAverageRating(t *testing.T) {
	cart := FoodCart{}
	cart.RecalculateAverageRating()
	if cart.AverageRating != 0 {
		t.Errorf("empty ratings: averageRating = %v, want 0", cart.AverageRating)
	}

	cart.Ratings = append(cart.Ratings,
		Rating{Rating: 5}, Rating{Rating: 3}, Rating{Rating: 4})
	cart.RecalculateAverageRating()
	if cart.AverageRating != 4.0 {
		t.Errorf("averageRating = %v, want 4.0", cart.AverageRating)
	}
}

func TestGeoJSONPointValidate(t *testing.T) {
	tests := []struct {
		name    string
		point   GeoJSONPoint
		wantErr bool
	}{
		{"valid", NewPoint(-122.4, 37.7), false},
		{"valid extremes", NewPoint(180, -90), false},
		{"wrong type", GeoJSONPoint{Type: "Polygon", Coordinates: []float64{0, 0}}, true},
		{"empty type", GeoJSONPoint{Coordinates: []float64{0, 0}}, true},
		{"one coordinate", GeoJSONPoint{Type: "Point", Coordinates: []float64{1}}, true},
		{"three coordinates", GeoJSONPoint{Type: "Point", Coordinates: []float64{1, 2, 3}}, true},
		{"nil coordinates", GeoJSONPoint{Type: "Point"}, true},
		{"nan longitude", GeoJSONPoint{Type: "Point", Coordinates: []float64{math.NaN(), 0}}, true},
		{"inf latitude", GeoJSONPoint{Type: "Point", Coordinates: []float64{0, math.Inf(1)}}, true},
		{"longitude out of range", NewPoint(181, 0), true},
		{"latitude out of range", NewPoint(0, 91), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPointAccessors(t *testing.T) {
	p := NewPoint(-122.4, 37.7)
	if p.Longitude() != -122.4 || p.Latitude() != 37.7 {
		t.Errorf("accessors = (%v, %v), want (-122.4, 37.7)", p.Longitude(), p.Latitude())
	}

	malformed := GeoJSONPoint{Type: "Point"}
	if malformed.Longitude() != 0 || malformed.Latitude() != 0 {
		t.Error("malformed point accessors should return 0")
	}
}

func TestHasCart(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	pod := CartPod{FoodCarts: []primitive.ObjectID{a}}
	if !pod.HasCart(a) {
		t.Error("expected HasCart(a) to be true")
	}
	if pod.HasCart(b) {
		t.Error("expected HasCart(b) to be false")
	}
}

func TestHasImage(t *testing.T) {
	tests := []struct {
		name string
		cart FoodCart
		want bool
	}{
		{"none", FoodCart{}, false},
		{"primary", FoodCart{Image: "https://cdn/img.jpg"}, true},
		{"menu only", FoodCart{MenuImages: []string{"https://cdn/m.jpg"}}, true},
		{"specials only", FoodCart{SpecialsImages: []string{"https://cdn/s.jpg"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cart.HasImage(); got != tt.want {
				t.Errorf("HasImage() = %v, want %v", got, tt.want)
			}
		})
	}
}
