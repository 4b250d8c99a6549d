// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package models

import (
	"fmt"
	"math"
)

// GeoJSONPoint is the only geometry type CartAtlas stores. Coordinates are
// [longitude, latitude], matching the GeoJSON specification and the order
// MongoDB's 2dsphere index expects.
type GeoJSONPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewPoint builds a point from longitude and latitude.
func NewPoint(lng, lat float64) GeoJSONPoint {
	return GeoJSONPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Longitude returns the first coordinate, or 0 when the point is malformed.
func (p GeoJSONPoint) Longitude() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[0]
}

// Latitude returns the second coordinate, or 0 when the point is malformed.
func (p GeoJSONPoint) Latitude() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Validate checks the point shape: type must be "Point" and coordinates must
// be exactly two finite numbers within longitude/latitude bounds.
func (p GeoJSONPoint) Validate() error {
	if p.Type != "Point" {
		return fmt.Errorf("location type must be \"Point\", got %q", p.Type)
	}
	if len(p.Coordinates) != 2 {
		return fmt.Errorf("location must carry exactly 2 coordinates, got %d", len(p.Coordinates))
	}
	lng, lat := p.Coordinates[0], p.Coordinates[1]
	if math.IsNaN(lng) || math.IsInf(lng, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return fmt.Errorf("location coordinates must be finite")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", lng)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	return nil
}
