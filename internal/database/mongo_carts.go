// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cartatlas/cartatlas/internal/metrics"
	"github.com/cartatlas/cartatlas/internal/models"
)

// MongoCartStore implements CartStore on the foodcarts collection.
type MongoCartStore struct {
	coll *mongo.Collection
}

// Insert persists a new cart, assigning its id and timestamps and refreshing
// the derived average rating.
func (s *MongoCartStore) Insert(ctx context.Context, cart models.FoodCart) (models.FoodCart, error) {
	start := time.Now()
	now := time.Now().UTC()

	cart.ID = primitive.NewObjectID()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	if cart.MenuImages == nil {
		cart.MenuImages = []string{}
	}
	if cart.SpecialsImages == nil {
		cart.SpecialsImages = []string{}
	}
	if cart.Ratings == nil {
		cart.Ratings = []models.Rating{}
	}
	cart.RecalculateAverageRating()

	_, err := s.coll.InsertOne(ctx, cart)
	metrics.RecordMongoOp("insert", cartCollection, time.Since(start), err)
	if err != nil {
		return models.FoodCart{}, fmt.Errorf("insert food cart: %w", err)
	}
	return cart, nil
}

// Get fetches a cart by id.
func (s *MongoCartStore) Get(ctx context.Context, id primitive.ObjectID) (models.FoodCart, error) {
	start := time.Now()
	var cart models.FoodCart
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&cart)
	metrics.RecordMongoOp("get", cartCollection, time.Since(start), err)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.FoodCart{}, ErrNotFound
	}
	if err != nil {
		return models.FoodCart{}, fmt.Errorf("get food cart: %w", err)
	}
	return cart, nil
}

// List returns all carts.
func (s *MongoCartStore) List(ctx context.Context) ([]models.FoodCart, error) {
	return s.find(ctx, "list", bson.M{})
}

// Update replaces the stored cart, bumping updatedAt and refreshing the
// derived average so a stale value can never be persisted.
func (s *MongoCartStore) Update(ctx context.Context, cart models.FoodCart) (models.FoodCart, error) {
	start := time.Now()
	cart.UpdatedAt = time.Now().UTC()
	cart.RecalculateAverageRating()

	result, err := s.coll.ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart)
	metrics.RecordMongoOp("update", cartCollection, time.Since(start), err)
	if err != nil {
		return models.FoodCart{}, fmt.Errorf("update food cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.FoodCart{}, ErrNotFound
	}
	return cart, nil
}

// Delete removes a cart by id.
func (s *MongoCartStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	metrics.RecordMongoOp("delete", cartCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("delete food cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByPod returns carts whose back-reference points at podID.
func (s *MongoCartStore) ListByPod(ctx context.Context, podID primitive.ObjectID) ([]models.FoodCart, error) {
	return s.find(ctx, "list_by_pod", bson.M{"cartPod": podID})
}

// SearchByFoodType matches foodServed entries with a case-insensitive
// substring regex. The substring is quoted so user input cannot inject
// regex metacharacters.
func (s *MongoCartStore) SearchByFoodType(ctx context.Context, substring string) ([]models.FoodCart, error) {
	filter := bson.M{
		"foodServed": bson.M{
			"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(substring), Options: "i"},
		},
	}
	return s.find(ctx, "search_food_type", filter)
}

func (s *MongoCartStore) find(ctx context.Context, operation string, filter bson.M) ([]models.FoodCart, error) {
	start := time.Now()
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		metrics.RecordMongoOp(operation, cartCollection, time.Since(start), err)
		return nil, fmt.Errorf("%s food carts: %w", operation, err)
	}
	carts := []models.FoodCart{}
	err = cursor.All(ctx, &carts)
	metrics.RecordMongoOp(operation, cartCollection, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("decode food carts: %w", err)
	}
	return carts, nil
}
