// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cartatlas/cartatlas/internal/metrics"
	"github.com/cartatlas/cartatlas/internal/models"
)

// MongoPodStore implements PodStore on the cartpods collection.
type MongoPodStore struct {
	coll *mongo.Collection
}

// Insert persists a new pod, assigning its id and timestamps.
func (s *MongoPodStore) Insert(ctx context.Context, pod models.CartPod) (models.CartPod, error) {
	start := time.Now()
	now := time.Now().UTC()

	pod.ID = primitive.NewObjectID()
	pod.CreatedAt = now
	pod.UpdatedAt = now
	if pod.FoodCarts == nil {
		pod.FoodCarts = []primitive.ObjectID{}
	}

	_, err := s.coll.InsertOne(ctx, pod)
	metrics.RecordMongoOp("insert", podCollection, time.Since(start), err)
	if err != nil {
		return models.CartPod{}, fmt.Errorf("insert cart pod: %w", err)
	}
	return pod, nil
}

// Get fetches a pod by id.
func (s *MongoPodStore) Get(ctx context.Context, id primitive.ObjectID) (models.CartPod, error) {
	start := time.Now()
	var pod models.CartPod
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&pod)
	metrics.RecordMongoOp("get", podCollection, time.Since(start), err)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CartPod{}, ErrNotFound
	}
	if err != nil {
		return models.CartPod{}, fmt.Errorf("get cart pod: %w", err)
	}
	return pod, nil
}

// List returns all pods.
func (s *MongoPodStore) List(ctx context.Context) ([]models.CartPod, error) {
	start := time.Now()
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		metrics.RecordMongoOp("list", podCollection, time.Since(start), err)
		return nil, fmt.Errorf("list cart pods: %w", err)
	}
	pods := []models.CartPod{}
	err = cursor.All(ctx, &pods)
	metrics.RecordMongoOp("list", podCollection, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("decode cart pods: %w", err)
	}
	return pods, nil
}

// Update replaces the stored pod, bumping updatedAt.
func (s *MongoPodStore) Update(ctx context.Context, pod models.CartPod) (models.CartPod, error) {
	start := time.Now()
	pod.UpdatedAt = time.Now().UTC()

	result, err := s.coll.ReplaceOne(ctx, bson.M{"_id": pod.ID}, pod)
	metrics.RecordMongoOp("update", podCollection, time.Since(start), err)
	if err != nil {
		return models.CartPod{}, fmt.Errorf("update cart pod: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.CartPod{}, ErrNotFound
	}
	return pod, nil
}

// Delete removes a pod by id.
func (s *MongoPodStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	metrics.RecordMongoOp("delete", podCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("delete cart pod: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Near delegates the proximity query to the 2dsphere index. Results come
// back ordered by increasing distance, which callers rely on.
func (s *MongoPodStore) Near(ctx context.Context, lng, lat, maxMeters float64) ([]models.CartPod, error) {
	start := time.Now()
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{lng, lat},
				},
				"$maxDistance": maxMeters,
			},
		},
	}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		metrics.RecordMongoOp("near", podCollection, time.Since(start), err)
		return nil, fmt.Errorf("nearby cart pods: %w", err)
	}
	pods := []models.CartPod{}
	err = cursor.All(ctx, &pods)
	metrics.RecordMongoOp("near", podCollection, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("decode nearby cart pods: %w", err)
	}
	return pods, nil
}

// AttachCart adds cartID to the pod's foodCarts via $addToSet, which makes
// the operation idempotent. A missing pod matches zero documents and is
// treated as a no-op so compensating writes stay robust.
func (s *MongoPodStore) AttachCart(ctx context.Context, podID, cartID primitive.ObjectID) error {
	start := time.Now()
	update := bson.M{
		"$addToSet": bson.M{"foodCarts": cartID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": podID}, update)
	metrics.RecordMongoOp("attach_cart", podCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("attach cart to pod: %w", err)
	}
	return nil
}

// DetachCart removes cartID from the pod's foodCarts via $pull. Absent ids
// and missing pods are no-ops.
func (s *MongoPodStore) DetachCart(ctx context.Context, podID, cartID primitive.ObjectID) error {
	start := time.Now()
	update := bson.M{
		"$pull": bson.M{"foodCarts": cartID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": podID}, update)
	metrics.RecordMongoOp("detach_cart", podCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("detach cart from pod: %w", err)
	}
	return nil
}
