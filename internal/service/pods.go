// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/database"
	"github.com/cartatlas/cartatlas/internal/logging"
	"github.com/cartatlas/cartatlas/internal/models"
	"github.com/cartatlas/cartatlas/internal/validation"
)

// PodService implements cart pod operations.
type PodService struct {
	pods  database.PodStore
	carts database.CartStore
}

// NewPodService wires the pod service to its stores.
func NewPodService(pods database.PodStore, carts database.CartStore) *PodService {
	return &PodService{pods: pods, carts: carts}
}

// CreatePodInput carries the fields a client may set on a new pod.
type CreatePodInput struct {
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description"`
	Location    models.GeoJSONPoint `json:"location" validate:"geopoint"`
}

// UpdatePodInput is the patch allow-list for pods. Ownership and
// relationship fields are deliberately absent: createdBy and foodCarts can
// never be rewritten through the API.
type UpdatePodInput struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Location    *models.GeoJSONPoint `json:"location"`
}

// Create validates and persists a new pod owned by the principal. The pod
// starts with no food carts.
func (s *PodService) Create(ctx context.Context, principal primitive.ObjectID, in CreatePodInput) (models.CartPod, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.ValidateStruct(&in); err != nil {
		return models.CartPod{}, err
	}

	pod := models.CartPod{
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
		FoodCarts:   []primitive.ObjectID{},
		CreatedBy:   principal,
	}
	return s.pods.Insert(ctx, pod)
}

// Get returns a pod with its cart references resolved to summaries.
func (s *PodService) Get(ctx context.Context, id primitive.ObjectID) (models.PopulatedCartPod, error) {
	pod, err := s.pods.Get(ctx, id)
	if err != nil {
		return models.PopulatedCartPod{}, err
	}
	return s.populate(ctx, pod), nil
}

// List returns all pods with their cart references resolved.
func (s *PodService) List(ctx context.Context) ([]models.PopulatedCartPod, error) {
	pods, err := s.pods.List(ctx)
	if err != nil {
		return nil, err
	}
	populated := make([]models.PopulatedCartPod, len(pods))
	for i, pod := range pods {
		populated[i] = s.populate(ctx, pod)
	}
	return populated, nil
}

// Update applies the patch to a pod the principal owns. Fields omitted from
// the patch are left untouched.
func (s *PodService) Update(ctx context.Context, principal, id primitive.ObjectID, in UpdatePodInput) (models.CartPod, error) {
	pod, err := s.pods.Get(ctx, id)
	if err != nil {
		return models.CartPod{}, err
	}
	if pod.CreatedBy != principal {
		return models.CartPod{}, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.CartPod{}, invalidf("name must not be empty")
		}
		pod.Name = name
	}
	if in.Description != nil {
		pod.Description = strings.TrimSpace(*in.Description)
	}
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return models.CartPod{}, invalidf("invalid location: %v", err)
		}
		pod.Location = *in.Location
	}

	return s.pods.Update(ctx, pod)
}

// Delete removes a pod the principal owns. A pod that still has carts
// attached is rejected so cart back-references can never dangle.
func (s *PodService) Delete(ctx context.Context, principal, id primitive.ObjectID) error {
	pod, err := s.pods.Get(ctx, id)
	if err != nil {
		return err
	}
	if pod.CreatedBy != principal {
		return ErrForbidden
	}
	if len(pod.FoodCarts) > 0 {
		return ErrPodNotEmpty
	}
	return s.pods.Delete(ctx, id)
}

// Nearby returns pods within maxDistanceKm of the center, ordered by
// increasing distance, with cart summaries populated.
func (s *PodService) Nearby(ctx context.Context, lat, lng, maxDistanceKm float64) ([]models.PopulatedCartPod, error) {
	if maxDistanceKm <= 0 {
		return nil, invalidf("maxDistanceKm must be positive")
	}
	center := models.NewPoint(lng, lat)
	if err := center.Validate(); err != nil {
		return nil, invalidf("invalid center point: %v", err)
	}

	pods, err := s.pods.Near(ctx, lng, lat, maxDistanceKm*1000)
	if err != nil {
		return nil, err
	}
	populated := make([]models.PopulatedCartPod, len(pods))
	for i, pod := range pods {
		populated[i] = s.populate(ctx, pod)
	}
	return populated, nil
}

// populate resolves a pod's cart ids to summaries. Dangling references are
// skipped, matching populate semantics; the reconciliation sweep prunes
// them in the background.
func (s *PodService) populate(ctx context.Context, pod models.CartPod) models.PopulatedCartPod {
	summaries := make([]models.FoodCartSummary, 0, len(pod.FoodCarts))
	for _, cartID := range pod.FoodCarts {
		cart, err := s.carts.Get(ctx, cartID)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			logger := logging.Ctx(ctx)
			logger.Warn().Err(err).Str("cart_id", cartID.Hex()).Msg("failed to resolve cart reference")
			continue
		}
		summaries = append(summaries, cart.Summary())
	}
	return models.PopulatedCartPod{CartPod: pod, FoodCarts: summaries}
}
