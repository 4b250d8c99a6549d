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
	"github.com/cartatlas/cartatlas/internal/mailer"
	"github.com/cartatlas/cartatlas/internal/models"
	"github.com/cartatlas/cartatlas/internal/validation"
)

// CartService implements food cart operations.
type CartService struct {
	carts    database.CartStore
	pods     database.PodStore
	notifier mailer.Notifier
}

// NewCartService wires the cart service to its stores and the notifier.
func NewCartService(carts database.CartStore, pods database.PodStore, notifier mailer.Notifier) *CartService {
	return &CartService{carts: carts, pods: pods, notifier: notifier}
}

// CreateCartInput carries the fields a client may set on a new cart.
// ImageURLs holds already-uploaded image URLs in submission order; slot
// assignment is positional (see assignImageSlots).
type CreateCartInput struct {
	Name       string              `json:"name" validate:"required"`
	CartPodID  primitive.ObjectID  `json:"cartPodId" validate:"required"`
	Location   models.GeoJSONPoint `json:"location" validate:"geopoint"`
	FoodServed []string            `json:"foodServed" validate:"required,min=1,dive,required"`
	ImageURLs  []string            `json:"-"`
}

// UpdateCartInput is the patch allow-list for carts. The pod reference is
// absent: pod transfer is unsupported, and createdBy is never patchable.
// Image slots may be patched directly with already-hosted URLs; freshly
// uploaded files arrive through ImageURLs and take precedence.
type UpdateCartInput struct {
	Name           *string              `json:"name"`
	Location       *models.GeoJSONPoint `json:"location"`
	FoodServed     *[]string            `json:"foodServed"`
	Image          *string              `json:"image"`
	MenuImages     *[]string            `json:"menuImages"`
	SpecialsImages *[]string            `json:"specialsImages"`
	ImageURLs      []string             `json:"-"`
}

// Create validates and persists a new cart, then registers it with its pod.
//
// The insert and the attach are two separate writes with no shared
// transaction. Attach is idempotent and a failure is only logged; the
// reconciliation sweep repairs the missing reference afterwards.
func (s *CartService) Create(ctx context.Context, principal primitive.ObjectID, in CreateCartInput) (models.FoodCart, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.FoodServed = trimAll(in.FoodServed)
	if err := validation.ValidateStruct(&in); err != nil {
		return models.FoodCart{}, err
	}
	if len(in.ImageURLs) == 0 {
		return models.FoodCart{}, invalidf("at least one image is required")
	}

	pod, err := s.pods.Get(ctx, in.CartPodID)
	if errors.Is(err, database.ErrNotFound) {
		return models.FoodCart{}, invalidf("cart pod %s does not exist", in.CartPodID.Hex())
	}
	if err != nil {
		return models.FoodCart{}, err
	}

	cart := models.FoodCart{
		Name:       in.Name,
		CartPod:    pod.ID,
		Location:   in.Location,
		FoodServed: in.FoodServed,
		CreatedBy:  principal,
	}
	assignImageSlots(&cart, in.ImageURLs)

	cart, err = s.carts.Insert(ctx, cart)
	if err != nil {
		return models.FoodCart{}, err
	}

	if err := s.pods.AttachCart(ctx, pod.ID, cart.ID); err != nil {
		logger := logging.Ctx(ctx)
		logger.Warn().
			Err(err).
			Str("pod_id", pod.ID.Hex()).
			Str("cart_id", cart.ID.Hex()).
			Msg("cart created but pod attach failed, reconciliation will repair")
	}

	go s.notifier.NotifyNewCart(context.WithoutCancel(ctx), pod, cart)

	return cart, nil
}

// Get returns a cart with its pod back-reference resolved. A dangling pod
// reference yields a nil pod detail, not an error.
func (s *CartService) Get(ctx context.Context, id primitive.ObjectID) (models.PopulatedFoodCart, error) {
	cart, err := s.carts.Get(ctx, id)
	if err != nil {
		return models.PopulatedFoodCart{}, err
	}

	populated := models.PopulatedFoodCart{FoodCart: cart}
	pod, err := s.pods.Get(ctx, cart.CartPod)
	if err == nil {
		populated.Pod = &pod
	} else if !errors.Is(err, database.ErrNotFound) {
		logger := logging.Ctx(ctx)
		logger.Warn().Err(err).Str("pod_id", cart.CartPod.Hex()).Msg("failed to resolve pod reference")
	}
	return populated, nil
}

// List returns all carts.
func (s *CartService) List(ctx context.Context) ([]models.FoodCart, error) {
	return s.carts.List(ctx)
}

// Update applies the patch to a cart the principal owns. New image URLs
// replace the cart's image slots wholesale; foodServed is a full
// replacement, never a merge.
func (s *CartService) Update(ctx context.Context, principal, id primitive.ObjectID, in UpdateCartInput) (models.FoodCart, error) {
	cart, err := s.carts.Get(ctx, id)
	if err != nil {
		return models.FoodCart{}, err
	}
	if cart.CreatedBy != principal {
		return models.FoodCart{}, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.FoodCart{}, invalidf("name must not be empty")
		}
		cart.Name = name
	}
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return models.FoodCart{}, invalidf("invalid location: %v", err)
		}
		cart.Location = *in.Location
	}
	if in.FoodServed != nil {
		served := trimAll(*in.FoodServed)
		if len(served) == 0 {
			return models.FoodCart{}, invalidf("foodServed must not be empty")
		}
		cart.FoodServed = served
	}
	if in.Image != nil {
		cart.Image = strings.TrimSpace(*in.Image)
	}
	if in.MenuImages != nil {
		cart.MenuImages = trimAll(*in.MenuImages)
	}
	if in.SpecialsImages != nil {
		cart.SpecialsImages = trimAll(*in.SpecialsImages)
	}
	if len(in.ImageURLs) > 0 {
		assignImageSlots(&cart, in.ImageURLs)
	}
	if cart.Image == "" && len(cart.MenuImages) == 0 && len(cart.SpecialsImages) == 0 {
		return models.FoodCart{}, invalidf("cart must keep at least one image")
	}

	return s.carts.Update(ctx, cart)
}

// Delete removes a cart the principal owns, detaching it from its pod
// first. Detach tolerates a missing pod so deletion stays robust against
// earlier partial failures.
func (s *CartService) Delete(ctx context.Context, principal, id primitive.ObjectID) error {
	cart, err := s.carts.Get(ctx, id)
	if err != nil {
		return err
	}
	if cart.CreatedBy != principal {
		return ErrForbidden
	}

	if err := s.pods.DetachCart(ctx, cart.CartPod, id); err != nil {
		return err
	}
	return s.carts.Delete(ctx, id)
}

// AddRating appends a rating by the principal and persists the cart with a
// freshly computed average. Any authenticated principal may rate; there is
// no ownership check here on purpose.
func (s *CartService) AddRating(ctx context.Context, principal, id primitive.ObjectID, rating int, review string) (models.FoodCart, error) {
	if !validation.ValidRating(float64(rating)) {
		return models.FoodCart{}, invalidf("rating must be an integer between 1 and 5")
	}

	cart, err := s.carts.Get(ctx, id)
	if err != nil {
		return models.FoodCart{}, err
	}

	cart.Ratings = append(cart.Ratings, models.Rating{
		Rating: rating,
		Review: strings.TrimSpace(review),
		User:   principal,
	})
	return s.carts.Update(ctx, cart)
}

// Search returns carts whose foodServed contains the substring,
// case-insensitively.
func (s *CartService) Search(ctx context.Context, foodType string) ([]models.FoodCart, error) {
	foodType = strings.TrimSpace(foodType)
	if foodType == "" {
		return nil, invalidf("foodType must not be empty")
	}
	return s.carts.SearchByFoodType(ctx, foodType)
}

// assignImageSlots maps uploaded URLs to the cart's image fields by
// position: 0 is the primary image, 1 through 5 are menu images, 6 and
// beyond are specials.
func assignImageSlots(cart *models.FoodCart, urls []string) {
	cart.Image = urls[0]
	cart.MenuImages = []string{}
	cart.SpecialsImages = []string{}
	if len(urls) > 1 {
		end := len(urls)
		if end > 6 {
			end = 6
		}
		cart.MenuImages = append(cart.MenuImages, urls[1:end]...)
	}
	if len(urls) > 6 {
		cart.SpecialsImages = append(cart.SpecialsImages, urls[6:]...)
	}
}

func trimAll(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			trimmed = append(trimmed, v)
		}
	}
	return trimmed
}
