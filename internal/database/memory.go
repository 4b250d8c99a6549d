// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package database

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/models"
)

// MemoryPodStore is an in-memory PodStore used by tests and local
// development. It mirrors the Mongo store's contract, including
// distance-ordered Near results and no-op attach/detach on missing pods.
type MemoryPodStore struct {
	mu   sync.RWMutex
	pods map[primitive.ObjectID]models.CartPod
}

// NewMemoryPodStore creates an empty in-memory pod store.
func NewMemoryPodStore() *MemoryPodStore {
	return &MemoryPodStore{pods: make(map[primitive.ObjectID]models.CartPod)}
}

func (s *MemoryPodStore) Insert(_ context.Context, pod models.CartPod) (models.CartPod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	pod.ID = primitive.NewObjectID()
	pod.CreatedAt = now
	pod.UpdatedAt = now
	if pod.FoodCarts == nil {
		pod.FoodCarts = []primitive.ObjectID{}
	}
	s.pods[pod.ID] = clonePod(pod)
	return pod, nil
}

func (s *MemoryPodStore) Get(_ context.Context, id primitive.ObjectID) (models.CartPod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pod, ok := s.pods[id]
	if !ok {
		return models.CartPod{}, ErrNotFound
	}
	return clonePod(pod), nil
}

func (s *MemoryPodStore) List(_ context.Context) ([]models.CartPod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pods := make([]models.CartPod, 0, len(s.pods))
	for _, pod := range s.pods {
		pods = append(pods, clonePod(pod))
	}
	sort.Slice(pods, func(i, j int) bool { return pods[i].CreatedAt.Before(pods[j].CreatedAt) })
	return pods, nil
}

func (s *MemoryPodStore) Update(_ context.Context, pod models.CartPod) (models.CartPod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pods[pod.ID]; !ok {
		return models.CartPod{}, ErrNotFound
	}
	pod.UpdatedAt = time.Now().UTC()
	s.pods[pod.ID] = clonePod(pod)
	return pod, nil
}

func (s *MemoryPodStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pods[id]; !ok {
		return ErrNotFound
	}
	delete(s.pods, id)
	return nil
}

func (s *MemoryPodStore) Near(_ context.Context, lng, lat, maxMeters float64) ([]models.CartPod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type podDistance struct {
		pod      models.CartPod
		distance float64
	}
	var matches []podDistance
	for _, pod := range s.pods {
		d := haversineMeters(lat, lng, pod.Location.Latitude(), pod.Location.Longitude())
		if d <= maxMeters {
			matches = append(matches, podDistance{pod: clonePod(pod), distance: d})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].distance < matches[j].distance })

	pods := make([]models.CartPod, len(matches))
	for i, m := range matches {
		pods[i] = m.pod
	}
	return pods, nil
}

func (s *MemoryPodStore) AttachCart(_ context.Context, podID, cartID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pod, ok := s.pods[podID]
	if !ok {
		return nil
	}
	if pod.HasCart(cartID) {
		return nil
	}
	pod.FoodCarts = append(pod.FoodCarts, cartID)
	pod.UpdatedAt = time.Now().UTC()
	s.pods[podID] = pod
	return nil
}

func (s *MemoryPodStore) DetachCart(_ context.Context, podID, cartID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pod, ok := s.pods[podID]
	if !ok {
		return nil
	}
	carts := pod.FoodCarts[:0]
	for _, id := range pod.FoodCarts {
		if id != cartID {
			carts = append(carts, id)
		}
	}
	pod.FoodCarts = carts
	pod.UpdatedAt = time.Now().UTC()
	s.pods[podID] = pod
	return nil
}

// MemoryCartStore is an in-memory CartStore used by tests.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[primitive.ObjectID]models.FoodCart
}

// NewMemoryCartStore creates an empty in-memory cart store.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[primitive.ObjectID]models.FoodCart)}
}

func (s *MemoryCartStore) Insert(_ context.Context, cart models.FoodCart) (models.FoodCart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
	s.carts[cart.ID] = cloneCart(cart)
	return cart, nil
}

func (s *MemoryCartStore) Get(_ context.Context, id primitive.ObjectID) (models.FoodCart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[id]
	if !ok {
		return models.FoodCart{}, ErrNotFound
	}
	return cloneCart(cart), nil
}

func (s *MemoryCartStore) List(_ context.Context) ([]models.FoodCart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	carts := make([]models.FoodCart, 0, len(s.carts))
	for _, cart := range s.carts {
		carts = append(carts, cloneCart(cart))
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].CreatedAt.Before(carts[j].CreatedAt) })
	return carts, nil
}

func (s *MemoryCartStore) Update(_ context.Context, cart models.FoodCart) (models.FoodCart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[cart.ID]; !ok {
		return models.FoodCart{}, ErrNotFound
	}
	cart.UpdatedAt = time.Now().UTC()
	cart.RecalculateAverageRating()
	s.carts[cart.ID] = cloneCart(cart)
	return cart, nil
}

func (s *MemoryCartStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[id]; !ok {
		return ErrNotFound
	}
	delete(s.carts, id)
	return nil
}

func (s *MemoryCartStore) ListByPod(_ context.Context, podID primitive.ObjectID) ([]models.FoodCart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var carts []models.FoodCart
	for _, cart := range s.carts {
		if cart.CartPod == podID {
			carts = append(carts, cloneCart(cart))
		}
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].CreatedAt.Before(carts[j].CreatedAt) })
	return carts, nil
}

func (s *MemoryCartStore) SearchByFoodType(_ context.Context, substring string) ([]models.FoodCart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(substring)
	var carts []models.FoodCart
	for _, cart := range s.carts {
		for _, food := range cart.FoodServed {
			if strings.Contains(strings.ToLower(food), needle) {
				carts = append(carts, cloneCart(cart))
				break
			}
		}
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].CreatedAt.Before(carts[j].CreatedAt) })
	return carts, nil
}

const earthRadiusMeters = 6371000

// haversineMeters approximates the great-circle distance between two points.
// Close enough to the 2dsphere behavior for the radii the API serves.
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

func clonePod(pod models.CartPod) models.CartPod {
	pod.FoodCarts = append([]primitive.ObjectID(nil), pod.FoodCarts...)
	pod.Location.Coordinates = append([]float64(nil), pod.Location.Coordinates...)
	return pod
}

func cloneCart(cart models.FoodCart) models.FoodCart {
	cart.MenuImages = append([]string(nil), cart.MenuImages...)
	cart.SpecialsImages = append([]string(nil), cart.SpecialsImages...)
	cart.FoodServed = append([]string(nil), cart.FoodServed...)
	cart.Ratings = append([]models.Rating(nil), cart.Ratings...)
	cart.Location.Coordinates = append([]float64(nil), cart.Location.Coordinates...)
	return cart
}
