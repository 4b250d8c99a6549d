// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package reconcile repairs the denormalized pod/cart relationship.
//
// Cart create and delete are two-write operations with no shared
// transaction, so a crash between the writes can leave a cart missing from
// its pod's foodCarts list, or a pod listing a cart that no longer exists.
// The sweeper runs periodically, re-attaching the former and pruning the
// latter. Both repairs reuse the idempotent attach/detach store operations.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/config"
	"github.com/cartatlas/cartatlas/internal/database"
	"github.com/cartatlas/cartatlas/internal/logging"
	"github.com/cartatlas/cartatlas/internal/metrics"
)

// SweepResult summarizes the repairs made by one sweep.
type SweepResult struct {
	Reattached int // carts re-added to their pod's foodCarts list
	Pruned     int // dangling cart ids removed from pod lists
	Dangling   int // carts whose pod no longer exists (reported, not repaired)
}

// Sweeper periodically reconciles pod/cart references.
type Sweeper struct {
	pods     database.PodStore
	carts    database.CartStore
	interval time.Duration
}

// NewSweeper builds a sweeper from the reconcile config.
func NewSweeper(pods database.PodStore, carts database.CartStore, cfg config.ReconcileConfig) *Sweeper {
	return &Sweeper{pods: pods, carts: carts, interval: cfg.Interval}
}

// Serve runs sweeps on the configured interval until the context ends.
// Implements the supervision tree's service contract.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", s.interval).Msg("reconciliation sweeper started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			result, err := s.Sweep(ctx)
			if err != nil {
				logging.Error().Err(err).Msg("reconciliation sweep failed")
				continue
			}
			if result.Reattached > 0 || result.Pruned > 0 || result.Dangling > 0 {
				logging.Info().
					Int("reattached", result.Reattached).
					Int("pruned", result.Pruned).
					Int("dangling", result.Dangling).
					Msg("reconciliation sweep repaired references")
			}
		}
	}
}

func (s *Sweeper) String() string {
	return "reconcile.Sweeper"
}

// Sweep runs a single reconciliation pass.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	pods, err := s.pods.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list pods: %w", err)
	}
	carts, err := s.carts.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list carts: %w", err)
	}

	podsByID := make(map[primitive.ObjectID]bool, len(pods))
	podHasCart := make(map[primitive.ObjectID]map[primitive.ObjectID]bool, len(pods))
	for _, pod := range pods {
		podsByID[pod.ID] = true
		members := make(map[primitive.ObjectID]bool, len(pod.FoodCarts))
		for _, cartID := range pod.FoodCarts {
			members[cartID] = true
		}
		podHasCart[pod.ID] = members
	}

	cartsByID := make(map[primitive.ObjectID]primitive.ObjectID, len(carts))
	for _, cart := range carts {
		cartsByID[cart.ID] = cart.CartPod
	}

	// Re-attach carts missing from their pod's list.
	for _, cart := range carts {
		if !podsByID[cart.CartPod] {
			result.Dangling++
			logging.Warn().
				Str("cart_id", cart.ID.Hex()).
				Str("pod_id", cart.CartPod.Hex()).
				Msg("cart references a pod that no longer exists")
			continue
		}
		if !podHasCart[cart.CartPod][cart.ID] {
			if err := s.pods.AttachCart(ctx, cart.CartPod, cart.ID); err != nil {
				return result, fmt.Errorf("reattach cart %s: %w", cart.ID.Hex(), err)
			}
			metrics.ReconcileRepairsTotal.WithLabelValues("reattached").Inc()
			result.Reattached++
		}
	}

	// Prune pod entries whose cart is gone or points at a different pod.
	for _, pod := range pods {
		for _, cartID := range pod.FoodCarts {
			owner, exists := cartsByID[cartID]
			if exists && owner == pod.ID {
				continue
			}
			if err := s.pods.DetachCart(ctx, pod.ID, cartID); err != nil {
				return result, fmt.Errorf("prune cart %s from pod %s: %w", cartID.Hex(), pod.ID.Hex(), err)
			}
			metrics.ReconcileRepairsTotal.WithLabelValues("pruned").Inc()
			result.Pruned++
		}
	}

	metrics.ReconcileSweepsTotal.Inc()
	return result, nil
}
