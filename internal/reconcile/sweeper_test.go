// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package reconcile

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/config"
	"github.com/cartatlas/cartatlas/internal/database"
	"github.com/cartatlas/cartatlas/internal/models"
)

func newSweeperFixture() (*Sweeper, *database.MemoryPodStore, *database.MemoryCartStore) {
	pods := database.NewMemoryPodStore()
	carts := database.NewMemoryCartStore()
	sweeper := NewSweeper(pods, carts, config.ReconcileConfig{Interval: time.Minute})
	return sweeper, pods, carts
}

func TestSweepReattachesMissingReference(t *testing.T) {
	sweeper, pods, carts := newSweeperFixture()
	ctx := context.Background()

	pod, _ := pods.Insert(ctx, models.CartPod{Name: "pod", Location: models.NewPoint(-122.4, 37.7)})

	// Simulate a crash between cart insert and pod attach.
	cart, _ := carts.Insert(ctx, models.FoodCart{
		Name:     "orphan",
		CartPod:  pod.ID,
		Location: models.NewPoint(-122.4, 37.7),
	})

	result, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.Reattached != 1 {
		t.Fatalf("reattached = %d, want 1", result.Reattached)
	}

	got, _ := pods.Get(ctx, pod.ID)
	if !got.HasCart(cart.ID) {
		t.Fatal("cart was not reattached to its pod")
	}
}

func TestSweepPrunesDanglingEntry(t *testing.T) {
	sweeper, pods, _ := newSweeperFixture()
	ctx := context.Background()

	pod, _ := pods.Insert(ctx, models.CartPod{Name: "pod", Location: models.NewPoint(-122.4, 37.7)})

	// Simulate a crash between pod detach and cart delete, in reverse:
	// the pod lists a cart that was already deleted.
	ghost := primitive.NewObjectID()
	if err := pods.AttachCart(ctx, pod.ID, ghost); err != nil {
		t.Fatalf("AttachCart: %v", err)
	}

	result, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.Pruned != 1 {
		t.Fatalf("pruned = %d, want 1", result.Pruned)
	}

	got, _ := pods.Get(ctx, pod.ID)
	if got.HasCart(ghost) {
		t.Fatal("ghost cart id was not pruned")
	}
}

func TestSweepReportsDanglingPodReference(t *testing.T) {
	sweeper, _, carts := newSweeperFixture()
	ctx := context.Background()

	if _, err := carts.Insert(ctx, models.FoodCart{
		Name:     "lost",
		CartPod:  primitive.NewObjectID(),
		Location: models.NewPoint(-122.4, 37.7),
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	result, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.Dangling != 1 {
		t.Fatalf("dangling = %d, want 1", result.Dangling)
	}
}

func TestSweepConsistentStateIsNoop(t *testing.T) {
	sweeper, pods, carts := newSweeperFixture()
	ctx := context.Background()

	pod, _ := pods.Insert(ctx, models.CartPod{Name: "pod", Location: models.NewPoint(-122.4, 37.7)})
	cart, _ := carts.Insert(ctx, models.FoodCart{
		Name:     "cart",
		CartPod:  pod.ID,
		Location: models.NewPoint(-122.4, 37.7),
	})
	if err := pods.AttachCart(ctx, pod.ID, cart.ID); err != nil {
		t.Fatalf("AttachCart: %v", err)
	}

	result, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.Reattached != 0 || result.Pruned != 0 || result.Dangling != 0 {
		t.Fatalf("expected no-op sweep, got %+v", result)
	}
}
