// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package mailer

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/config"
	"github.com/cartatlas/cartatlas/internal/models"
)

func TestNewSMTPNotifierDisabled(t *testing.T) {
	n, err := NewSMTPNotifier(config.MailConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewSMTPNotifier: %v", err)
	}
	if _, ok := n.(NoopNotifier); !ok {
		t.Fatalf("disabled config returned %T, want NoopNotifier", n)
	}
}

func TestRenderNewCart(t *testing.T) {
	cart := models.FoodCart{
		ID:         primitive.NewObjectID(),
		Name:       "Nong's Khao Man Gai",
		FoodServed: []string{"Thai", "Chicken and Rice"},
	}
	pod := models.CartPod{Name: "Hawthorne Asylum"}

	body, err := renderNewCart("https://cartatlas.example", pod, cart)
	if err != nil {
		t.Fatalf("renderNewCart: %v", err)
	}

	for _, want := range []string{
		"Hawthorne Asylum",
		"Nong&#39;s Khao Man Gai",
		"Thai, Chicken and Rice",
		"https://cartatlas.example/foodcart/" + cart.ID.Hex(),
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderNewCartEscapesHTML(t *testing.T) {
	cart := models.FoodCart{
		ID:   primitive.NewObjectID(),
		Name: "<script>alert(1)</script>",
	}
	body, err := renderNewCart("https://cartatlas.example", models.CartPod{Name: "pod"}, cart)
	if err != nil {
		t.Fatalf("renderNewCart: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatal("cart name was not HTML-escaped")
	}
}
