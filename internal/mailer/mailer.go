// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package mailer sends notification mail when a new food cart joins a pod.
// Delivery is best-effort: a mail failure is logged and never surfaces to
// the API caller.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/cartatlas/cartatlas/internal/config"
	"github.com/cartatlas/cartatlas/internal/logging"
	"github.com/cartatlas/cartatlas/internal/models"
)

// Notifier announces new food carts.
type Notifier interface {
	NotifyNewCart(ctx context.Context, pod models.CartPod, cart models.FoodCart)
}

// NoopNotifier discards notifications. Used when mail is disabled.
type NoopNotifier struct{}

func (NoopNotifier) NotifyNewCart(context.Context, models.CartPod, models.FoodCart) {}

var newCartTemplate = template.Must(template.New("newcart").Parse(`<h1>New Food Cart Added</h1>
<p>A new food cart has been added to the cart pod "{{.PodName}}":</p>
<p><strong>{{.CartName}}</strong></p>
<p>Food served: {{.FoodServed}}</p>
<p>You can view the details by clicking the link below:</p>
<p><a href="{{.DetailURL}}">View Food Cart Details</a></p>
<p>Best regards,<br>The CartAtlas Team</p>
`))

// SMTPNotifier delivers notifications over SMTP.
type SMTPNotifier struct {
	client    *mail.Client
	from      string
	to        string
	clientURL string
}

// NewSMTPNotifier builds a notifier from mail config. Returns a NoopNotifier
// when mail is disabled so callers never need a nil check.
func NewSMTPNotifier(cfg config.MailConfig) (Notifier, error) {
	if !cfg.Enabled {
		return NoopNotifier{}, nil
	}

	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}

	return &SMTPNotifier{
		client:    client,
		from:      cfg.From,
		to:        cfg.NotifyTo,
		clientURL: cfg.ClientURL,
	}, nil
}

// NotifyNewCart sends the new-cart announcement. Errors are logged, not
// returned.
func (n *SMTPNotifier) NotifyNewCart(ctx context.Context, pod models.CartPod, cart models.FoodCart) {
	body, err := renderNewCart(n.clientURL, pod, cart)
	if err != nil {
		logger := logging.Ctx(ctx)
		logger.Error().Err(err).Msg("failed to render notification mail")
		return
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		logger := logging.Ctx(ctx)
		logger.Error().Err(err).Msg("invalid mail sender")
		return
	}
	if err := msg.To(n.to); err != nil {
		logger := logging.Ctx(ctx)
		logger.Error().Err(err).Msg("invalid mail recipient")
		return
	}
	msg.Subject("New Food Cart Added to Your Cart Pod")
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		logger := logging.Ctx(ctx)
		logger.Warn().
			Err(err).
			Str("cart_id", cart.ID.Hex()).
			Msg("failed to send new cart notification")
		return
	}
	logger := logging.Ctx(ctx)
	logger.Debug().Str("cart_id", cart.ID.Hex()).Msg("new cart notification sent")
}

func renderNewCart(clientURL string, pod models.CartPod, cart models.FoodCart) (string, error) {
	var buf bytes.Buffer
	err := newCartTemplate.Execute(&buf, map[string]string{
		"PodName":    pod.Name,
		"CartName":   cart.Name,
		"FoodServed": strings.Join(cart.FoodServed, ", "),
		"DetailURL":  fmt.Sprintf("%s/foodcart/%s", clientURL, cart.ID.Hex()),
	})
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}
