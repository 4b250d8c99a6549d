// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package main is the entry point for the CartAtlas server.
//
// CartAtlas is a REST backend for discovering food carts: geolocated cart
// pods, the carts parked at them, their menus, images, and ratings. Pods
// and carts live in MongoDB with 2dsphere indexes for nearby queries;
// images are stored in Cloudinary behind a circuit breaker.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered config (defaults, YAML file, env vars)
//  2. Logging: zerolog, json or console format
//  3. Database: MongoDB connection with geospatial index creation
//  4. Image store: Cloudinary wrapped in a circuit breaker
//  5. Services: pod and cart business logic, SMTP notification mail
//  6. Supervision: suture tree running the HTTP server and the
//     pod/cart reference reconciliation sweeper
//
// The server shuts down gracefully on SIGINT and SIGTERM, draining HTTP
// connections within server.shutdown_timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cartatlas/cartatlas/internal/api"
	"github.com/cartatlas/cartatlas/internal/auth"
	"github.com/cartatlas/cartatlas/internal/config"
	"github.com/cartatlas/cartatlas/internal/database"
	"github.com/cartatlas/cartatlas/internal/images"
	"github.com/cartatlas/cartatlas/internal/logging"
	"github.com/cartatlas/cartatlas/internal/mailer"
	"github.com/cartatlas/cartatlas/internal/reconcile"
	"github.com/cartatlas/cartatlas/internal/service"
	"github.com/cartatlas/cartatlas/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	cloudinary, err := images.NewCloudinaryStore(cfg.Cloudinary)
	if err != nil {
		return fmt.Errorf("image store: %w", err)
	}
	uploader := images.NewBatchUploader(images.NewBreakerStore(cloudinary), cfg.Upload)

	jwt, err := auth.NewJWTManager(cfg.Security)
	if err != nil {
		return err
	}

	notifier, err := mailer.NewSMTPNotifier(cfg.Mail)
	if err != nil {
		return fmt.Errorf("mail notifier: %w", err)
	}

	podSvc := service.NewPodService(db.Pods, db.Carts)
	cartSvc := service.NewCartService(db.Carts, db.Pods, notifier)

	handler := api.NewHandler(podSvc, cartSvc, uploader, db)
	router := api.NewRouter(handler, jwt, cfg.Security)

	slogger := slog.New(logging.NewSlogHandler())
	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(slogger, treeCfg)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	if cfg.Reconcile.Enabled {
		tree.AddBackgroundService(reconcile.NewSweeper(db.Pods, db.Carts, cfg.Reconcile))
	}

	logging.Info().
		Str("addr", addr).
		Bool("reconcile", cfg.Reconcile.Enabled).
		Msg("cartatlas listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("shutdown complete")
	return nil
}
