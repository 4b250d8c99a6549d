// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cartatlas/cartatlas/internal/config"
	"github.com/cartatlas/cartatlas/internal/logging"
)

const (
	podCollection  = "cartpods"
	cartCollection = "foodcarts"
)

// Mongo wraps the MongoDB client and exposes the two document stores.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	Pods   *MongoPodStore
	Carts  *MongoCartStore
}

// Connect establishes the MongoDB connection, verifies it with a ping, and
// ensures the 2dsphere indexes both collections need for Near queries.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	m := &Mongo{
		client: client,
		db:     db,
		Pods:   &MongoPodStore{coll: db.Collection(podCollection)},
		Carts:  &MongoCartStore{coll: db.Collection(cartCollection)},
	}

	if err := m.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	logging.Info().Str("database", cfg.Database).Msg("mongodb connected")
	return m, nil
}

// ensureIndexes creates the geospatial indexes. CreateOne is idempotent when
// the index already exists with the same options.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{Keys: bson.D{{Key: "location", Value: "2dsphere"}}}
	for _, coll := range []*mongo.Collection{
		m.db.Collection(podCollection),
		m.db.Collection(cartCollection),
	} {
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create 2dsphere index on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Ping verifies the connection is still alive, for health checks.
func (m *Mongo) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.client.Ping(pingCtx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
