// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cartatlas/config.yaml",
	"/etc/cartatlas/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are applied
// first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5002,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "foodcartfinder",
			ConnectTimeout: 10 * time.Second,
		},
		Cloudinary: CloudinaryConfig{
			Folder: "foodcarts",
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			RateLimitReqs:     100,
			RateLimitMutReqs:  30,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Upload: UploadConfig{
			MaxFiles:    10,
			MaxFileSize: 5 << 20, // 5MB, matching the public upload contract
		},
		Reconcile: ReconcileConfig{
			Enabled:  true,
			Interval: 5 * time.Minute,
		},
		Mail: MailConfig{
			Enabled:   false,
			Port:      587,
			From:      "noreply@cartatlas.example",
			ClientURL: "http://localhost:3000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds configuration from layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// MONGO_URI -> mongo.uri, SERVER_PORT -> server.port,
	// SECURITY_JWT_SECRET -> security.jwt_secret
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// configSections are the recognized top-level config keys. An environment
// variable maps into a section only when its first underscore-delimited token
// matches one of these; everything else is ignored so unrelated process
// environment does not leak into the config tree.
var configSections = []string{
	"server", "mongo", "cloudinary", "security", "upload",
	"reconcile", "mail", "logging",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
//	MONGO_URI              -> mongo.uri
//	CLOUDINARY_API_SECRET  -> cloudinary.api_secret
//	SECURITY_JWT_SECRET    -> security.jwt_secret
func envTransformFunc(key string) string {
	lower := strings.ToLower(key)
	for _, section := range configSections {
		if strings.HasPrefix(lower, section+"_") {
			return section + "." + strings.TrimPrefix(lower, section+"_")
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as plain strings from environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values into string
// slices for the registered slice paths.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw := k.Get(path)
		s, ok := raw.(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				values = append(values, trimmed)
			}
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
