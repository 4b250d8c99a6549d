// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package config provides layered configuration for CartAtlas using Koanf v2.
//
// Precedence, lowest to highest: built-in defaults, optional YAML config file,
// environment variables. Environment variable names map to nested paths:
// MONGO_URI -> mongo.uri, SERVER_PORT -> server.port, and so on.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the CartAtlas server.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Mongo      MongoConfig      `koanf:"mongo"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary"`
	Security   SecurityConfig   `koanf:"security"`
	Upload     UploadConfig     `koanf:"upload"`
	Reconcile  ReconcileConfig  `koanf:"reconcile"`
	Mail       MailConfig       `koanf:"mail"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MongoConfig holds document store settings.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// CloudinaryConfig holds image store credentials. Passed explicitly into the
// image store constructor; never read from ambient process state elsewhere.
type CloudinaryConfig struct {
	CloudName string `koanf:"cloud_name"`
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
	Folder    string `koanf:"folder"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitMutReqs  int           `koanf:"rate_limit_mut_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// UploadConfig bounds multipart image uploads.
type UploadConfig struct {
	MaxFiles    int   `koanf:"max_files"`
	MaxFileSize int64 `koanf:"max_file_size"`
}

// ReconcileConfig controls the pod/cart reference reconciliation sweeper.
type ReconcileConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// MailConfig holds SMTP settings for best-effort notification mail.
// Notifications are disabled when Host is empty.
type MailConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
	From      string `koanf:"from"`
	NotifyTo  string `koanf:"notify_to"`
	ClientURL string `koanf:"client_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for fatal misconfiguration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database is required")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if c.Upload.MaxFiles < 1 {
		return fmt.Errorf("upload.max_files must be positive, got %d", c.Upload.MaxFiles)
	}
	if c.Upload.MaxFileSize < 1 {
		return fmt.Errorf("upload.max_file_size must be positive, got %d", c.Upload.MaxFileSize)
	}
	if c.Reconcile.Enabled && c.Reconcile.Interval < time.Second {
		return fmt.Errorf("reconcile.interval must be at least 1s, got %s", c.Reconcile.Interval)
	}
	if c.Mail.Enabled && c.Mail.Host == "" {
		return fmt.Errorf("mail.host is required when mail.enabled is true")
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
