// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults with secret",
			mutate: func(*Config) {},
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "" },
			wantErr: "jwt_secret",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "short" },
			wantErr: "at least 32",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "missing mongo uri",
			mutate:  func(c *Config) { c.Mongo.URI = "" },
			wantErr: "mongo.uri",
		},
		{
			name:    "missing mongo database",
			mutate:  func(c *Config) { c.Mongo.Database = "" },
			wantErr: "mongo.database",
		},
		{
			name:    "zero upload files",
			mutate:  func(c *Config) { c.Upload.MaxFiles = 0 },
			wantErr: "upload.max_files",
		},
		{
			name: "reconcile interval too small",
			mutate: func(c *Config) {
				c.Reconcile.Enabled = true
				c.Reconcile.Interval = 100 * time.Millisecond
			},
			wantErr: "reconcile.interval",
		},
		{
			name: "mail enabled without host",
			mutate: func(c *Config) {
				c.Mail.Enabled = true
				c.Mail.Host = ""
			},
			wantErr: "mail.host",
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"MONGO_URI", "mongo.uri"},
		{"MONGO_CONNECT_TIMEOUT", "mongo.connect_timeout"},
		{"SERVER_PORT", "server.port"},
		{"SECURITY_JWT_SECRET", "security.jwt_secret"},
		{"CLOUDINARY_API_SECRET", "cloudinary.api_secret"},
		{"UPLOAD_MAX_FILE_SIZE", "upload.max_file_size"},
		{"PATH", ""},
		{"HOME", ""},
		{"MONGODB", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 8080\nsecurity:\n  jwt_secret: " + testSecret + "\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("MONGO_DATABASE", "cartatlas_test")
	t.Setenv("SECURITY_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("file override not applied: port = %d", cfg.Server.Port)
	}
	if cfg.Mongo.Database != "cartatlas_test" {
		t.Errorf("env override not applied: database = %q", cfg.Mongo.Database)
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("default not preserved: uri = %q", cfg.Mongo.URI)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("cors origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("cors origins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}
