// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package auth

import (
	"context"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/logging"
	"github.com/cartatlas/cartatlas/internal/models"
)

type contextKey string

const userIDKey contextKey = "auth_user_id"

// UserIDFromContext returns the authenticated user's id, if any.
func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return id, ok
}

// ContextWithUserID stores the authenticated user's id, for tests and
// internal callers.
func ContextWithUserID(ctx context.Context, id primitive.ObjectID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// Middleware authenticates requests with a Bearer token and stores the
// resulting user id in the request context.
func (m *JWTManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		claims, err := m.ValidateToken(token)
		if err != nil {
			logger := logging.Ctx(r.Context())
			logger.Debug().Err(err).Msg("token validation failed")
			unauthorized(w, "invalid or expired token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status: "error",
		Error:  &models.APIError{Code: "UNAUTHORIZED", Message: message},
	})
}
