// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

// Package api provides the HTTP layer: chi routing, request decoding, and
// the mapping from service errors to HTTP statuses.
package api

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/cartatlas/cartatlas/internal/logging"
	"github.com/cartatlas/cartatlas/internal/models"
)

// Error codes used in API responses.
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeValidationFailed    = "VALIDATION_ERROR"
	ErrCodePodNotEmpty         = "POD_NOT_EMPTY"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeExternalServiceFail = "EXTERNAL_SERVICE_FAILED"
)

// responder writes standardized API responses.
type responder struct {
	w     http.ResponseWriter
	r     *http.Request
	start time.Time
}

func respond(w http.ResponseWriter, r *http.Request) *responder {
	return &responder{w: w, r: r, start: time.Now()}
}

func (rw *responder) metadata() models.Metadata {
	return models.Metadata{
		Timestamp:   time.Now().UTC(),
		QueryTimeMS: time.Since(rw.start).Milliseconds(),
		RequestID:   logging.RequestIDFromContext(rw.r.Context()),
	}
}

// Success writes a 200 response with data.
func (rw *responder) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: rw.metadata(),
	})
}

// Created writes a 201 response with data.
func (rw *responder) Created(data interface{}) {
	rw.writeJSON(http.StatusCreated, models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: rw.metadata(),
	})
}

// NoContent writes a 204 response.
func (rw *responder) NoContent() {
	rw.w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status.
func (rw *responder) Error(status int, code, message string) {
	rw.ErrorWithDetails(status, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *responder) ErrorWithDetails(status int, code, message string, details interface{}) {
	rw.writeJSON(status, models.APIResponse{
		Status:   "error",
		Metadata: rw.metadata(),
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func (rw *responder) writeJSON(status int, body interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if err := json.NewEncoder(rw.w).Encode(body); err != nil {
		logger := logging.Ctx(rw.r.Context())
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
