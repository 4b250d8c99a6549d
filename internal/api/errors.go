// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package api

import (
	"errors"
	"net/http"

	"github.com/cartatlas/cartatlas/internal/database"
	"github.com/cartatlas/cartatlas/internal/images"
	"github.com/cartatlas/cartatlas/internal/logging"
	"github.com/cartatlas/cartatlas/internal/service"
	"github.com/cartatlas/cartatlas/internal/validation"
)

// writeServiceError maps domain errors to HTTP responses. Every resource
// operation returns a typed result or a typed failure; nothing surfaces as
// an unhandled crash.
func (rw *responder) writeServiceError(err error) {
	var validationErr *validation.RequestValidationError
	if errors.As(err, &validationErr) {
		apiErr := validationErr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, apiErr.Message, apiErr.Details)
		return
	}

	var invalidErr *service.InvalidInputError
	if errors.As(err, &invalidErr) {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, invalidErr.Message)
		return
	}

	var batchErr *images.BatchError
	if errors.As(err, &batchErr) {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, batchErr.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrPodNotEmpty):
		rw.Error(http.StatusBadRequest, ErrCodePodNotEmpty, "cart pod still has food carts; delete them first")
	case errors.Is(err, service.ErrForbidden):
		rw.Error(http.StatusForbidden, ErrCodeForbidden, "you do not own this resource")
	case errors.Is(err, database.ErrNotFound):
		rw.Error(http.StatusNotFound, ErrCodeNotFound, "resource not found")
	case errors.Is(err, images.ErrUnavailable):
		rw.Error(http.StatusBadGateway, ErrCodeExternalServiceFail, "image store unavailable")
	default:
		logger := logging.Ctx(rw.r.Context())
		logger.Error().Err(err).Msg("unhandled service error")
		rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "an internal error occurred")
	}
}
