// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cartatlas/cartatlas/internal/service"
)

// ListPods handles GET /cartpods.
func (h *Handler) ListPods(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	pods, err := h.pods.List(r.Context())
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Success(pods)
}

// GetPod handles GET /cartpods/{id}.
func (h *Handler) GetPod(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	id, err := pathID(r)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	pod, err := h.pods.Get(r.Context(), id)
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Success(pod)
}

// CreatePod handles POST /cartpods.
func (h *Handler) CreatePod(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	user, ok := principal(r)
	if !ok {
		rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var in service.CreatePodInput
	if err := decodeJSON(r, &in); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	pod, err := h.pods.Create(r.Context(), user, in)
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Created(pod)
}

// UpdatePod handles PATCH /cartpods/{id}. Only allow-listed fields are
// accepted; unknown keys fail the decode.
func (h *Handler) UpdatePod(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	user, ok := principal(r)
	if !ok {
		rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	id, err := pathID(r)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	var in service.UpdatePodInput
	if err := decodeJSON(r, &in); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	pod, err := h.pods.Update(r.Context(), user, id, in)
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Success(pod)
}

// DeletePod handles DELETE /cartpods/{id}.
func (h *Handler) DeletePod(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	user, ok := principal(r)
	if !ok {
		rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	id, err := pathID(r)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	if err := h.pods.Delete(r.Context(), user, id); err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.NoContent()
}

// NearbyPods handles GET /cartpods/nearby/{lat}/{lng}/{maxDistanceKm}.
// The distance is given in kilometers and converted to meters for the
// geospatial query.
func (h *Handler) NearbyPods(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	lat, err := strconv.ParseFloat(chi.URLParam(r, "lat"), 64)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "invalid latitude")
		return
	}
	lng, err := strconv.ParseFloat(chi.URLParam(r, "lng"), 64)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "invalid longitude")
		return
	}
	maxKm, err := strconv.ParseFloat(chi.URLParam(r, "maxDistanceKm"), 64)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "invalid maxDistanceKm")
		return
	}

	pods, err := h.pods.Nearby(r.Context(), lat, lng, maxKm)
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Success(pods)
}
