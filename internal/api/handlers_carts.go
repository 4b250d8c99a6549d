// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cartatlas/cartatlas/internal/models"
	"github.com/cartatlas/cartatlas/internal/service"
)

// ListCarts handles GET /foodcarts.
func (h *Handler) ListCarts(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	carts, err := h.carts.List(r.Context())
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Success(carts)
}

// GetCart handles GET /foodcarts/{id}.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	id, err := pathID(r)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	cart, err := h.carts.Get(r.Context(), id)
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Success(cart)
}

// CreateCart handles POST /foodcarts. The request is multipart: scalar
// fields arrive as form values (location and foodServed as JSON strings),
// images as file parts. An already-hosted URL may be supplied in the
// "image" field instead of a file.
func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	user, ok := principal(r)
	if !ok {
		rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart form")
		return
	}

	podID, err := primitive.ObjectIDFromHex(r.FormValue("cartPodId"))
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "invalid cartPodId")
		return
	}

	var location models.GeoJSONPoint
	if err := json.Unmarshal([]byte(r.FormValue("location")), &location); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "location must be a GeoJSON point")
		return
	}
	var foodServed []string
	if err := json.Unmarshal([]byte(r.FormValue("foodServed")), &foodServed); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "foodServed must be a JSON array of strings")
		return
	}

	urls, err := h.uploadedURLs(r, r.MultipartForm.File["images"])
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	if imageURL := r.FormValue("image"); imageURL != "" {
		urls = append([]string{imageURL}, urls...)
	}

	cart, err := h.carts.Create(r.Context(), user, service.CreateCartInput{
		Name:       r.FormValue("name"),
		CartPodID:  podID,
		Location:   location,
		FoodServed: foodServed,
		ImageURLs:  urls,
	})
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Created(cart)
}

// UpdateCart handles PATCH /foodcarts/{id}. Multipart like create, but
// every field is optional; new image files replace the image slots.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
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
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart form")
		return
	}

	var in service.UpdateCartInput
	if values, ok := r.MultipartForm.Value["name"]; ok && len(values) > 0 {
		in.Name = &values[0]
	}
	if values, ok := r.MultipartForm.Value["location"]; ok && len(values) > 0 {
		var location models.GeoJSONPoint
		if err := json.Unmarshal([]byte(values[0]), &location); err != nil {
			rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "location must be a GeoJSON point")
			return
		}
		in.Location = &location
	}
	if values, ok := r.MultipartForm.Value["foodServed"]; ok && len(values) > 0 {
		var foodServed []string
		if err := json.Unmarshal([]byte(values[0]), &foodServed); err != nil {
			rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "foodServed must be a JSON array of strings")
			return
		}
		in.FoodServed = &foodServed
	}
	if values, ok := r.MultipartForm.Value["image"]; ok && len(values) > 0 {
		in.Image = &values[0]
	}
	if values, ok := r.MultipartForm.Value["menuImages"]; ok && len(values) > 0 {
		var urls []string
		if err := json.Unmarshal([]byte(values[0]), &urls); err != nil {
			rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "menuImages must be a JSON array of strings")
			return
		}
		in.MenuImages = &urls
	}
	if values, ok := r.MultipartForm.Value["specialsImages"]; ok && len(values) > 0 {
		var urls []string
		if err := json.Unmarshal([]byte(values[0]), &urls); err != nil {
			rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "specialsImages must be a JSON array of strings")
			return
		}
		in.SpecialsImages = &urls
	}

	urls, err := h.uploadedURLs(r, r.MultipartForm.File["images"])
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	in.ImageURLs = urls

	cart, err := h.carts.Update(r.Context(), user, id, in)
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Success(cart)
}

// DeleteCart handles DELETE /foodcarts/{id}.
func (h *Handler) DeleteCart(w http.ResponseWriter, r *http.Request) {
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

	if err := h.carts.Delete(r.Context(), user, id); err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.NoContent()
}

// addRatingRequest is the body of POST /foodcarts/{id}/ratings.
type addRatingRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// AddRating handles POST /foodcarts/{id}/ratings. Any authenticated user
// may rate; ownership is not required.
func (h *Handler) AddRating(w http.ResponseWriter, r *http.Request) {
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

	var req addRatingRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	cart, err := h.carts.AddRating(r.Context(), user, id, req.Rating, req.Review)
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Created(cart)
}

// SearchCarts handles GET /foodcarts/search/{foodType}.
func (h *Handler) SearchCarts(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	carts, err := h.carts.Search(r.Context(), chi.URLParam(r, "foodType"))
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	rw.Success(carts)
}
