// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package api

import (
	"net/http"
)

// uploadResponse is the body of a successful POST /upload.
type uploadResponse struct {
	URLs []string `json:"urls"`
}

// Upload handles POST /upload: a standalone multipart image batch upload
// returning the stored URLs, for clients that upload before creating a
// cart.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart form")
		return
	}

	urls, err := h.uploadedURLs(r, r.MultipartForm.File["images"])
	if err != nil {
		rw.writeServiceError(err)
		return
	}
	if len(urls) == 0 {
		rw.Error(http.StatusBadRequest, ErrCodeBadRequest, "no files in upload")
		return
	}
	rw.Success(uploadResponse{URLs: urls})
}
