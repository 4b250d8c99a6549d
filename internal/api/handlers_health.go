// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package api

import (
	"net/http"
)

// Healthz handles GET /healthz. Reports the database connection state.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	status := map[string]string{"status": "ok", "database": "up"}
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "down"
			rw.writeJSON(http.StatusServiceUnavailable, status)
			return
		}
	}
	rw.writeJSON(http.StatusOK, status)
}
