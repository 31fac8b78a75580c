package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vaughan-dsouza/notes/internal/store"
	"github.com/vaughan-dsouza/notes/internal/utils"
)

type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// Healthz reports whether the database answers a ping.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
