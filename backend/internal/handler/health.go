package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mahalaxmi-group/site-api/shared/api"
	"github.com/mahalaxmi-group/site-api/shared/logger"
	"github.com/mahalaxmi-group/site-api/shared/utils"
)

// Health is a liveness probe: 200 whenever the process serves requests.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

// Ready is a readiness probe: 503 while the site mode store is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.siteMode.Ready(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "error", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, api.ErrorResponse{Error: "site mode store unavailable"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}
