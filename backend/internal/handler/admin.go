package handler

import (
	"fmt"
	"net/http"

	"github.com/mahalaxmi-group/site-api/shared/api"
	"github.com/mahalaxmi-group/site-api/shared/logger"
	"github.com/mahalaxmi-group/site-api/shared/utils"
)

// AdminAPI dispatches ?action=get_mode (public) and ?action=set_mode (POST, admin only).
func (h *Handler) AdminAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.Preflight(w, r)
		return
	}

	switch action := r.URL.Query().Get("action"); {
	case action == "get_mode":
		h.getMode(w, r)
	case action == "set_mode" && r.Method == http.MethodPost:
		h.setMode(w, r)
	default:
		utils.WriteErrorAndStatusCode(w, unknownAction())
	}
}

func (h *Handler) getMode(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.ModeResponse{Mode: h.siteMode.Get(r.Context())})
}

func (h *Handler) setMode(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)

	// An unreadable body leaves Mode empty, which the service rejects after the auth check
	var req api.SetModeRequest
	body := http.MaxBytesReader(w, r.Body, maxAdminBodyBytes)
	if err := utils.DecodeObject(body, &req, "Invalid request"); err != nil {
		logger.Log.Debug("set_mode body rejected", "error", err)
		req.Mode = ""
	}

	record, err := h.siteMode.Set(r.Context(), sess, req.Mode)
	if err != nil {
		h.fail(w, sess, err)
		return
	}

	h.respond(w, sess, http.StatusOK, api.SetModeResponse{
		Success: true,
		Mode:    record.Mode,
		Message: fmt.Sprintf("Site mode updated to: %s", record.Mode),
	})
}
