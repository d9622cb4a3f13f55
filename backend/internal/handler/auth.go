package handler

import (
	"net/http"

	"github.com/mahalaxmi-group/site-api/shared/api"
	"github.com/mahalaxmi-group/site-api/shared/errors"
	"github.com/mahalaxmi-group/site-api/shared/utils"
)

const maxAdminBodyBytes = 4 << 10

func unknownAction() error {
	return errors.ClientInput("Unknown action")
}

// AdminAuth dispatches ?action=login|logout|check. Any other action, or login without POST, is a 400.
func (h *Handler) AdminAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.Preflight(w, r)
		return
	}

	switch action := r.URL.Query().Get("action"); {
	case action == "login" && r.Method == http.MethodPost:
		h.login(w, r)
	case action == "logout":
		h.logout(w, r)
	case action == "check":
		h.checkSession(w, r)
	default:
		utils.WriteErrorAndStatusCode(w, unknownAction())
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)

	var req api.LoginRequest
	body := http.MaxBytesReader(w, r.Body, maxAdminBodyBytes)
	if err := utils.DecodeObject(body, &req, "Invalid request"); err != nil {
		h.fail(w, sess, err)
		return
	}

	if err := h.auth.Login(sess, req.Username, req.Password); err != nil {
		h.fail(w, sess, err)
		return
	}

	h.respond(w, sess, http.StatusOK, api.SuccessResponse{Success: true, Message: "Login successful"})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	h.auth.Logout(sess)
	h.respond(w, sess, http.StatusOK, api.SuccessResponse{Success: true, Message: "Logged out"})
}

func (h *Handler) checkSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	authenticated := h.auth.CheckSession(sess)
	h.respond(w, sess, http.StatusOK, api.CheckSessionResponse{Authenticated: authenticated})
}
