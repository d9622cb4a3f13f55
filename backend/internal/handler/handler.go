package handler

import (
	"net/http"

	"github.com/mahalaxmi-group/site-api/backend/internal/service"
	"github.com/mahalaxmi-group/site-api/shared/config"
	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/mahalaxmi-group/site-api/shared/errors"
	"github.com/mahalaxmi-group/site-api/shared/utils"
)

type SessionManager interface {
	Load(r *http.Request) *domain.Session
	Commit(w http.ResponseWriter, sess *domain.Session) error
}

type Handler struct {
	contact  service.ContactService
	auth     service.AuthService
	siteMode service.SiteModeService
	sessions SessionManager
	cfg      *config.Config
}

func New(contact service.ContactService, auth service.AuthService, siteMode service.SiteModeService, sessions SessionManager, cfg *config.Config) *Handler {
	return &Handler{
		contact:  contact,
		auth:     auth,
		siteMode: siteMode,
		sessions: sessions,
		cfg:      cfg,
	}
}

// respond persists the session before anything is written, since committing may set a cookie.
func (h *Handler) respond(w http.ResponseWriter, sess *domain.Session, status int, v any) {
	if err := h.sessions.Commit(w, sess); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, status, v)
}

func (h *Handler) fail(w http.ResponseWriter, sess *domain.Session, err error) {
	if commitErr := h.sessions.Commit(w, sess); commitErr != nil {
		utils.WriteErrorAndStatusCode(w, commitErr)
		return
	}
	utils.WriteErrorAndStatusCode(w, err)
}

// Preflight answers CORS preflight requests; the allow headers come from the cors middleware.
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.WriteErrorAndStatusCode(w, errors.MethodNotAllowed())
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{Message: "Not found", StatusCode: http.StatusNotFound})
}
