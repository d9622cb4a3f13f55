package handler

import (
	"net/http"

	"github.com/mahalaxmi-group/site-api/shared/api"
	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/mahalaxmi-group/site-api/shared/logger"
	"github.com/mahalaxmi-group/site-api/shared/utils"
)

func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)

	ip, err := utils.GetIP(r)
	if err != nil {
		logger.Log.Warn("could not determine client ip", "remote_addr", r.RemoteAddr)
	}
	meta := domain.RequestMeta{IP: ip, UserAgent: r.UserAgent()}

	body := http.MaxBytesReader(w, r.Body, h.cfg.Public.Contact.MaxBodyBytes)
	result, err := h.contact.Submit(r.Context(), sess, body, meta)
	if err != nil {
		h.fail(w, sess, err)
		return
	}

	h.respond(w, sess, http.StatusOK, api.SuccessResponse{Success: true, Message: result.Message})
}
