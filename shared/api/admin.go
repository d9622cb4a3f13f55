package api

import "github.com/mahalaxmi-group/site-api/shared/domain"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SetModeRequest struct {
	Mode string `json:"mode"`
}

type ModeResponse struct {
	Mode domain.Mode `json:"mode"`
}

type SetModeResponse struct {
	Success bool        `json:"success"`
	Mode    domain.Mode `json:"mode"`
	Message string      `json:"message"`
}

type CheckSessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
