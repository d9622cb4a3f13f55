package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/mahalaxmi-group/site-api/shared/api"
	"github.com/mahalaxmi-group/site-api/shared/errors"
	"github.com/mahalaxmi-group/site-api/shared/logger"
)

const internalErrorMessage = "Internal server error"

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"` + internalErrorMessage + `"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// WriteErrorAndStatusCode renders err as {"error": ...}.
// Errors without a status code never leak their text and become a generic 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	e, ok := errors.As(err)
	if !ok {
		logger.Log.Error("unhandled error", "error", err)
		WriteJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: internalErrorMessage})
		return
	}
	if e.StatusCode == http.StatusTooManyRequests && e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	WriteJSON(w, e.StatusCode, api.ErrorResponse{
		Error:      e.Message,
		RetryAfter: e.RetryAfter,
		Errors:     e.Details,
	})
}

// GetIP extracts the client IP from RemoteAddr.
// Forwarding headers are not trusted: the service is exposed directly.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}

// DecodeObject decodes a JSON object into body.
// Anything that is not a single object (arrays, scalars, null, trailing data) is rejected
// with badRequest so callers can keep their own user-facing wording.
func DecodeObject(r io.Reader, body any, badRequest string) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		logger.Log.Debug("failed to read body", "error", err)
		return errors.ClientInput(badRequest)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return errors.ClientInput(badRequest)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return errors.ClientInput(badRequest)
	}
	if dec.More() {
		return errors.ClientInput(badRequest)
	}
	return nil
}
