package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mahalaxmi-group/site-api/shared/domain"
	internal_errors "github.com/mahalaxmi-group/site-api/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitContact(t *testing.T) {
	t.Run("passes body and request metadata to the service", func(t *testing.T) {
		f := newFixture()
		var gotMeta domain.RequestMeta
		var gotBody string
		f.contact.SubmitFunc = func(ctx context.Context, sess *domain.Session, body io.Reader, meta domain.RequestMeta) (*domain.SubmitResult, error) {
			raw, err := io.ReadAll(body)
			require.NoError(t, err)
			gotBody = string(raw)
			gotMeta = meta
			sess.RecordSubmit(sess.CreatedAt)
			return &domain.SubmitResult{Delivered: true, Message: "Thank you! Your message has been sent successfully."}, nil
		}

		req := createRequest(t, http.MethodPost, "/contact", []byte(`{"name":"Asha"}`))
		req.RemoteAddr = "203.0.113.9:51234"
		req.Header.Set("User-Agent", "test-agent/1.0")
		rr := httptest.NewRecorder()

		f.handler.SubmitContact(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Thank you! Your message has been sent successfully.", body["message"])
		assert.Equal(t, `{"name":"Asha"}`, gotBody)
		assert.Equal(t, "203.0.113.9", gotMeta.IP)
		assert.Equal(t, "test-agent/1.0", gotMeta.UserAgent)
		assert.Equal(t, 1, f.sessions.Commits)
	})

	t.Run("renders service errors with their status", func(t *testing.T) {
		f := newFixture()
		f.contact.SubmitFunc = func(ctx context.Context, sess *domain.Session, body io.Reader, meta domain.RequestMeta) (*domain.SubmitResult, error) {
			return nil, internal_errors.RateLimited(12)
		}
		rr := httptest.NewRecorder()

		f.handler.SubmitContact(rr, createRequest(t, http.MethodPost, "/contact", []byte(`{}`)))

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "12", rr.Header().Get("Retry-After"))
		body := decodeBody(t, rr)
		assert.Equal(t, "Please wait 12 seconds before submitting again.", body["error"])
		assert.EqualValues(t, 12, body["retry_after"])
		assert.Equal(t, 1, f.sessions.Commits, "session is committed on failures too")
	})

	t.Run("validation details are listed", func(t *testing.T) {
		f := newFixture()
		f.contact.SubmitFunc = func(ctx context.Context, sess *domain.Session, body io.Reader, meta domain.RequestMeta) (*domain.SubmitResult, error) {
			return nil, internal_errors.Validation([]string{"Name is required", "Invalid email address"})
		}
		rr := httptest.NewRecorder()

		f.handler.SubmitContact(rr, createRequest(t, http.MethodPost, "/contact", []byte(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "Name is required. Invalid email address", body["error"])
		assert.Equal(t, []any{"Name is required", "Invalid email address"}, body["errors"])
	})

	t.Run("untyped errors never leak", func(t *testing.T) {
		f := newFixture()
		f.contact.SubmitFunc = func(ctx context.Context, sess *domain.Session, body io.Reader, meta domain.RequestMeta) (*domain.SubmitResult, error) {
			return nil, errors.New("smtp: 535 secret detail")
		}
		rr := httptest.NewRecorder()

		f.handler.SubmitContact(rr, createRequest(t, http.MethodPost, "/contact", []byte(`{}`)))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Internal server error", decodeBody(t, rr)["error"])
		assert.NotContains(t, rr.Body.String(), "secret")
	})

	t.Run("commit failure is reported instead of the success body", func(t *testing.T) {
		f := newFixture()
		f.sessions.CommitFunc = func(w http.ResponseWriter, sess *domain.Session) error {
			return errors.New("store unavailable")
		}
		rr := httptest.NewRecorder()

		f.handler.SubmitContact(rr, createRequest(t, http.MethodPost, "/contact", []byte(`{}`)))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "success")
	})

	t.Run("body is capped at the configured size", func(t *testing.T) {
		f := newFixture()
		f.handler.cfg.Public.Contact.MaxBodyBytes = 8
		f.contact.SubmitFunc = func(ctx context.Context, sess *domain.Session, body io.Reader, meta domain.RequestMeta) (*domain.SubmitResult, error) {
			_, err := io.ReadAll(body)
			require.Error(t, err)
			return nil, internal_errors.ClientInput("Invalid request format")
		}
		rr := httptest.NewRecorder()

		f.handler.SubmitContact(rr, createRequest(t, http.MethodPost, "/contact", []byte(`{"name":"far too long"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
