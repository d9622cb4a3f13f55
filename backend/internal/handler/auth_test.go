package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mahalaxmi-group/site-api/shared/domain"
	internal_errors "github.com/mahalaxmi-group/site-api/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAuthLogin(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		f := newFixture()
		var gotUser, gotPass string
		f.auth.LoginFunc = func(sess *domain.Session, username string, password domain.Password) error {
			gotUser, gotPass = username, password
			sess.SignIn(time.Now())
			return nil
		}
		rr := httptest.NewRecorder()

		f.handler.AdminAuth(rr, createRequest(t, http.MethodPost, "/admin-auth?action=login",
			[]byte(`{"username":"admin","password":"hunter2"}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Login successful", body["message"])
		assert.Equal(t, "admin", gotUser)
		assert.Equal(t, "hunter2", gotPass)
		assert.True(t, f.sessions.Session.Admin.Authenticated)
		assert.Equal(t, 1, f.sessions.Commits)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		f := newFixture()
		f.auth.LoginFunc = func(sess *domain.Session, username string, password domain.Password) error {
			return internal_errors.Auth("Invalid credentials")
		}
		rr := httptest.NewRecorder()

		f.handler.AdminAuth(rr, createRequest(t, http.MethodPost, "/admin-auth?action=login",
			[]byte(`{"username":"admin","password":"wrong"}`)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, rr)["error"])
	})

	t.Run("malformed body never reaches the service", func(t *testing.T) {
		f := newFixture()
		f.auth.LoginFunc = func(sess *domain.Session, username string, password domain.Password) error {
			t.Fatal("Login must not be called")
			return nil
		}

		for _, body := range []string{``, `[]`, `"admin"`, `{"username":`} {
			rr := httptest.NewRecorder()
			f.handler.AdminAuth(rr, createRequest(t, http.MethodPost, "/admin-auth?action=login", []byte(body)))

			assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
			assert.Equal(t, "Invalid request", decodeBody(t, rr)["error"])
		}
	})

	t.Run("login requires POST", func(t *testing.T) {
		f := newFixture()
		rr := httptest.NewRecorder()

		f.handler.AdminAuth(rr, createRequest(t, http.MethodGet, "/admin-auth?action=login", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Unknown action", decodeBody(t, rr)["error"])
	})
}

func TestAdminAuthLogout(t *testing.T) {
	f := newFixture()
	f.sessions.Session = domain.NewSession("s1", time.Now())
	f.sessions.Session.SignIn(time.Now())
	var destroyed bool
	f.sessions.CommitFunc = func(w http.ResponseWriter, sess *domain.Session) error {
		destroyed = sess.Destroyed()
		sess.MarkCommitted()
		return nil
	}
	rr := httptest.NewRecorder()

	f.handler.AdminAuth(rr, createRequest(t, http.MethodPost, "/admin-auth?action=logout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Logged out", body["message"])
	assert.True(t, destroyed)
	assert.False(t, f.sessions.Session.Admin.Authenticated)
}

func TestAdminAuthCheck(t *testing.T) {
	for _, authenticated := range []bool{true, false} {
		f := newFixture()
		f.auth.CheckSessionFunc = func(sess *domain.Session) bool { return authenticated }
		rr := httptest.NewRecorder()

		f.handler.AdminAuth(rr, createRequest(t, http.MethodGet, "/admin-auth?action=check", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, authenticated, decodeBody(t, rr)["authenticated"])
	}
}

func TestAdminAuthDispatch(t *testing.T) {
	t.Run("OPTIONS short-circuits with 204", func(t *testing.T) {
		f := newFixture()
		rr := httptest.NewRecorder()

		f.handler.AdminAuth(rr, createRequest(t, http.MethodOptions, "/admin-auth?action=login", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Zero(t, f.sessions.Commits)
	})

	t.Run("unknown or missing action", func(t *testing.T) {
		f := newFixture()
		for _, url := range []string{"/admin-auth", "/admin-auth?action=delete"} {
			rr := httptest.NewRecorder()
			f.handler.AdminAuth(rr, createRequest(t, http.MethodPost, url, nil))

			assert.Equal(t, http.StatusBadRequest, rr.Code, url)
			assert.Equal(t, "Unknown action", decodeBody(t, rr)["error"])
		}
	})
}
