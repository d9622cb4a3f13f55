package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mahalaxmi-group/site-api/backend/internal/utils/jwt"
	"github.com/mahalaxmi-group/site-api/shared/config"
	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/mahalaxmi-group/site-api/shared/logger"
)

// Manager loads the session named by the request cookie and persists it back.
type Manager struct {
	store      *Store
	tokens     *jwt.Jwt
	cookieName string
	sameSite   http.SameSite
	secure     bool
	now        func() time.Time
}

func NewManager(store *Store, tokens *jwt.Jwt, cfg config.Session, secure bool) *Manager {
	return &Manager{
		store:      store,
		tokens:     tokens,
		cookieName: cfg.CookieName,
		sameSite:   parseSameSite(cfg.SameSite),
		secure:     secure,
		now:        time.Now,
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Load never fails: a missing, forged or expired cookie yields a fresh anonymous session.
func (m *Manager) Load(r *http.Request) *domain.Session {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		if sid, err := m.tokens.DecodeToken(cookie.Value); err == nil {
			if sess, ok := m.store.Get(sid); ok {
				return sess
			}
		}
	}
	return domain.NewSession(uuid.NewString(), m.now())
}

// Commit must run before the response body is written since it may set a cookie.
// Untouched sessions are left alone so anonymous traffic never fills the store.
func (m *Manager) Commit(w http.ResponseWriter, sess *domain.Session) error {
	defer sess.MarkCommitted()

	switch {
	case sess.Destroyed():
		m.store.Delete(sess.Id)
		m.expireCookie(w)
		return nil
	case !sess.Modified():
		return nil
	}

	if sess.RenewRequested() {
		m.store.Delete(sess.Id)
		sess.Id = uuid.NewString()
	}

	token, err := m.tokens.NewToken(sess.Id, m.now())
	if err != nil {
		logger.Log.Error("failed to sign session cookie", "error", err)
		return err
	}
	m.store.Save(sess)
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	})
	return nil
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	})
}
