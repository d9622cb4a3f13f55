package service

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/mahalaxmi-group/site-api/shared/config"
	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/mahalaxmi-group/site-api/shared/errors"
	"github.com/mahalaxmi-group/site-api/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(sess *domain.Session, username string, password domain.Password) error
	Logout(sess *domain.Session)
	CheckSession(sess *domain.Session) bool
}

// Auth guards the single configured admin account.
type Auth struct {
	username     string
	passwordHash []byte
	sessionTTL   time.Duration
	failedDelay  time.Duration
	now          func() time.Time
	sleep        func(time.Duration)
}

func NewAuth(creds config.Credentials, cfg *config.Public) *Auth {
	return &Auth{
		username:     creds.Username,
		passwordHash: []byte(creds.PasswordHash),
		sessionTTL:   cfg.Admin.SessionTTL,
		failedDelay:  cfg.Admin.FailedLoginDelay,
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// Login authenticates sess on a match. A mismatch blocks for the failed-login delay before
// returning 401 so scripted guessing stays slow.
func (a *Auth) Login(sess *domain.Session, username string, password domain.Password) error {
	username = strings.TrimSpace(username)

	// Both checks always run so the response time does not reveal which one failed
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil

	if !userOK || !passOK {
		adminLoginAttempts.WithLabelValues(loginFailure).Inc()
		logger.Log.Warn("admin login failed")
		a.sleep(a.failedDelay)
		return errors.Auth("Invalid credentials")
	}

	sess.SignIn(a.now())
	adminLoginAttempts.WithLabelValues(loginSuccess).Inc()
	logger.Log.Info("admin logged in")
	return nil
}

func (a *Auth) Logout(sess *domain.Session) {
	sess.Destroy()
}

// CheckSession reports whether sess holds a live admin login.
// An expired login destroys the whole session.
func (a *Auth) CheckSession(sess *domain.Session) bool {
	if !sess.Admin.Authenticated {
		return false
	}
	if a.now().Sub(sess.Admin.LoginAt) > a.sessionTTL {
		logger.Log.Info("admin session expired", "login_at", sess.Admin.LoginAt)
		sess.Destroy()
		return false
	}
	return true
}
