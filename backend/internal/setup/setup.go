package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/mahalaxmi-group/site-api/backend/internal/handler"
	"github.com/mahalaxmi-group/site-api/backend/internal/service"
	"github.com/mahalaxmi-group/site-api/backend/internal/session"
	"github.com/mahalaxmi-group/site-api/backend/internal/storage/fs"
	"github.com/mahalaxmi-group/site-api/backend/internal/storage/pg"
	"github.com/mahalaxmi-group/site-api/backend/internal/utils/dns"
	"github.com/mahalaxmi-group/site-api/backend/internal/utils/email"
	"github.com/mahalaxmi-group/site-api/backend/internal/utils/jwt"
	"github.com/mahalaxmi-group/site-api/shared/config"
	"github.com/mahalaxmi-group/site-api/shared/logger"
	"github.com/mahalaxmi-group/site-api/shared/middleware/ratelimiter"
)

const dnsTimeout = 3 * time.Second

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config       *config.Config
	Handler      *handler.Handler
	Sessions     *session.Store
	LoginLimiter *ratelimiter.KeyedRateLimiter
	ModeStore    service.ModeStore

	closers []func() error
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg}

	modeStore, err := deps.newModeStore(ctx)
	if err != nil {
		return nil, err
	}
	deps.ModeStore = modeStore

	recipients := service.NewRecipientDirectory(cfg.Public.Recipients, cfg.Public.Mail.FallbackRecipient)
	if recipients.Empty() {
		logger.Log.Warn("no recipients configured, contact form will reject submissions")
	}

	contact := service.NewContact(newMailer(cfg), dns.New(nil, dnsTimeout), recipients, &cfg.Public)
	auth := service.NewAuth(cfg.Private.Admin, &cfg.Public)
	siteMode := service.NewSiteMode(modeStore, auth)

	deps.Sessions = session.NewStore(cfg.Public.Session.IdleTTL)
	sessions := session.NewManager(deps.Sessions, jwt.New(cfg.SessionSecret()), cfg.Public.Session, cfg.Public.SecureCookies)

	limit := cfg.Public.LoginRateLimit
	deps.LoginLimiter = ratelimiter.New(limit.Rate, limit.Burst, limit.Expiration)
	deps.closers = append(deps.closers, func() error {
		deps.LoginLimiter.Stop()
		return nil
	})

	deps.Handler = handler.New(contact, auth, siteMode, sessions, cfg)
	return deps, nil
}

func (d *Dependencies) newModeStore(ctx context.Context) (service.ModeStore, error) {
	switch driver := d.Config.Public.SiteMode.Driver; driver {
	case "fs":
		return fs.New(d.Config.Public.SiteMode.File), nil
	case "pg":
		storage, err := pg.New(ctx, d.Config)
		if err != nil {
			return nil, fmt.Errorf("site mode store: %w", err)
		}
		d.closers = append(d.closers, storage.Cleanup)
		return storage, nil
	default:
		return nil, fmt.Errorf("unknown site_mode driver %q", driver)
	}
}

func newMailer(cfg *config.Config) service.Mailer {
	if cfg.Public.Mail.Driver == "log" {
		logger.Log.Warn("mail driver is 'log', inquiries will not be delivered")
		return email.Log{}
	}
	return email.New(cfg.Public.Mail, cfg.Private.SMTP)
}

// Close releases everything SetupDependencies opened, newest first.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.Log.Error("failed to release dependency", "error", err)
		}
	}
}
