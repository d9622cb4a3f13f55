package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalPublic = `
mail:
  driver: log
  from_address: noreply@example.com
recipients:
  general: info@example.com
  chemicals: chemicals@example.com
`

const minimalPrivate = `
session_secret: "0123456789abcdef0123456789abcdef"
admin:
  username: admin
  password_hash: "$2a$10$abcdefghijklmnopqrstuv"
`

func writeConfig(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	if private != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	}
	return dir
}

func TestMustLoad(t *testing.T) {
	t.Run("loads files and applies defaults", func(t *testing.T) {
		dir := writeConfig(t, minimalPublic, minimalPrivate)

		cfg := MustLoad(dir)

		assert.Equal(t, "chemicals@example.com", cfg.Public.Recipients["chemicals"])
		assert.Equal(t, "admin", cfg.Private.Admin.Username)
		assert.Equal(t, 30*time.Second, cfg.Public.Contact.RateLimitWindow)
		assert.Equal(t, 3*time.Second, cfg.Public.Contact.MinFillTime)
		assert.Equal(t, 4*time.Hour, cfg.Public.Admin.SessionTTL)
		assert.Equal(t, time.Second, cfg.Public.Admin.FailedLoginDelay)
		assert.Equal(t, "fs", cfg.Public.SiteMode.Driver)
		assert.Equal(t, DefaultFallbackRecipient, cfg.Public.Mail.FallbackRecipient)
		assert.Equal(t, "Mahalaxmi Website", cfg.Public.Mail.FromName)
	})

	t.Run("parses durations from yaml", func(t *testing.T) {
		public := minimalPublic + "contact:\n  min_fill_time: 5s\nadmin:\n  session_ttl: 2h\n"
		dir := writeConfig(t, public, minimalPrivate)

		cfg := MustLoad(dir)

		assert.Equal(t, 5*time.Second, cfg.Public.Contact.MinFillTime)
		assert.Equal(t, 2*time.Hour, cfg.Public.Admin.SessionTTL)
	})

	t.Run("negative min_fill_time is kept so the check can be disabled", func(t *testing.T) {
		public := minimalPublic + "contact:\n  min_fill_time: -1s\n"
		dir := writeConfig(t, public, minimalPrivate)

		cfg := MustLoad(dir)

		assert.Equal(t, -time.Second, cfg.Public.Contact.MinFillTime)
	})

	t.Run("environment overrides private values", func(t *testing.T) {
		dir := writeConfig(t, minimalPublic, minimalPrivate)
		t.Setenv("SITE_ADMIN_USERNAME", "operator")
		t.Setenv("SITE_SMTP_PASSWORD", "from-env")

		cfg := MustLoad(dir)

		assert.Equal(t, "operator", cfg.Private.Admin.Username)
		assert.Equal(t, "from-env", cfg.Private.SMTP.Password)
	})

	t.Run("secrets can come from the environment alone", func(t *testing.T) {
		dir := writeConfig(t, minimalPublic, "")
		t.Setenv("SITE_SESSION_SECRET", "env-secret")
		t.Setenv("SITE_ADMIN_USERNAME", "admin")
		t.Setenv("SITE_ADMIN_PASSWORD_HASH", "$2a$10$hash")

		cfg := MustLoad(dir)

		assert.Equal(t, []byte("env-secret"), cfg.SessionSecret())
	})

	t.Run("panics when public.yaml is missing", func(t *testing.T) {
		assert.Panics(t, func() { MustLoad(t.TempDir()) })
	})

	t.Run("panics when required secrets are missing", func(t *testing.T) {
		dir := writeConfig(t, minimalPublic, "session_secret: x\n")
		assert.PanicsWithValue(t,
			"missing required config values: admin.username, admin.password_hash",
			func() { MustLoad(dir) })
	})

	t.Run("smtp driver requires a server", func(t *testing.T) {
		public := "mail:\n  from_address: noreply@example.com\n"
		dir := writeConfig(t, public, minimalPrivate)
		assert.Panics(t, func() { MustLoad(dir) })
	})
}
