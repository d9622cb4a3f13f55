package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is prepended to every secret overridable from the environment,
// e.g. SITE_ADMIN_PASSWORD_HASH or SITE_SMTP_PASSWORD.
const envPrefix = "site"

// DefaultFallbackRecipient receives inquiries when neither the form type nor "general" is mapped.
const DefaultFallbackRecipient = "info@themahalaxmigroup.com"

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Addr           string            `yaml:"addr"`
	LogLevel       string            `yaml:"log_level"`
	LogJSON        bool              `yaml:"log_json"`
	SecureCookies  bool              `yaml:"secure_cookies"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	SiteName       string            `yaml:"site_name"`
	Recipients     map[string]string `yaml:"recipients"` // form_type -> mailbox
	Contact        Contact           `yaml:"contact"`
	Mail           Mail              `yaml:"mail"`
	SiteMode       SiteMode          `yaml:"site_mode"`
	Session        Session           `yaml:"session"`
	Admin          Admin             `yaml:"admin"`
	LoginRateLimit RateLimit         `yaml:"login_rate_limit"`
}

type Contact struct {
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	MinFillTime     time.Duration `yaml:"min_fill_time"` // submissions faster than this are treated as bots; negative disables
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type Mail struct {
	Driver            string `yaml:"driver"` // "smtp" or "log"
	SMTPServer        string `yaml:"smtp_server"`
	SMTPPort          int    `yaml:"smtp_port"`
	TLS               string `yaml:"tls"`     // "implicit", "starttls" or "none"; empty picks by port
	Timeout           int    `yaml:"timeout"` // seconds
	FromAddress       string `yaml:"from_address"`
	FromName          string `yaml:"from_name"`
	FallbackRecipient string `yaml:"fallback_recipient"`
	Mailer            string `yaml:"x_mailer"`
}

type SiteMode struct {
	Driver string `yaml:"driver"` // "fs" or "pg"
	File   string `yaml:"file"`
}

type Session struct {
	CookieName string        `yaml:"cookie_name"`
	SameSite   string        `yaml:"same_site"` // lax, strict or none
	IdleTTL    time.Duration `yaml:"idle_ttl"`
	GCInterval time.Duration `yaml:"gc_interval"`
}

type Admin struct {
	SessionTTL       time.Duration `yaml:"session_ttl"`
	FailedLoginDelay time.Duration `yaml:"failed_login_delay"`
}

type RateLimit struct {
	Rate       float64       `yaml:"rate"` // tokens per second
	Burst      float64       `yaml:"burst"`
	Expiration time.Duration `yaml:"expiration"`
}

type Private struct {
	Admin         Credentials `yaml:"admin" envconfig:"admin"`
	SessionSecret string      `yaml:"session_secret" envconfig:"session_secret"`
	SMTP          SMTPAuth    `yaml:"smtp" envconfig:"smtp"`
	Pg            Pg          `yaml:"pg" envconfig:"pg"`
}

type Credentials struct {
	Username     string `yaml:"username" envconfig:"username"`
	PasswordHash string `yaml:"password_hash" envconfig:"password_hash"` // bcrypt
}

type SMTPAuth struct {
	Username string `yaml:"username" envconfig:"username"`
	Password string `yaml:"password" envconfig:"password"`
}

type Pg struct {
	Host     string `yaml:"host" envconfig:"host"`
	Port     int    `yaml:"port" envconfig:"port"`
	User     string `yaml:"user" envconfig:"user"`
	Password string `yaml:"password" envconfig:"password"`
	Dbname   string `yaml:"dbname" envconfig:"dbname"`
}

func (c *Config) SessionSecret() []byte {
	return []byte(c.Private.SessionSecret)
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file " + configPath + ": " + err.Error())
	}
}

// MustLoad reads public.yaml (required) and private.yaml (optional) from configFolder,
// then overlays secrets from the environment and from configFolder/.env when present.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(filepath.Join(configFolder, "public.yaml"), &public)

	var private Private
	privatePath := filepath.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &private)
	}

	// godotenv never overrides variables that are already set
	_ = godotenv.Load(filepath.Join(configFolder, ".env"))
	if err := envconfig.Process(envPrefix, &private); err != nil {
		panic("can't read secrets from environment: " + err.Error())
	}

	cfg := &Config{Public: public, Private: private}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

// ApplyDefaults fills every zero-valued tunable.
func (c *Config) ApplyDefaults() {
	p := &c.Public
	if p.Addr == "" {
		p.Addr = ":8080"
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.SiteName == "" {
		p.SiteName = "Mahalaxmi"
	}
	if p.Contact.RateLimitWindow == 0 {
		p.Contact.RateLimitWindow = 30 * time.Second
	}
	if p.Contact.MinFillTime == 0 {
		p.Contact.MinFillTime = 3 * time.Second
	}
	if p.Contact.MaxBodyBytes == 0 {
		p.Contact.MaxBodyBytes = 64 << 10
	}
	if p.Mail.Driver == "" {
		p.Mail.Driver = "smtp"
	}
	if p.Mail.SMTPPort == 0 {
		p.Mail.SMTPPort = 587
	}
	if p.Mail.Timeout == 0 {
		p.Mail.Timeout = 10
	}
	if p.Mail.FromName == "" {
		p.Mail.FromName = p.SiteName + " Website"
	}
	if p.Mail.FallbackRecipient == "" {
		p.Mail.FallbackRecipient = DefaultFallbackRecipient
	}
	if p.Mail.Mailer == "" {
		p.Mail.Mailer = "SiteAPI/1.0"
	}
	if p.SiteMode.Driver == "" {
		p.SiteMode.Driver = "fs"
	}
	if p.SiteMode.File == "" {
		p.SiteMode.File = "data/site-mode.json"
	}
	if p.Session.CookieName == "" {
		p.Session.CookieName = "site_session"
	}
	if p.Session.SameSite == "" {
		p.Session.SameSite = "lax"
	}
	if p.Session.IdleTTL == 0 {
		p.Session.IdleTTL = 24 * time.Hour
	}
	if p.Session.GCInterval == 0 {
		p.Session.GCInterval = 10 * time.Minute
	}
	if p.Admin.SessionTTL == 0 {
		p.Admin.SessionTTL = 4 * time.Hour
	}
	if p.Admin.FailedLoginDelay == 0 {
		p.Admin.FailedLoginDelay = time.Second
	}
	if p.LoginRateLimit.Rate == 0 {
		p.LoginRateLimit.Rate = 1
	}
	if p.LoginRateLimit.Burst == 0 {
		p.LoginRateLimit.Burst = 5
	}
	if p.LoginRateLimit.Expiration == 0 {
		p.LoginRateLimit.Expiration = time.Hour
	}
}

type missingFieldsError []string

func (e missingFieldsError) Error() string {
	return "missing required config values: " + strings.Join(e, ", ")
}

// Validate reports every required value that is still empty after loading.
func (c *Config) Validate() error {
	var missing missingFieldsError
	if c.Private.SessionSecret == "" {
		missing = append(missing, "session_secret")
	}
	if c.Private.Admin.Username == "" {
		missing = append(missing, "admin.username")
	}
	if c.Private.Admin.PasswordHash == "" {
		missing = append(missing, "admin.password_hash")
	}
	if c.Public.Mail.FromAddress == "" {
		missing = append(missing, "mail.from_address")
	}
	if c.Public.Mail.Driver == "smtp" && c.Public.Mail.SMTPServer == "" {
		missing = append(missing, "mail.smtp_server")
	}
	if c.Public.SiteMode.Driver == "pg" && c.Private.Pg.Host == "" {
		missing = append(missing, "pg.host")
	}
	if len(missing) > 0 {
		return missing
	}
	return nil
}
