package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mahalaxmi-group/site-api/backend/internal/setup"
	mw "github.com/mahalaxmi-group/site-api/shared/middleware"
	"github.com/mahalaxmi-group/site-api/shared/middleware/metrics"
)

const preflightMaxAge = 86400

// New creates and configures a new chi router with all the routes.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	h := deps.Handler
	public := deps.Config.Public

	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeaders(public.SecureCookies))
	r.Use(chimw.Compress(5))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	// Contact form is anonymous: no credentials cross origins
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowOriginFunc:    allowOrigins(public.AllowedOrigins),
			AllowedMethods:     []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders:     []string{"Content-Type"},
			MaxAge:             preflightMaxAge,
			OptionsPassthrough: true,
		}))
		r.Post("/contact-form", h.SubmitContact)
		r.Options("/contact-form", h.Preflight)
	})

	// Admin endpoints rely on the session cookie
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowOriginFunc:    allowOrigins(public.AllowedOrigins),
			AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:     []string{"Content-Type"},
			AllowCredentials:   true,
			MaxAge:             preflightMaxAge,
			OptionsPassthrough: true,
		}))
		r.HandleFunc("/admin-api", h.AdminAPI)
		r.With(onAction("login", mw.RateLimitByIP(deps.LoginLimiter))).HandleFunc("/admin-auth", h.AdminAuth)
	})

	return r
}

// allowOrigins matches exactly; an empty list admits no origin at all.
func allowOrigins(origins []string) func(r *http.Request, origin string) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(_ *http.Request, origin string) bool {
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}

// onAction applies limiter only to requests whose ?action= equals action.
func onAction(action string, limiter func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodOptions && r.URL.Query().Get("action") == action {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
