package service

import (
	"github.com/mahalaxmi-group/site-api/shared/middleware/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeDelivered     = "delivered"
	outcomeRateLimited   = "rate_limited"
	outcomeMisconfigured = "misconfigured"
	outcomeInvalid       = "invalid"
	outcomeHoneypot      = "honeypot"
	outcomeTooFast       = "too_fast"
	outcomeFailed        = "failed"

	loginSuccess = "success"
	loginFailure = "failure"
)

var (
	contactSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by outcome",
		},
		[]string{"outcome"},
	)

	adminLoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "admin_login_attempts_total",
			Help:      "Admin login attempts by result",
		},
		[]string{"result"},
	)

	siteModeChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "site_mode_changes_total",
			Help:      "Successful site mode updates by new mode",
		},
		[]string{"mode"},
	)
)
