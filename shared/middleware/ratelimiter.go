package middleware

import (
	"math"
	"net/http"

	"github.com/mahalaxmi-group/site-api/shared/errors"
	"github.com/mahalaxmi-group/site-api/shared/logger"
	"github.com/mahalaxmi-group/site-api/shared/middleware/ratelimiter"
	"github.com/mahalaxmi-group/site-api/shared/utils"
)

const throttledMessage = "Rate limit exceeded, try again later"

// RateLimit rejects requests whose identity has exhausted its bucket with a JSON 429.
func RateLimit(rl *ratelimiter.KeyedRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				logger.Log.Warn("rate limit identity unavailable", "error", err)
				utils.WriteErrorAndStatusCode(w, errors.ClientInput("Invalid request"))
				return
			}
			if ok, wait := rl.Allow(identity); !ok {
				retryAfter := int(math.Ceil(wait.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				logger.Log.Info("request throttled", "ip", identity, "path", r.URL.Path)
				utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{
					Message:    throttledMessage,
					StatusCode: http.StatusTooManyRequests,
					RetryAfter: retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP keys the bucket on the connection's remote address.
func RateLimitByIP(rl *ratelimiter.KeyedRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, utils.GetIP)
}
