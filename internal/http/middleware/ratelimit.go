package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/tendant/simple-signup/internal/config"
	"github.com/tendant/simple-signup/internal/httputil"
)

// Rate limiter keys used by the router.
const (
	LimitCheck    = "check"
	LimitOTP      = "otp"
	LimitVerify   = "verify"
	LimitRegister = "register"
)

// RateLimitConfig holds rate limiting configuration for a specific endpoint type.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// CreateRateLimiters creates one limiter per route group.
func CreateRateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	if !cfg.Enabled {
		noOp := NoRateLimit()
		return map[string]func(http.Handler) http.Handler{
			LimitCheck:    noOp,
			LimitOTP:      noOp,
			LimitVerify:   noOp,
			LimitRegister: noOp,
		}
	}

	return map[string]func(http.Handler) http.Handler{
		LimitCheck: RateLimit(RateLimitConfig{
			Requests: cfg.CheckRequestsPerMinute,
			Window:   time.Minute,
			Logger:   logger,
		}),
		LimitOTP: RateLimit(RateLimitConfig{
			Requests: cfg.OTPRequestsPerWindow,
			Window:   time.Duration(cfg.OTPWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		LimitVerify: RateLimit(RateLimitConfig{
			Requests: cfg.VerifyRequestsPerWindow,
			Window:   time.Duration(cfg.VerifyWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		LimitRegister: RateLimit(RateLimitConfig{
			Requests: cfg.RegisterRequestsPerWindow,
			Window:   time.Duration(cfg.RegisterWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
	}
}
