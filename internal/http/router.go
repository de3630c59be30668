package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/simple-signup/internal/config"
	"github.com/tendant/simple-signup/internal/http/features/availability"
	"github.com/tendant/simple-signup/internal/http/features/phone"
	"github.com/tendant/simple-signup/internal/http/features/signup"
	"github.com/tendant/simple-signup/internal/http/middleware"
	"github.com/tendant/simple-signup/internal/httputil"
	"github.com/tendant/simple-signup/pkg/api"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger       *slog.Logger
	Availability availability.Checker
	OTP          phone.OTPService
	Tickets      phone.TicketIssuer
	Phones       phone.PhoneChecker
	Registrar    signup.Registrar
	// HealthCheck, when set, backs GET /health (database and Redis pings).
	HealthCheck     func(ctx context.Context) error
	RateLimitConfig config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Validation      config.ValidationConfig
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))

	r.Get(api.PathHealth, healthHandler(cfg.HealthCheck, cfg.Logger))

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	availabilityHandler := availability.NewHandler(cfg.Logger, cfg.Availability)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters[middleware.LimitCheck])
		r.Post(api.PathCheckEmail, availabilityHandler.CheckEmail)
		r.Post(api.PathCheckNickname, availabilityHandler.CheckNickname)
		r.Post(api.PathCheckAddress, availabilityHandler.CheckAddress)
	})

	phoneHandler := phone.NewHandler(cfg.Logger, cfg.OTP, cfg.Tickets, cfg.Phones)
	r.With(rateLimiters[middleware.LimitOTP]).Post(api.PathSendOTP, phoneHandler.SendCode)
	r.With(rateLimiters[middleware.LimitVerify]).Post(api.PathVerifyOTP, phoneHandler.VerifyCode)

	signupHandler := signup.NewHandler(cfg.Logger, cfg.Registrar)
	r.With(rateLimiters[middleware.LimitRegister]).Post(api.PathRegister, signupHandler.Register)

	return r
}

func healthHandler(check func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.Warn("health check failed", "error", err)
				httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
