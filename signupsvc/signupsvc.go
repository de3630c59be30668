// Package signupsvc provides the member signup backend: availability
// checks, phone verification by SMS code and account creation.
//
// Setup:
//
//  1. Run migrations from migrations/ folder using your preferred tool
//  2. Create a Service and mount its router
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//
//	svc, err := signupsvc.New(signupsvc.Config{
//	    DB:           db,
//	    TicketSecret: "your-secret-key-at-least-32-chars",
//	    SMS:          smsClient,
//	})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//
//	r := chi.NewRouter()
//	r.Mount("/", svc.Router())
//	http.ListenAndServe(":8080", r)
//
// Without a DB the service keeps accounts in memory, which is only useful
// for local runs and tests.
package signupsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tendant/simple-signup/internal/config"
	httpserver "github.com/tendant/simple-signup/internal/http"
	"github.com/tendant/simple-signup/internal/httputil"
	"github.com/tendant/simple-signup/pkg/auth"
	"github.com/tendant/simple-signup/pkg/repository"
)

// Config configures a Service.
type Config struct {
	// DB is the Postgres handle. Accounts are kept in memory when nil.
	DB *sql.DB
	// Redis holds pending codes so replicas share them. Memory when nil.
	Redis redis.UniversalClient

	// TicketSecret signs phone verification tickets (min 32 chars).
	TicketSecret string
	TicketIssuer string
	TicketTTL    time.Duration

	// SMS delivers verification codes (required).
	SMS auth.SMSSender
	// Welcome is told about new members. Optional.
	Welcome auth.WelcomeNotifier
	// Reserved lists reserved nicknames, addresses and blocked e-mail
	// domains. Built-in defaults when nil.
	Reserved *auth.ReservedNames

	OTP             config.OTPConfig
	PasswordPolicy  config.PasswordPolicyConfig
	RateLimit       config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Validation      config.ValidationConfig

	Logger *slog.Logger
}

// Service is a wired signup backend.
type Service struct {
	config       Config
	users        auth.UserLookup
	availability *auth.AvailabilityService
	otp          *auth.PhoneOTPService
	tickets      *auth.TicketIssuer
	registration *auth.RegistrationService
}

// New creates a Service. It fails if DB is set and migrations are missing.
func New(cfg Config) (*Service, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	var (
		users    auth.UserLookup
		accounts auth.AccountCreator
	)
	if cfg.DB != nil {
		if err := validateSchema(cfg.DB); err != nil {
			return nil, err
		}
		usersRepo := repository.NewUsersRepository(cfg.DB)
		credsRepo := repository.NewCredentialsRepository(cfg.DB)
		users = usersRepo
		accounts = repository.NewAccountsRepository(cfg.DB, usersRepo, credsRepo)
	} else {
		memory := repository.NewMemoryAccounts()
		users, accounts = memory, memory
		cfg.Logger.Warn("no database configured, accounts are kept in memory")
	}

	var codes repository.CodeStore
	if cfg.Redis != nil {
		codes = repository.NewRedisCodeStore(cfg.Redis)
	} else {
		codes = repository.NewMemoryCodeStore(nil)
	}

	emailRules := auth.EmailRules{Strict: cfg.Validation.StrictEmailValidation}
	if cfg.Validation.BlockDisposableEmail {
		emailRules.Blocked = cfg.Reserved
	}

	availability := auth.NewAvailabilityService(users, cfg.Reserved, emailRules)
	tickets := auth.NewTicketIssuer(auth.TicketConfig{
		Secret: []byte(cfg.TicketSecret),
		Issuer: cfg.TicketIssuer,
		TTL:    cfg.TicketTTL,
	})

	return &Service{
		config:       cfg,
		users:        users,
		availability: availability,
		otp:          auth.NewPhoneOTPService(cfg.OTP, codes, cfg.SMS, cfg.Logger),
		tickets:      tickets,
		registration: auth.NewRegistrationService(
			availability,
			accounts,
			tickets,
			auth.NewPasswordPolicy(cfg.PasswordPolicy),
			cfg.Welcome,
			cfg.Logger,
		),
	}, nil
}

// Router returns the signup API with middleware applied.
func (s *Service) Router() http.Handler {
	return httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          s.config.Logger,
		Availability:    s.availability,
		OTP:             s.otp,
		Tickets:         s.tickets,
		Phones:          s.availability,
		Registrar:       s.registration,
		HealthCheck:     s.Ping,
		RateLimitConfig: s.config.RateLimit,
		SecurityHeaders: s.config.SecurityHeaders,
		Validation:      s.config.Validation,
	})
}

// Routes registers the signup API on an http.ServeMux under prefix:
//
//	mux := http.NewServeMux()
//	svc.Routes(mux, "/api")
func (s *Service) Routes(mux *http.ServeMux, prefix string) {
	mux.Handle(prefix+"/", http.StripPrefix(prefix, s.Router()))
}

// Ping checks the database and Redis, whichever are configured.
func (s *Service) Ping(ctx context.Context) error {
	if s.config.DB != nil {
		if err := s.config.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if s.config.Redis != nil {
		if err := s.config.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// HealthHandler returns a liveness handler that does not touch backends.
func (s *Service) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Availability exposes the identifier checks for in-process callers.
func (s *Service) Availability() *auth.AvailabilityService {
	return s.availability
}

// Registration exposes account creation for in-process callers.
func (s *Service) Registration() *auth.RegistrationService {
	return s.registration
}

func validateConfig(cfg *Config) error {
	if cfg.TicketSecret == "" {
		return errors.New("signupsvc: TicketSecret is required")
	}
	if len(cfg.TicketSecret) < 32 {
		return errors.New("signupsvc: TicketSecret must be at least 32 characters")
	}
	if cfg.SMS == nil {
		return errors.New("signupsvc: SMS sender is required")
	}
	if cfg.OTP.CodeTTL < 0 || cfg.TicketTTL < 0 {
		return errors.New("signupsvc: durations must not be negative")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.TicketIssuer == "" {
		cfg.TicketIssuer = "simple-signup"
	}
	if cfg.TicketTTL == 0 {
		cfg.TicketTTL = 30 * time.Minute
	}
	if cfg.OTP.CodeTTL == 0 {
		cfg.OTP.CodeTTL = 180 * time.Second
	}
	if cfg.OTP.MaxSendsPerWindow == 0 {
		cfg.OTP.MaxSendsPerWindow = 3
	}
	if cfg.OTP.SendWindow == 0 {
		cfg.OTP.SendWindow = 10 * time.Minute
	}
	if cfg.OTP.MaxAttempts == 0 {
		cfg.OTP.MaxAttempts = 5
	}
	if cfg.PasswordPolicy.MinLength == 0 {
		cfg.PasswordPolicy.MinLength = 8
	}
	if cfg.Reserved == nil {
		cfg.Reserved = auth.DefaultReservedNames()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
}

// validateSchema checks that required database tables exist.
func validateSchema(db *sql.DB) error {
	requiredTables := []string{"users", "user_password"}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(query, table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("signupsvc: missing table '%s' - run migrations first (see migrations/ folder)", table)
		}
		if err != nil {
			return fmt.Errorf("signupsvc: failed to check schema: %w", err)
		}
	}

	return nil
}
