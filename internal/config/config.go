package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// InMemory keeps accounts in process memory instead of Postgres.
	InMemory bool

	// Phone verification ticket (JWT)
	TicketSecret string
	TicketIssuer string
	TicketTTL    time.Duration

	// Redis (optional, codes are kept in memory without it)
	RedisAddrs    []string
	RedisPassword string
	RedisDB       int
	RedisCluster  bool

	// SMTP (optional, welcome e-mail)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// ReservedNamesFile is a YAML file of reserved nicknames, addresses and
	// blocked e-mail domains. Built-in defaults apply when empty.
	ReservedNamesFile string

	OTP             OTPConfig
	SMS             SMSConfig
	PasswordPolicy  PasswordPolicyConfig
	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
	Validation      ValidationConfig
}

// OTPConfig controls phone verification codes.
type OTPConfig struct {
	CodeTTL           time.Duration
	MaxSendsPerWindow int
	SendWindow        time.Duration
	MaxAttempts       int
}

// SMSConfig configures the SMS gateway.
type SMSConfig struct {
	APIURL string
	APIKey string
	Sender string
	// DryRun logs messages instead of sending them.
	DryRun bool
}

// PasswordPolicyConfig defines password complexity requirements.
type PasswordPolicyConfig struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// RateLimitConfig holds per-route-group request budgets.
type RateLimitConfig struct {
	Enabled bool

	CheckRequestsPerMinute    int
	OTPRequestsPerWindow      int
	OTPWindowMinutes          int
	VerifyRequestsPerWindow   int
	VerifyWindowMinutes       int
	RegisterRequestsPerWindow int
	RegisterWindowMinutes     int
}

// SecurityHeadersConfig holds the response security headers.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// ValidationConfig holds input validation settings.
type ValidationConfig struct {
	MaxRequestBodySize    int64
	StrictEmailValidation bool
	BlockDisposableEmail  bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults (matches podman setup: make postgres-start)
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 25432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "simple_signup"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		InMemory:   getEnvBool("IN_MEMORY", false),

		TicketSecret: getEnv("TICKET_SECRET", ""),
		TicketIssuer: getEnv("TICKET_ISSUER", "simple-signup"),
		TicketTTL:    getEnvDuration("TICKET_TTL", 30*time.Minute),

		RedisAddrs:    getEnvList("REDIS_ADDRS"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisCluster:  getEnvBool("REDIS_CLUSTER", false),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Melpick"),

		ReservedNamesFile: getEnv("RESERVED_NAMES_FILE", ""),

		OTP: OTPConfig{
			CodeTTL:           getEnvDuration("OTP_CODE_TTL", 180*time.Second),
			MaxSendsPerWindow: getEnvInt("OTP_MAX_SENDS", 3),
			SendWindow:        getEnvDuration("OTP_SEND_WINDOW", 10*time.Minute),
			MaxAttempts:       getEnvInt("OTP_MAX_ATTEMPTS", 5),
		},
		SMS: SMSConfig{
			APIURL: getEnv("SMS_API_URL", "https://api.mobizon.kr/service/message/sendsmsmessage"),
			APIKey: getEnv("SMS_API_KEY", ""),
			Sender: getEnv("SMS_SENDER", ""),
			DryRun: getEnvBool("SMS_DRY_RUN", false),
		},
		PasswordPolicy: PasswordPolicyConfig{
			MinLength:        getEnvInt("PASSWORD_MIN_LENGTH", 8),
			RequireUppercase: getEnvBool("PASSWORD_REQUIRE_UPPERCASE", false),
			RequireLowercase: getEnvBool("PASSWORD_REQUIRE_LOWERCASE", true),
			RequireNumber:    getEnvBool("PASSWORD_REQUIRE_NUMBER", true),
			RequireSpecial:   getEnvBool("PASSWORD_REQUIRE_SPECIAL", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:                   getEnvBool("RATE_LIMIT_ENABLED", true),
			CheckRequestsPerMinute:    getEnvInt("RATE_LIMIT_CHECK_PER_MINUTE", 30),
			OTPRequestsPerWindow:      getEnvInt("RATE_LIMIT_OTP_REQUESTS", 5),
			OTPWindowMinutes:          getEnvInt("RATE_LIMIT_OTP_WINDOW_MINUTES", 10),
			VerifyRequestsPerWindow:   getEnvInt("RATE_LIMIT_VERIFY_REQUESTS", 10),
			VerifyWindowMinutes:       getEnvInt("RATE_LIMIT_VERIFY_WINDOW_MINUTES", 10),
			RegisterRequestsPerWindow: getEnvInt("RATE_LIMIT_REGISTER_REQUESTS", 5),
			RegisterWindowMinutes:     getEnvInt("RATE_LIMIT_REGISTER_WINDOW_MINUTES", 60),
		},
		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'none'; frame-ancestors 'none'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_XSS_PROTECTION", "0"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "no-referrer"),
			PermissionsPolicy:  getEnv("SECURITY_PERMISSIONS_POLICY", ""),
		},
		Validation: ValidationConfig{
			MaxRequestBodySize:    int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 64*1024)),
			StrictEmailValidation: getEnvBool("STRICT_EMAIL_VALIDATION", true),
			BlockDisposableEmail:  getEnvBool("BLOCK_DISPOSABLE_EMAIL", true),
		},
	}

	// Validate required fields
	if cfg.TicketSecret == "" {
		return nil, fmt.Errorf("TICKET_SECRET is required")
	}
	if len(cfg.TicketSecret) < 32 {
		return nil, fmt.Errorf("TICKET_SECRET must be at least 32 characters")
	}
	if cfg.OTP.CodeTTL <= 0 {
		return nil, fmt.Errorf("OTP_CODE_TTL must be positive")
	}
	if !cfg.SMS.DryRun && cfg.SMS.APIKey == "" {
		return nil, fmt.Errorf("SMS_API_KEY is required unless SMS_DRY_RUN is set")
	}

	return cfg, nil
}

// HasSMTP returns true if the welcome e-mail can be sent.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// HasRedis returns true if a shared code store is configured.
func (c *Config) HasRedis() bool {
	return len(c.RedisAddrs) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
