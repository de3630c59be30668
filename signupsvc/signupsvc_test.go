package signupsvc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tendant/simple-signup/pkg/api"
)

type nopSMS struct{}

func (nopSMS) SendSMS(context.Context, string, string) error { return nil }

func testConfig() Config {
	return Config{
		TicketSecret: "0123456789abcdef0123456789abcdef",
		SMS:          nopSMS{},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.TicketSecret = "" }, wantErr: "TicketSecret is required"},
		{name: "short secret", mutate: func(c *Config) { c.TicketSecret = "short" }, wantErr: "at least 32"},
		{name: "missing sms", mutate: func(c *Config) { c.SMS = nil }, wantErr: "SMS sender"},
		{name: "negative ttl", mutate: func(c *Config) { c.OTP.CodeTTL = -1 }, wantErr: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateConfig() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)

	if cfg.TicketIssuer != "simple-signup" {
		t.Errorf("TicketIssuer = %v, want simple-signup", cfg.TicketIssuer)
	}
	if cfg.OTP.CodeTTL.Seconds() != 180 {
		t.Errorf("CodeTTL = %v, want 3m0s", cfg.OTP.CodeTTL)
	}
	if cfg.OTP.MaxAttempts != 5 || cfg.OTP.MaxSendsPerWindow != 3 {
		t.Errorf("OTP = %+v, want 5 attempts and 3 sends", cfg.OTP)
	}
	if cfg.Reserved == nil || cfg.Logger == nil {
		t.Error("Reserved and Logger must be defaulted")
	}
}

func TestService_InMemory(t *testing.T) {
	svc, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v, want nil without backends", err)
	}

	ok, err := svc.Availability().CheckNickname(context.Background(), "admin")
	if err != nil || ok {
		t.Errorf("CheckNickname(admin) = %v, %v; want false, nil", ok, err)
	}

	mux := http.NewServeMux()
	svc.Routes(mux, "/api")
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api" + api.PathHealth)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/health status = %d, want 200", resp.StatusCode)
	}
}

func TestService_HealthHandler(t *testing.T) {
	svc, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	svc.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s, want status ok", rec.Body.String())
	}
}
