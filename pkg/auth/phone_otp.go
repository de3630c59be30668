package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/tendant/simple-signup/internal/config"
	"github.com/tendant/simple-signup/pkg/domain"
	"github.com/tendant/simple-signup/pkg/repository"
)

const otpIssuer = "simple-signup"

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, text string) error
}

// SentCode describes a code that was just delivered.
type SentCode struct {
	PhoneNumber string
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
}

// PhoneOTPService issues and checks six-digit phone verification codes.
//
// Each send creates a fresh TOTP secret; the code is the TOTP value at the
// issue instant, so only the secret and timestamp are stored.
type PhoneOTPService struct {
	config config.OTPConfig
	codes  repository.CodeStore
	sms    SMSSender
	logger *slog.Logger
	now    func() time.Time
}

// NewPhoneOTPService creates a PhoneOTPService.
func NewPhoneOTPService(cfg config.OTPConfig, codes repository.CodeStore, sms SMSSender, logger *slog.Logger) *PhoneOTPService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhoneOTPService{
		config: cfg,
		codes:  codes,
		sms:    sms,
		logger: logger,
		now:    time.Now,
	}
}

// SendCode normalizes the number, applies the resend throttle, stores a new
// challenge and texts the code. A previous pending code is replaced.
func (s *PhoneOTPService) SendCode(ctx context.Context, phoneNumber string) (*SentCode, error) {
	phone, err := NormalizePhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}

	sends, err := s.codes.IncrSends(ctx, phone, s.config.SendWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to count sends: %w", err)
	}
	if sends > s.config.MaxSendsPerWindow {
		return nil, domain.ErrOTPResendThrottled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      otpIssuer,
		AccountName: phone,
		Period:      s.period(),
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp secret: %w", err)
	}

	now := s.now()
	code, err := totp.GenerateCodeCustom(key.Secret(), now, s.validateOpts())
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp code: %w", err)
	}

	pending := &domain.PhoneCode{
		PhoneNumber: phone,
		Secret:      key.Secret(),
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.config.CodeTTL),
	}
	if err := s.codes.SaveCode(ctx, pending, s.config.CodeTTL); err != nil {
		return nil, fmt.Errorf("failed to save otp code: %w", err)
	}

	if err := s.sms.SendSMS(ctx, phone, smsText(code)); err != nil {
		if delErr := s.codes.DeleteCode(ctx, phone); delErr != nil {
			s.logger.Error("failed to discard undelivered code", "phone", phone, "error", delErr)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSMSDeliveryFailed, err)
	}

	s.logger.Info("verification code sent", "phone", phone, "sends_in_window", sends)
	return &SentCode{
		PhoneNumber: phone,
		ExpiresAt:   pending.ExpiresAt,
		ExpiresIn:   s.config.CodeTTL,
	}, nil
}

// VerifyCode checks a code for the number and returns the normalized number
// on success. A successful check consumes the code; MaxAttempts failures
// burn it.
func (s *PhoneOTPService) VerifyCode(ctx context.Context, phoneNumber, code string) (string, error) {
	phone, err := NormalizePhoneNumber(phoneNumber)
	if err != nil {
		return "", err
	}
	if err := ValidateOTPCode(code); err != nil {
		return "", err
	}

	pending, err := s.codes.GetCode(ctx, phone)
	if err != nil {
		return "", err
	}
	if pending.IsExpired(s.now()) {
		_ = s.codes.DeleteCode(ctx, phone)
		return "", domain.ErrOTPExpired
	}

	valid, err := totp.ValidateCustom(code, pending.Secret, pending.IssuedAt, s.validateOpts())
	if err != nil && !errors.Is(err, otp.ErrValidateInputInvalidLength) {
		return "", fmt.Errorf("failed to validate otp code: %w", err)
	}

	if valid {
		if err := s.codes.DeleteCode(ctx, phone); err != nil {
			return "", fmt.Errorf("failed to consume otp code: %w", err)
		}
		s.logger.Info("phone verified", "phone", phone)
		return phone, nil
	}

	attempts, err := s.codes.IncrAttempts(ctx, phone)
	if err != nil {
		return "", err
	}
	if attempts >= s.config.MaxAttempts {
		if err := s.codes.DeleteCode(ctx, phone); err != nil {
			s.logger.Error("failed to burn code", "phone", phone, "error", err)
		}
		s.logger.Warn("verification code burned", "phone", phone, "attempts", attempts)
		return "", domain.ErrOTPTooManyAttempts
	}
	return "", domain.ErrOTPMismatch
}

func (s *PhoneOTPService) period() uint {
	p := uint(s.config.CodeTTL / time.Second)
	if p == 0 {
		p = 30
	}
	return p
}

func (s *PhoneOTPService) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    s.period(),
		Skew:      0,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func smsText(code string) string {
	return fmt.Sprintf("[Melpick] 인증번호 [%s]를 입력해주세요.", code)
}
