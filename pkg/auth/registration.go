package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-signup/pkg/domain"
)

const maxNameLength = 50

// AccountCreator persists a new member with their credential atomically.
type AccountCreator interface {
	CreateAccount(ctx context.Context, user *domain.User, cred *domain.UserPassword) error
}

// WelcomeNotifier is told about every new member. Failures are logged only.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, user *domain.User) error
}

// RegisterRequest carries the signup form.
type RegisterRequest struct {
	Email           string
	Password        string
	PasswordConfirm string
	Nickname        string
	Name            string
	BirthYear       string
	Gender          string
	PhoneNumber     string
	PhoneTicket     string
	Region          string
	District        string
	AddressSlug     string
}

// RegistrationService creates accounts from a completed signup form.
type RegistrationService struct {
	availability *AvailabilityService
	accounts     AccountCreator
	tickets      *TicketIssuer
	policy       *PasswordPolicy
	welcome      WelcomeNotifier
	logger       *slog.Logger
	now          func() time.Time
}

// NewRegistrationService creates a RegistrationService. welcome may be nil.
func NewRegistrationService(
	availability *AvailabilityService,
	accounts AccountCreator,
	tickets *TicketIssuer,
	policy *PasswordPolicy,
	welcome WelcomeNotifier,
	logger *slog.Logger,
) *RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{
		availability: availability,
		accounts:     accounts,
		tickets:      tickets,
		policy:       policy,
		welcome:      welcome,
		logger:       logger,
		now:          time.Now,
	}
}

// Register validates the form, re-checks every identifier and creates the
// account. The password confirmation is checked before anything else.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := s.policy.ValidatePasswordPair(req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	if err := s.requireAvailable(ctx, s.availability.CheckEmail, req.Email, domain.ErrUserAlreadyExists); err != nil {
		return nil, err
	}
	if s.availability.reserved.IsReservedNickname(strings.TrimSpace(req.Nickname)) {
		return nil, domain.ErrReservedName
	}
	if err := s.requireAvailable(ctx, s.availability.CheckNickname, req.Nickname, domain.ErrNicknameAlreadyExists); err != nil {
		return nil, err
	}

	phone, err := NormalizePhoneNumber(req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if req.PhoneTicket == "" {
		return nil, domain.ErrPhoneVerificationMissing
	}
	if _, err := s.tickets.Verify(req.PhoneTicket, phone); err != nil {
		return nil, err
	}
	if err := s.requireAvailable(ctx, s.availability.CheckPhone, phone, domain.ErrPhoneAlreadyRegistered); err != nil {
		return nil, err
	}

	if s.availability.reserved.IsReservedAddress(strings.TrimSpace(req.AddressSlug)) {
		return nil, domain.ErrReservedName
	}
	if err := s.requireAvailable(ctx, s.availability.CheckAddress, req.AddressSlug, domain.ErrAddressAlreadyExists); err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:            uuid.New(),
		Email:         NormalizeEmail(req.Email),
		Nickname:      strings.TrimSpace(req.Nickname),
		PhoneNumber:   phone,
		PhoneVerified: true,
		AddressSlug:   strings.TrimSpace(req.AddressSlug),
		Region:        SanitizeName(req.Region),
		District:      SanitizeName(req.District),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if name := SanitizeName(req.Name); name != "" {
		if err := ValidateStringLength("name", name, 0, maxNameLength); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidName, err)
		}
		user.Name = &name
	}
	if req.BirthYear != "" {
		birthdate, err := ParseBirthYear(req.BirthYear, now)
		if err != nil {
			return nil, err
		}
		user.Birthdate = &birthdate
	}
	if req.Gender != "" {
		gender, err := domain.ParseGender(req.Gender)
		if err != nil {
			return nil, err
		}
		user.Gender = &gender
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	cred := &domain.UserPassword{
		UserID:            user.ID,
		PasswordHash:      hash,
		PasswordUpdatedAt: now,
	}

	if err := s.accounts.CreateAccount(ctx, user, cred); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "nickname", user.Nickname)

	if s.welcome != nil {
		if err := s.welcome.SendWelcome(ctx, user); err != nil {
			s.logger.Error("failed to send welcome email", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

func (s *RegistrationService) requireAvailable(ctx context.Context, check func(context.Context, string) (bool, error), value string, taken error) error {
	ok, err := check(ctx, value)
	if err != nil {
		return err
	}
	if !ok {
		return taken
	}
	return nil
}
