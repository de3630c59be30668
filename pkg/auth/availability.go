package auth

import (
	"context"
	"fmt"
	"strings"
)

// UserLookup answers uniqueness questions about existing members.
type UserLookup interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	ExistsByAddressSlug(ctx context.Context, slug string) (bool, error)
	ExistsByPhoneNumber(ctx context.Context, phoneNumber string) (bool, error)
}

// AvailabilityService checks whether signup identifiers are free.
//
// Format errors are returned as errors; a well-formed value that is taken or
// reserved is reported as unavailable.
type AvailabilityService struct {
	users    UserLookup
	reserved *ReservedNames
	email    EmailRules
}

// NewAvailabilityService creates an AvailabilityService. reserved may be nil.
func NewAvailabilityService(users UserLookup, reserved *ReservedNames, email EmailRules) *AvailabilityService {
	return &AvailabilityService{
		users:    users,
		reserved: reserved,
		email:    email,
	}
}

// CheckEmail reports whether email can be used for a new account.
func (s *AvailabilityService) CheckEmail(ctx context.Context, email string) (bool, error) {
	if err := ValidateEmail(email, s.email); err != nil {
		return false, err
	}
	exists, err := s.users.ExistsByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return !exists, nil
}

// CheckNickname reports whether nickname is free. Comparison is case-insensitive.
func (s *AvailabilityService) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	nickname = strings.TrimSpace(nickname)
	if err := ValidateNickname(nickname); err != nil {
		return false, err
	}
	if s.reserved.IsReservedNickname(nickname) {
		return false, nil
	}
	exists, err := s.users.ExistsByNickname(ctx, nickname)
	if err != nil {
		return false, fmt.Errorf("failed to check nickname: %w", err)
	}
	return !exists, nil
}

// CheckAddress reports whether a public address slug is free.
func (s *AvailabilityService) CheckAddress(ctx context.Context, slug string) (bool, error) {
	slug = strings.TrimSpace(slug)
	if err := ValidateAddressSlug(slug); err != nil {
		return false, err
	}
	if s.reserved.IsReservedAddress(slug) {
		return false, nil
	}
	exists, err := s.users.ExistsByAddressSlug(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("failed to check address: %w", err)
	}
	return !exists, nil
}

// CheckPhone reports whether the number is not yet tied to an account.
func (s *AvailabilityService) CheckPhone(ctx context.Context, phoneNumber string) (bool, error) {
	phone, err := NormalizePhoneNumber(phoneNumber)
	if err != nil {
		return false, err
	}
	exists, err := s.users.ExistsByPhoneNumber(ctx, phone)
	if err != nil {
		return false, fmt.Errorf("failed to check phone number: %w", err)
	}
	return !exists, nil
}
