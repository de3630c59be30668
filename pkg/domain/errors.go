package domain

import "errors"

// Account errors
var (
	ErrUserNotFound             = errors.New("user not found")
	ErrUserAlreadyExists        = errors.New("user already exists")
	ErrNicknameAlreadyExists    = errors.New("nickname already exists")
	ErrAddressAlreadyExists     = errors.New("address already exists")
	ErrPhoneAlreadyRegistered   = errors.New("phone number already registered")
	ErrPhoneVerificationMissing = errors.New("phone number not verified")
)

// Validation errors
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidNickname    = errors.New("invalid nickname format")
	ErrInvalidAddressSlug = errors.New("invalid address format")
	ErrReservedName       = errors.New("name is reserved")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrInvalidOTPCode     = errors.New("invalid verification code format")
	ErrInvalidBirthYear   = errors.New("invalid birth year")
	ErrInvalidGender      = errors.New("invalid gender")
	ErrInvalidName        = errors.New("invalid name")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// Phone verification errors
var (
	ErrOTPResendThrottled  = errors.New("too many verification codes requested")
	ErrOTPNotFound         = errors.New("verification code not found")
	ErrOTPExpired          = errors.New("verification code expired")
	ErrOTPMismatch         = errors.New("verification code does not match")
	ErrOTPTooManyAttempts  = errors.New("too many verification attempts")
	ErrSMSDeliveryFailed   = errors.New("failed to deliver verification code")
	ErrInvalidTicket       = errors.New("invalid phone verification ticket")
	ErrTicketPhoneMismatch = errors.New("phone verification ticket issued for another number")
)
