package signup

import "errors"

// Verification errors
var (
	ErrValidation              = errors.New("validation failed")
	ErrCollaboratorUnavailable = errors.New("verification service unavailable")
	ErrRequestInFlight         = errors.New("request already in flight")
	ErrSuperseded              = errors.New("value changed while request was in flight")
	ErrPhoneVerified           = errors.New("phone number already verified")
	ErrCodeNotSent             = errors.New("verification code has not been sent")
	ErrCodeExpired             = errors.New("verification code expired")
	ErrSubmitFailed            = errors.New("signup submission failed")
)

// Submission gate errors
var (
	ErrPasswordMismatch    = errors.New("password mismatch")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrNicknameNotVerified = errors.New("nickname not verified")
	ErrPhoneNotVerified    = errors.New("phone not verified")
	ErrAddressNotVerified  = errors.New("address not verified")
)
