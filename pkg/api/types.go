// Package api holds the JSON bodies and paths of the signup HTTP API, shared
// by the server handlers and pkg/signupclient.
package api

// Paths served by the signup server.
const (
	PathCheckEmail    = "/v1/signup/availability/email"
	PathCheckNickname = "/v1/signup/availability/nickname"
	PathCheckAddress  = "/v1/signup/availability/address"
	PathSendOTP       = "/v1/signup/phone/send"
	PathVerifyOTP     = "/v1/signup/phone/verify"
	PathRegister      = "/v1/signup"
	PathHealth        = "/health"
)

// CheckRequest asks whether a value is available.
type CheckRequest struct {
	Value string `json:"value"`
}

// CheckResponse answers a CheckRequest.
type CheckResponse struct {
	IsAvailable bool `json:"is_available"`
}

// SendOTPRequest asks for a code to be texted.
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// SendOTPResponse reports whether a code was sent. ExpiresIn is in seconds.
type SendOTPResponse struct {
	Accepted  bool   `json:"accepted"`
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// VerifyOTPRequest submits a code.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

// VerifyOTPResponse reports the check result. Ticket proves the verification
// and is required by RegisterRequest.
type VerifyOTPResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
	Ticket   string `json:"ticket,omitempty"`
}

// RegisterRequest is the completed signup form.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Nickname        string `json:"nickname"`
	Name            string `json:"name,omitempty"`
	BirthYear       string `json:"birth_year,omitempty"`
	Gender          string `json:"gender,omitempty"`
	PhoneNumber     string `json:"phone_number"`
	PhoneTicket     string `json:"phone_ticket"`
	Region          string `json:"region,omitempty"`
	District        string `json:"district,omitempty"`
	AddressSlug     string `json:"address_slug"`
}

// RegisterResponse describes the created account.
type RegisterResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	AddressSlug string `json:"address_slug"`
	Address     string `json:"address,omitempty"`
	Birthdate   string `json:"birthdate,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
