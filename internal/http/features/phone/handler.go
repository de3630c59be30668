package phone

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tendant/simple-signup/internal/httputil"
	"github.com/tendant/simple-signup/pkg/api"
	"github.com/tendant/simple-signup/pkg/auth"
	"github.com/tendant/simple-signup/pkg/domain"
)

// Messages shown to the user next to the phone input.
const (
	msgCodeSent          = "A verification code has been sent."
	msgThrottled         = "Too many codes requested. Please try again in a few minutes."
	msgAlreadyRegistered = "This phone number is already registered."
	msgVerified          = "Phone number verified."
	msgMismatch          = "The verification code is incorrect."
	msgExpired           = "The verification code has expired. Please request a new one."
	msgTooManyAttempts   = "Too many incorrect attempts. Please request a new code."
)

// OTPService sends and checks phone verification codes.
type OTPService interface {
	SendCode(ctx context.Context, phoneNumber string) (*auth.SentCode, error)
	VerifyCode(ctx context.Context, phoneNumber, code string) (string, error)
}

// TicketIssuer signs proof of a verified number.
type TicketIssuer interface {
	Issue(phoneNumber string) (string, error)
}

// PhoneChecker reports whether a number is still free.
type PhoneChecker interface {
	CheckPhone(ctx context.Context, phoneNumber string) (bool, error)
}

// Handler handles phone verification endpoints.
type Handler struct {
	logger  *slog.Logger
	otp     OTPService
	tickets TicketIssuer
	phones  PhoneChecker
}

// NewHandler creates a new phone handler. phones may be nil to skip the
// already-registered check.
func NewHandler(logger *slog.Logger, otp OTPService, tickets TicketIssuer, phones PhoneChecker) *Handler {
	return &Handler{
		logger:  logger,
		otp:     otp,
		tickets: tickets,
		phones:  phones,
	}
}

// SendCode handles POST /v1/signup/phone/send.
//
// Business refusals (throttled, already registered) answer 200 with
// accepted=false so the client can show the message.
func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req api.SendOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	if err := auth.ValidatePhoneNumber(req.PhoneNumber); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid phone number")
		return
	}

	if h.phones != nil {
		free, err := h.phones.CheckPhone(r.Context(), req.PhoneNumber)
		if err != nil {
			h.logger.Error("phone availability check failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to send verification code")
			return
		}
		if !free {
			httputil.JSON(w, http.StatusOK, api.SendOTPResponse{Accepted: false, Message: msgAlreadyRegistered})
			return
		}
	}

	sent, err := h.otp.SendCode(r.Context(), req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOTPResendThrottled):
			httputil.JSON(w, http.StatusOK, api.SendOTPResponse{Accepted: false, Message: msgThrottled})
		case errors.Is(err, domain.ErrInvalidPhoneNumber):
			httputil.Error(w, http.StatusBadRequest, "invalid phone number")
		case errors.Is(err, domain.ErrSMSDeliveryFailed):
			h.logger.Error("sms delivery failed", "error", err)
			httputil.Error(w, http.StatusBadGateway, "failed to deliver verification code")
		default:
			h.logger.Error("failed to send verification code", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to send verification code")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, api.SendOTPResponse{
		Accepted:  true,
		Message:   msgCodeSent,
		ExpiresIn: int(sent.ExpiresIn / time.Second),
	})
}

// VerifyCode handles POST /v1/signup/phone/verify.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	phone, err := h.otp.VerifyCode(r.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPhoneNumber):
			httputil.Error(w, http.StatusBadRequest, "invalid phone number")
		case errors.Is(err, domain.ErrInvalidOTPCode):
			httputil.Error(w, http.StatusBadRequest, "code must be 6 digits")
		case errors.Is(err, domain.ErrOTPMismatch):
			httputil.JSON(w, http.StatusOK, api.VerifyOTPResponse{Verified: false, Message: msgMismatch})
		case errors.Is(err, domain.ErrOTPExpired), errors.Is(err, domain.ErrOTPNotFound):
			httputil.JSON(w, http.StatusOK, api.VerifyOTPResponse{Verified: false, Message: msgExpired})
		case errors.Is(err, domain.ErrOTPTooManyAttempts):
			httputil.JSON(w, http.StatusOK, api.VerifyOTPResponse{Verified: false, Message: msgTooManyAttempts})
		default:
			h.logger.Error("failed to verify code", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to verify code")
		}
		return
	}

	ticket, err := h.tickets.Issue(phone)
	if err != nil {
		h.logger.Error("failed to issue phone ticket", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to verify code")
		return
	}

	httputil.JSON(w, http.StatusOK, api.VerifyOTPResponse{
		Verified: true,
		Message:  msgVerified,
		Ticket:   ticket,
	})
}
