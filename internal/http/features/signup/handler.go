package signup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tendant/simple-signup/internal/httputil"
	"github.com/tendant/simple-signup/pkg/api"
	"github.com/tendant/simple-signup/pkg/auth"
	"github.com/tendant/simple-signup/pkg/domain"
)

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*domain.User, error)
}

// Handler handles the final signup submission.
type Handler struct {
	logger    *slog.Logger
	registrar Registrar
}

// NewHandler creates a new signup handler.
func NewHandler(logger *slog.Logger, registrar Registrar) *Handler {
	return &Handler{logger: logger, registrar: registrar}
}

// Register handles POST /v1/signup.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	if req.Email == "" || req.Password == "" || req.Nickname == "" || req.PhoneNumber == "" || req.AddressSlug == "" {
		httputil.Error(w, http.StatusBadRequest, "email, password, nickname, phone_number and address_slug are required")
		return
	}

	user, err := h.registrar.Register(r.Context(), auth.RegisterRequest{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Nickname:        req.Nickname,
		Name:            req.Name,
		BirthYear:       req.BirthYear,
		Gender:          req.Gender,
		PhoneNumber:     req.PhoneNumber,
		PhoneTicket:     req.PhoneTicket,
		Region:          req.Region,
		District:        req.District,
		AddressSlug:     req.AddressSlug,
	})
	if err != nil {
		status, msg := registerError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("registration failed", "error", err)
		}
		httputil.Error(w, status, msg)
		return
	}

	resp := api.RegisterResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		Nickname:    user.Nickname,
		AddressSlug: user.AddressSlug,
		Address:     user.Address(),
	}
	if user.Birthdate != nil {
		resp.Birthdate = user.Birthdate.Format("2006-01-02")
	}
	if user.Gender != nil {
		resp.Gender = string(*user.Gender)
	}
	httputil.JSON(w, http.StatusCreated, resp)
}

func registerError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrPasswordMismatch):
		return http.StatusBadRequest, "passwords do not match"
	case errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidNickname),
		errors.Is(err, domain.ErrInvalidAddressSlug),
		errors.Is(err, domain.ErrInvalidPhoneNumber),
		errors.Is(err, domain.ErrInvalidBirthYear),
		errors.Is(err, domain.ErrInvalidGender),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrReservedName):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrPhoneVerificationMissing),
		errors.Is(err, domain.ErrInvalidTicket),
		errors.Is(err, domain.ErrTicketPhoneMismatch):
		return http.StatusForbidden, "phone number is not verified"
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, domain.ErrNicknameAlreadyExists):
		return http.StatusConflict, "nickname already taken"
	case errors.Is(err, domain.ErrAddressAlreadyExists):
		return http.StatusConflict, "address already taken"
	case errors.Is(err, domain.ErrPhoneAlreadyRegistered):
		return http.StatusConflict, "phone number already registered"
	}
	return http.StatusInternalServerError, "registration failed"
}
