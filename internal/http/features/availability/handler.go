package availability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tendant/simple-signup/internal/httputil"
	"github.com/tendant/simple-signup/pkg/api"
	"github.com/tendant/simple-signup/pkg/domain"
)

// Checker answers availability questions.
type Checker interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
	CheckNickname(ctx context.Context, nickname string) (bool, error)
	CheckAddress(ctx context.Context, slug string) (bool, error)
}

// Handler handles the email, nickname and address availability endpoints.
type Handler struct {
	logger  *slog.Logger
	checker Checker
}

// NewHandler creates a new availability handler.
func NewHandler(logger *slog.Logger, checker Checker) *Handler {
	return &Handler{logger: logger, checker: checker}
}

// CheckEmail handles POST /v1/signup/availability/email.
func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, "email", h.checker.CheckEmail)
}

// CheckNickname handles POST /v1/signup/availability/nickname.
func (h *Handler) CheckNickname(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, "nickname", h.checker.CheckNickname)
}

// CheckAddress handles POST /v1/signup/availability/address.
func (h *Handler) CheckAddress(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, "address", h.checker.CheckAddress)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request, field string, fn func(context.Context, string) (bool, error)) {
	var req api.CheckRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		httputil.Error(w, http.StatusBadRequest, "value is required")
		return
	}

	available, err := fn(r.Context(), req.Value)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrInvalidNickname):
			httputil.Error(w, http.StatusBadRequest, "nickname must be 2-16 letters, digits or underscores")
		case errors.Is(err, domain.ErrInvalidAddressSlug):
			httputil.Error(w, http.StatusBadRequest, "address must be 2-30 lowercase letters, digits, hyphens or underscores")
		default:
			h.logger.Error("availability check failed", "field", field, "error", err)
			httputil.Error(w, http.StatusInternalServerError, "availability check failed")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, api.CheckResponse{IsAvailable: available})
}
