package signup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Gender values accepted on submission.
const (
	GenderFemale = "female"
	GenderMale   = "male"
)

// Form holds the inputs that are not verified through a collaborator.
type Form struct {
	Password        string
	PasswordConfirm string
	Name            string
	BirthYear       string
	Region          string
	District        string
	Gender          string
}

// Valid reports base form validity: the two password inputs match. Empty
// passwords are left to the registrar's password policy.
func (f Form) Valid() bool {
	return f.Password == f.PasswordConfirm
}

// Birthdate returns the birth year as a YYYY-01-01 date.
func (f Form) Birthdate() string {
	if f.BirthYear == "" {
		return ""
	}
	return f.BirthYear + "-01-01"
}

// Address joins region and district.
func (f Form) Address() string {
	switch {
	case f.Region == "":
		return f.District
	case f.District == "":
		return f.Region
	}
	return f.Region + " " + f.District
}

// Submission is handed to the Registrar once the gate is open.
type Submission struct {
	Email       string
	Nickname    string
	AddressSlug string
	PhoneNumber string
	PhoneProof  string
	Form        Form
}

// Registrar performs the final signup call.
type Registrar interface {
	Register(ctx context.Context, s Submission) error
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(ctx context.Context, s Submission) error

// Register calls f.
func (f RegistrarFunc) Register(ctx context.Context, s Submission) error {
	return f(ctx, s)
}

// Validators holds the local format checks for each input.
type Validators struct {
	Email    func(string) error
	Nickname func(string) error
	Address  func(string) error
	Phone    func(string) error
	Code     func(string) error
}

// SessionConfig wires a Session to its collaborators.
type SessionConfig struct {
	EmailChecker    AvailabilityChecker
	NicknameChecker AvailabilityChecker
	AddressChecker  AvailabilityChecker
	OTPSender       OTPSender
	OTPVerifier     OTPVerifier
	Registrar       Registrar
	Validators      Validators

	CodeSeconds  int
	FailOnExpiry bool
	// CallTimeout bounds each collaborator call. Zero means no timeout.
	CallTimeout time.Duration

	Clock  Clock
	OnTick func(remaining int)
	Logger *slog.Logger
}

// Snapshot is the display state of a whole session.
type Snapshot struct {
	Email    FieldState
	Nickname FieldState
	Address  FieldState
	Phone    PhoneState
}

// Session coordinates the verification state of one signup form.
type Session struct {
	Email    *Field
	Nickname *Field
	Address  *Field
	Phone    *PhoneFlow

	registrar Registrar
	logger    *slog.Logger

	mu         sync.Mutex
	submitting bool
}

// NewSession creates a session with every input unverified.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	field := func(name string, validate func(string) error, checker AvailabilityChecker) *Field {
		return NewField(FieldConfig{
			Name:     name,
			Validate: validate,
			Checker:  checker,
			Timeout:  cfg.CallTimeout,
			Logger:   logger,
		})
	}
	return &Session{
		Email:    field("email", cfg.Validators.Email, cfg.EmailChecker),
		Nickname: field("nickname", cfg.Validators.Nickname, cfg.NicknameChecker),
		Address:  field("address", cfg.Validators.Address, cfg.AddressChecker),
		Phone: NewPhoneFlow(PhoneConfig{
			ValidatePhone: cfg.Validators.Phone,
			ValidateCode:  cfg.Validators.Code,
			Sender:        cfg.OTPSender,
			Verifier:      cfg.OTPVerifier,
			CodeSeconds:   cfg.CodeSeconds,
			FailOnExpiry:  cfg.FailOnExpiry,
			Timeout:       cfg.CallTimeout,
			Clock:         cfg.Clock,
			OnTick:        cfg.OnTick,
			Logger:        logger,
		}),
		registrar: cfg.Registrar,
		logger:    logger,
	}
}

// Evaluate runs the submission gate against the current state.
func (s *Session) Evaluate(form Form) Readiness {
	return Evaluate(GateInput{
		Email:         s.Email.Status(),
		Nickname:      s.Nickname.Status(),
		Address:       s.Address.Status(),
		Phone:         s.Phone.Stage(),
		BaseFormValid: form.Valid(),
	})
}

// Submit calls the Registrar when the gate is open. A blocked gate returns
// its readiness together with the matching sentinel error.
func (s *Session) Submit(ctx context.Context, form Form) (Readiness, error) {
	readiness := s.Evaluate(form)
	if !readiness.Ready {
		s.logger.Info("signup blocked", "reason", string(readiness.Reason))
		return readiness, readiness.Err()
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return readiness, ErrRequestInFlight
	}
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	if s.registrar == nil {
		return readiness, nil
	}

	phone := s.Phone.State()
	sub := Submission{
		Email:       s.Email.State().Value,
		Nickname:    s.Nickname.State().Value,
		AddressSlug: s.Address.State().Value,
		PhoneNumber: phone.PhoneNumber,
		PhoneProof:  phone.Proof,
		Form:        form,
	}
	if err := s.registrar.Register(ctx, sub); err != nil {
		s.logger.Error("signup submission failed", "error", err)
		return readiness, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	s.logger.Info("signup submitted")
	return readiness, nil
}

// Snapshot returns the display state of every input.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Email:    s.Email.State(),
		Nickname: s.Nickname.State(),
		Address:  s.Address.State(),
		Phone:    s.Phone.State(),
	}
}

// Close releases the phone countdown.
func (s *Session) Close() {
	s.Phone.Close()
}
