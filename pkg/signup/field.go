package signup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// FieldStatus is the verification status of a checkable input.
type FieldStatus int

const (
	StatusUnverified FieldStatus = iota
	StatusAvailable
	StatusUnavailable
)

func (s FieldStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unverified"
	}
}

// Outcome records how the last collaborator call ended.
type Outcome int

const (
	// OutcomeNone means no call has completed since the last edit.
	OutcomeNone Outcome = iota
	// OutcomeSuccess means the collaborator answered positively.
	OutcomeSuccess
	// OutcomeRejected means the collaborator answered negatively, e.g. the value is taken.
	OutcomeRejected
	// OutcomeError means the call itself failed.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRejected:
		return "rejected"
	case OutcomeError:
		return "error"
	default:
		return "none"
	}
}

// DisplayState is the state of the button next to an input.
type DisplayState int

const (
	DisplayIdle DisplayState = iota
	DisplayPending
	DisplaySuccess
	DisplayFailed
)

func (d DisplayState) String() string {
	switch d {
	case DisplayPending:
		return "pending"
	case DisplaySuccess:
		return "success"
	case DisplayFailed:
		return "failed"
	default:
		return "idle"
	}
}

// AvailabilityChecker answers whether a value may still be claimed.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, value string) (bool, error)
}

// AvailabilityFunc adapts a function to AvailabilityChecker.
type AvailabilityFunc func(ctx context.Context, value string) (bool, error)

// CheckAvailability calls f.
func (f AvailabilityFunc) CheckAvailability(ctx context.Context, value string) (bool, error) {
	return f(ctx, value)
}

// FieldConfig configures a Field.
type FieldConfig struct {
	// Name identifies the field in logs, e.g. "email".
	Name string
	// Validate is the local format check. Nil accepts any non-empty value.
	Validate func(value string) error
	Checker  AvailabilityChecker
	// Timeout bounds a single availability call. Zero means no timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// FieldState is a point-in-time copy of a Field.
type FieldState struct {
	Value   string
	Status  FieldStatus
	Pending bool
	Outcome Outcome
	// Err is the collaborator error when Outcome is OutcomeError.
	Err error
}

// DisplayState maps the field state to the button state. A failed call and
// a taken value both display as failed.
func (s FieldState) DisplayState() DisplayState {
	switch {
	case s.Pending:
		return DisplayPending
	case s.Status == StatusAvailable:
		return DisplaySuccess
	case s.Status == StatusUnavailable:
		return DisplayFailed
	default:
		return DisplayIdle
	}
}

// Field tracks the availability check of one input.
type Field struct {
	name     string
	validate func(string) error
	checker  AvailabilityChecker
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	value   string
	status  FieldStatus
	pending bool
	outcome Outcome
	err     error
	edits   uint64
}

// NewField creates an unverified field.
func NewField(cfg FieldConfig) *Field {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	validate := cfg.Validate
	if validate == nil {
		validate = requireNonEmpty
	}
	return &Field{
		name:     cfg.Name,
		validate: validate,
		checker:  cfg.Checker,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

// Name returns the field name.
func (f *Field) Name() string {
	return f.name
}

// SetValue stores a new value. Any edit invalidates a previous check.
func (f *Field) SetValue(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.value = value
	f.status = StatusUnverified
	f.outcome = OutcomeNone
	f.err = nil
	f.edits++
}

// Check runs the availability check for the current value.
//
// Local validation failures return ErrValidation without calling the
// collaborator, and a second Check while one is pending returns
// ErrRequestInFlight. A collaborator error leaves the field Unavailable and
// returns an error wrapping ErrCollaboratorUnavailable; a taken value leaves
// it Unavailable with OutcomeRejected and a nil error.
func (f *Field) Check(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return OutcomeNone, ErrRequestInFlight
	}
	value := f.value
	if err := f.validate(value); err != nil {
		f.mu.Unlock()
		return OutcomeNone, fmt.Errorf("%w: %s: %w", ErrValidation, f.name, err)
	}
	f.pending = true
	edits := f.edits
	f.mu.Unlock()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	available, callErr := f.checker.CheckAvailability(ctx, value)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = false
	if edits != f.edits {
		f.logger.Debug("discarding stale availability result", "field", f.name)
		return OutcomeNone, ErrSuperseded
	}

	switch {
	case callErr != nil:
		f.status = StatusUnavailable
		f.outcome = OutcomeError
		f.err = callErr
		f.logger.Warn("availability check failed", "field", f.name, "error", callErr)
		return OutcomeError, fmt.Errorf("%w: %s: %w", ErrCollaboratorUnavailable, f.name, callErr)
	case !available:
		f.status = StatusUnavailable
		f.outcome = OutcomeRejected
		f.err = nil
		f.logger.Info("value unavailable", "field", f.name)
		return OutcomeRejected, nil
	default:
		f.status = StatusAvailable
		f.outcome = OutcomeSuccess
		f.err = nil
		return OutcomeSuccess, nil
	}
}

// State returns a snapshot of the field.
func (f *Field) State() FieldState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FieldState{
		Value:   f.value,
		Status:  f.status,
		Pending: f.pending,
		Outcome: f.outcome,
		Err:     f.err,
	}
}

// Status returns the current verification status.
func (f *Field) Status() FieldStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func requireNonEmpty(value string) error {
	if value == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}
