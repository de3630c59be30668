package signup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// OTPStage is the stage of the phone verification challenge.
type OTPStage int

const (
	StageIdle OTPStage = iota
	StageCodeSent
	StageVerified
	StageFailed
)

func (s OTPStage) String() string {
	switch s {
	case StageCodeSent:
		return "code_sent"
	case StageVerified:
		return "verified"
	case StageFailed:
		return "failed"
	default:
		return "idle"
	}
}

// SendResult is the answer of an OTP send request.
type SendResult struct {
	Accepted bool
	Message  string
}

// VerifyResult is the answer of an OTP verify request.
type VerifyResult struct {
	Verified bool
	Message  string
	// Proof is an opaque token attesting the verification, forwarded on submit.
	Proof string
}

// OTPSender delivers a one-time code to a phone number.
type OTPSender interface {
	SendOTP(ctx context.Context, phoneNumber string) (SendResult, error)
}

// OTPVerifier checks a code entered by the user.
type OTPVerifier interface {
	VerifyOTP(ctx context.Context, phoneNumber, code string) (VerifyResult, error)
}

// PhoneConfig configures a PhoneFlow.
type PhoneConfig struct {
	ValidatePhone func(phoneNumber string) error
	ValidateCode  func(code string) error
	Sender        OTPSender
	Verifier      OTPVerifier

	// CodeSeconds is the countdown length, DefaultCodeSeconds when zero.
	CodeSeconds int
	// FailOnExpiry moves a CodeSent challenge to Failed when the countdown
	// reaches zero. By default expiry only zeroes the clock.
	FailOnExpiry bool
	// Timeout bounds a single send or verify call. Zero means no timeout.
	Timeout time.Duration

	Clock  Clock
	OnTick func(remaining int)
	Logger *slog.Logger
}

// PhoneState is a point-in-time copy of a PhoneFlow.
type PhoneState struct {
	PhoneNumber      string
	Stage            OTPStage
	EnteredCode      string
	RemainingSeconds int
	// CodeRequested is true once a send was attempted for the current
	// number; the code input stays visible even when the send failed.
	CodeRequested bool
	Pending       bool
	Outcome       Outcome
	Message       string
	Err           error
	Proof         string
}

// Remaining renders RemainingSeconds as MM:SS.
func (s PhoneState) Remaining() string {
	return FormatRemaining(s.RemainingSeconds)
}

// PhoneFlow drives the send-code / verify-code challenge for one phone
// number. It owns its countdown; Close releases it.
type PhoneFlow struct {
	validatePhone func(string) error
	validateCode  func(string) error
	sender        OTPSender
	verifier      OTPVerifier
	codeSeconds   int
	failOnExpiry  bool
	timeout       time.Duration
	logger        *slog.Logger
	countdown     *Countdown

	mu        sync.Mutex
	phone     string
	code      string
	stage     OTPStage
	requested bool
	pending   bool
	outcome   Outcome
	message   string
	err       error
	proof     string
	expired   bool
	closed    bool
	edits     uint64
}

// NewPhoneFlow creates an idle flow.
func NewPhoneFlow(cfg PhoneConfig) *PhoneFlow {
	f := &PhoneFlow{
		validatePhone: cfg.ValidatePhone,
		validateCode:  cfg.ValidateCode,
		sender:        cfg.Sender,
		verifier:      cfg.Verifier,
		codeSeconds:   cfg.CodeSeconds,
		failOnExpiry:  cfg.FailOnExpiry,
		timeout:       cfg.Timeout,
		logger:        cfg.Logger,
	}
	if f.validatePhone == nil {
		f.validatePhone = requireNonEmpty
	}
	if f.validateCode == nil {
		f.validateCode = requireNonEmpty
	}
	if f.codeSeconds <= 0 {
		f.codeSeconds = DefaultCodeSeconds
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	f.countdown = NewCountdown(CountdownOpts{
		Clock:    cfg.Clock,
		OnTick:   cfg.OnTick,
		OnExpire: f.handleExpiry,
	})
	return f
}

// SetPhoneNumber stores a new number. Editing resets the challenge to Idle
// and stops the countdown.
func (f *PhoneFlow) SetPhoneNumber(phoneNumber string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.phone = phoneNumber
	f.resetLocked()
}

// SetEnteredCode stores the code typed by the user.
func (f *PhoneFlow) SetEnteredCode(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage == StageVerified {
		return ErrPhoneVerified
	}
	f.code = code
	return nil
}

// SendCode requests a code for the current number and (re)starts the
// countdown. The countdown keeps running when the send fails.
func (f *PhoneFlow) SendCode(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return OutcomeNone, ErrRequestInFlight
	}
	if f.stage == StageVerified {
		f.mu.Unlock()
		return OutcomeNone, ErrPhoneVerified
	}
	phone := f.phone
	if err := f.validatePhone(phone); err != nil {
		f.mu.Unlock()
		return OutcomeNone, fmt.Errorf("%w: phone: %w", ErrValidation, err)
	}

	f.stage = StageCodeSent
	f.requested = true
	f.code = ""
	f.proof = ""
	f.outcome = OutcomeNone
	f.message = ""
	f.err = nil
	f.expired = false
	f.pending = true
	edits := f.edits
	f.countdown.Start(f.codeSeconds)
	f.mu.Unlock()

	ctx, cancel := f.callContext(ctx)
	defer cancel()
	res, callErr := f.sender.SendOTP(ctx, phone)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = false
	if edits != f.edits {
		f.logger.Debug("discarding stale otp send result")
		return OutcomeNone, ErrSuperseded
	}

	// Expiry is not applied while the send is pending.
	ranOut := !f.countdown.Running()

	switch {
	case callErr != nil:
		f.stage = StageFailed
		f.outcome = OutcomeError
		f.err = callErr
		f.expired = ranOut
		f.logger.Warn("otp send failed", "error", callErr)
		return OutcomeError, fmt.Errorf("%w: otp send: %w", ErrCollaboratorUnavailable, callErr)
	case !res.Accepted:
		f.stage = StageFailed
		f.outcome = OutcomeRejected
		f.message = res.Message
		f.expired = ranOut
		f.logger.Info("otp send rejected", "message", res.Message)
		return OutcomeRejected, nil
	default:
		if ranOut && !f.closed {
			// The code was delivered after the clock ran out.
			f.countdown.Start(f.codeSeconds)
		}
		f.outcome = OutcomeSuccess
		f.message = res.Message
		return OutcomeSuccess, nil
	}
}

// VerifyCode submits code for the current number. On success the countdown
// is frozen and the number and code are locked until the number is edited.
func (f *PhoneFlow) VerifyCode(ctx context.Context, code string) (Outcome, error) {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return OutcomeNone, ErrRequestInFlight
	}
	if f.stage == StageVerified {
		f.mu.Unlock()
		return OutcomeNone, ErrPhoneVerified
	}
	if !f.requested {
		f.mu.Unlock()
		return OutcomeNone, ErrCodeNotSent
	}
	if f.failOnExpiry && f.expired {
		f.mu.Unlock()
		return OutcomeNone, ErrCodeExpired
	}
	f.code = code
	if err := f.validateCode(code); err != nil {
		f.mu.Unlock()
		return OutcomeNone, fmt.Errorf("%w: code: %w", ErrValidation, err)
	}
	phone := f.phone
	f.pending = true
	edits := f.edits
	f.mu.Unlock()

	ctx, cancel := f.callContext(ctx)
	defer cancel()
	res, callErr := f.verifier.VerifyOTP(ctx, phone, code)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = false
	if edits != f.edits {
		f.logger.Debug("discarding stale otp verify result")
		return OutcomeNone, ErrSuperseded
	}
	ranOut := !f.countdown.Running()

	switch {
	case callErr != nil:
		f.stage = StageFailed
		f.outcome = OutcomeError
		f.err = callErr
		f.expired = ranOut
		f.logger.Warn("otp verify failed", "error", callErr)
		return OutcomeError, fmt.Errorf("%w: otp verify: %w", ErrCollaboratorUnavailable, callErr)
	case !res.Verified:
		f.stage = StageFailed
		f.outcome = OutcomeRejected
		f.err = nil
		f.message = res.Message
		f.expired = ranOut
		f.logger.Info("otp code rejected", "message", res.Message)
		return OutcomeRejected, nil
	default:
		f.countdown.Cancel()
		f.stage = StageVerified
		f.outcome = OutcomeSuccess
		f.err = nil
		f.message = res.Message
		f.proof = res.Proof
		f.logger.Info("phone number verified")
		return OutcomeSuccess, nil
	}
}

// State returns a snapshot of the flow.
func (f *PhoneFlow) State() PhoneState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return PhoneState{
		PhoneNumber:      f.phone,
		Stage:            f.stage,
		EnteredCode:      f.code,
		RemainingSeconds: f.countdown.Remaining(),
		CodeRequested:    f.requested,
		Pending:          f.pending,
		Outcome:          f.outcome,
		Message:          f.message,
		Err:              f.err,
		Proof:            f.proof,
	}
}

// Stage returns the current stage.
func (f *PhoneFlow) Stage() OTPStage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

// CountdownRunning reports whether the code countdown is ticking.
func (f *PhoneFlow) CountdownRunning() bool {
	return f.countdown.Running()
}

// Close stops the countdown. The flow must not be used afterwards.
func (f *PhoneFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.countdown.Cancel()
}

func (f *PhoneFlow) resetLocked() {
	f.countdown.Cancel()
	f.stage = StageIdle
	f.requested = false
	f.code = ""
	f.proof = ""
	f.outcome = OutcomeNone
	f.message = ""
	f.err = nil
	f.expired = false
	f.edits++
}

func (f *PhoneFlow) handleExpiry() {
	f.mu.Lock()
	defer f.mu.Unlock()

	// A new run may have started between expiry and this callback.
	if f.pending || f.countdown.Running() || f.stage != StageCodeSent && f.stage != StageFailed {
		return
	}
	f.expired = true
	f.logger.Info("otp countdown expired", "stage", f.stage.String())
	if f.failOnExpiry && f.stage == StageCodeSent {
		f.stage = StageFailed
	}
}

func (f *PhoneFlow) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout > 0 {
		return context.WithTimeout(ctx, f.timeout)
	}
	return context.WithCancel(ctx)
}
