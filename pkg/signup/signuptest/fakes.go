package signuptest

import (
	"context"
	"sync"

	"github.com/tendant/simple-signup/pkg/signup"
)

// hold lets a test park collaborator calls until it releases them.
type hold struct {
	gate    chan struct{}
	started chan string
}

func newHold() hold {
	return hold{started: make(chan string, 64)}
}

func (h *hold) wait(ctx context.Context, gate chan struct{}, value string) error {
	select {
	case h.started <- value:
	default:
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Checker is a scripted signup.AvailabilityChecker.
type Checker struct {
	mu        sync.Mutex
	available bool
	err       error
	calls     []string
	hold      hold
}

// NewChecker answers every call with available.
func NewChecker(available bool) *Checker {
	return &Checker{available: available, hold: newHold()}
}

// SetResult changes the answer for later calls.
func (c *Checker) SetResult(available bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available = available
	c.err = err
}

// Hold parks later calls until Release.
func (c *Checker) Hold() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hold.gate = make(chan struct{})
}

// Release lets parked calls finish.
func (c *Checker) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hold.gate != nil {
		close(c.hold.gate)
		c.hold.gate = nil
	}
}

// Started receives the value of every call as it begins.
func (c *Checker) Started() <-chan string {
	return c.hold.started
}

// Calls returns the values the checker was called with.
func (c *Checker) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// CheckAvailability implements signup.AvailabilityChecker.
func (c *Checker) CheckAvailability(ctx context.Context, value string) (bool, error) {
	c.mu.Lock()
	c.calls = append(c.calls, value)
	gate := c.hold.gate
	c.mu.Unlock()

	if err := c.hold.wait(ctx, gate, value); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available, c.err
}

// OTP is a scripted signup.OTPSender and signup.OTPVerifier. It accepts
// exactly one code.
type OTP struct {
	mu        sync.Mutex
	code      string
	accept    bool
	sendErr   error
	verifyErr error
	sends     []string
	verifies  []string
	hold      hold
}

// NewOTP accepts sends and verifies code.
func NewOTP(code string) *OTP {
	return &OTP{code: code, accept: true, hold: newHold()}
}

// RejectSends makes later sends answer accepted=false.
func (o *OTP) RejectSends() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.accept = false
}

// FailSends makes later sends fail with err.
func (o *OTP) FailSends(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sendErr = err
}

// FailVerifies makes later verifies fail with err.
func (o *OTP) FailVerifies(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verifyErr = err
}

// Hold parks later sends until Release.
func (o *OTP) Hold() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hold.gate = make(chan struct{})
}

// Release lets parked sends finish.
func (o *OTP) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hold.gate != nil {
		close(o.hold.gate)
		o.hold.gate = nil
	}
}

// Started receives the phone number of every send as it begins.
func (o *OTP) Started() <-chan string {
	return o.hold.started
}

// Sends returns the numbers codes were sent to.
func (o *OTP) Sends() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.sends...)
}

// Verifies returns the codes that were checked.
func (o *OTP) Verifies() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.verifies...)
}

// SendOTP implements signup.OTPSender.
func (o *OTP) SendOTP(ctx context.Context, phoneNumber string) (signup.SendResult, error) {
	o.mu.Lock()
	o.sends = append(o.sends, phoneNumber)
	gate := o.hold.gate
	o.mu.Unlock()

	if err := o.hold.wait(ctx, gate, phoneNumber); err != nil {
		return signup.SendResult{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sendErr != nil {
		return signup.SendResult{}, o.sendErr
	}
	if !o.accept {
		return signup.SendResult{Accepted: false, Message: "too many requests"}, nil
	}
	return signup.SendResult{Accepted: true, Message: "code sent"}, nil
}

// VerifyOTP implements signup.OTPVerifier.
func (o *OTP) VerifyOTP(ctx context.Context, phoneNumber, code string) (signup.VerifyResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verifies = append(o.verifies, code)
	if o.verifyErr != nil {
		return signup.VerifyResult{}, o.verifyErr
	}
	if code != o.code {
		return signup.VerifyResult{Verified: false, Message: "invalid code"}, nil
	}
	return signup.VerifyResult{Verified: true, Message: "verified", Proof: "proof:" + phoneNumber}, nil
}
