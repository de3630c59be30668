package signup_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tendant/simple-signup/pkg/signup"
	"github.com/tendant/simple-signup/pkg/signup/signuptest"
)

func newField(checker signup.AvailabilityChecker) *signup.Field {
	return signup.NewField(signup.FieldConfig{
		Name: "nickname",
		Validate: func(v string) error {
			if len(v) < 2 {
				return fmt.Errorf("nickname must be at least 2 characters long")
			}
			return nil
		},
		Checker: checker,
	})
}

func TestField_CheckAvailable(t *testing.T) {
	checker := signuptest.NewChecker(true)
	f := newField(checker)
	f.SetValue("abc")

	outcome, err := f.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if outcome != signup.OutcomeSuccess {
		t.Errorf("Check() outcome = %v, want %v", outcome, signup.OutcomeSuccess)
	}

	state := f.State()
	if state.Status != signup.StatusAvailable {
		t.Errorf("Status = %v, want %v", state.Status, signup.StatusAvailable)
	}
	if state.Pending {
		t.Error("Pending = true after check completed")
	}
	if state.DisplayState() != signup.DisplaySuccess {
		t.Errorf("DisplayState() = %v, want %v", state.DisplayState(), signup.DisplaySuccess)
	}
}

func TestField_SetValueResetsStatus(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		err       error
	}{
		{name: "after available", available: true},
		{name: "after taken", available: false},
		{name: "after error", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := signuptest.NewChecker(tt.available)
			checker.SetResult(tt.available, tt.err)
			f := newField(checker)
			f.SetValue("abc")
			f.Check(context.Background())

			f.SetValue("abcd")

			state := f.State()
			if state.Status != signup.StatusUnverified {
				t.Errorf("Status = %v, want %v", state.Status, signup.StatusUnverified)
			}
			if state.Outcome != signup.OutcomeNone {
				t.Errorf("Outcome = %v, want %v", state.Outcome, signup.OutcomeNone)
			}
			if state.Err != nil {
				t.Errorf("Err = %v, want nil", state.Err)
			}
			if state.Value != "abcd" {
				t.Errorf("Value = %q, want %q", state.Value, "abcd")
			}
			if got := len(checker.Calls()); got != 1 {
				t.Errorf("collaborator calls = %d, want 1", got)
			}
		})
	}
}

func TestField_ValidationFailureSkipsCollaborator(t *testing.T) {
	checker := signuptest.NewChecker(true)
	f := newField(checker)
	f.SetValue("a")

	outcome, err := f.Check(context.Background())
	if !errors.Is(err, signup.ErrValidation) {
		t.Errorf("Check() error = %v, want %v", err, signup.ErrValidation)
	}
	if outcome != signup.OutcomeNone {
		t.Errorf("Check() outcome = %v, want %v", outcome, signup.OutcomeNone)
	}
	if got := len(checker.Calls()); got != 0 {
		t.Errorf("collaborator calls = %d, want 0", got)
	}
	if got := f.Status(); got != signup.StatusUnverified {
		t.Errorf("Status = %v, want %v", got, signup.StatusUnverified)
	}
}

func TestField_DefaultValidatorRejectsEmpty(t *testing.T) {
	checker := signuptest.NewChecker(true)
	f := signup.NewField(signup.FieldConfig{Name: "email", Checker: checker})

	if _, err := f.Check(context.Background()); !errors.Is(err, signup.ErrValidation) {
		t.Errorf("Check() error = %v, want %v", err, signup.ErrValidation)
	}
}

func TestField_TakenVersusCollaboratorError(t *testing.T) {
	tests := []struct {
		name        string
		available   bool
		err         error
		wantOutcome signup.Outcome
		wantErr     error
	}{
		{
			name:        "taken",
			available:   false,
			wantOutcome: signup.OutcomeRejected,
		},
		{
			name:        "network error",
			err:         errors.New("502 bad gateway"),
			wantOutcome: signup.OutcomeError,
			wantErr:     signup.ErrCollaboratorUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := signuptest.NewChecker(tt.available)
			checker.SetResult(tt.available, tt.err)
			f := newField(checker)
			f.SetValue("abc")

			outcome, err := f.Check(context.Background())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Check() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Check() error = %v, want %v", err, tt.wantErr)
			}
			if outcome != tt.wantOutcome {
				t.Errorf("Check() outcome = %v, want %v", outcome, tt.wantOutcome)
			}

			state := f.State()
			if state.Status != signup.StatusUnavailable {
				t.Errorf("Status = %v, want %v", state.Status, signup.StatusUnavailable)
			}
			if state.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %v, want %v", state.Outcome, tt.wantOutcome)
			}
			if (state.Err != nil) != (tt.err != nil) {
				t.Errorf("Err = %v, want %v", state.Err, tt.err)
			}
			// Both degrade to the same button state.
			if state.DisplayState() != signup.DisplayFailed {
				t.Errorf("DisplayState() = %v, want %v", state.DisplayState(), signup.DisplayFailed)
			}
		})
	}
}

func TestField_RepeatedChecksCallCollaboratorEachTime(t *testing.T) {
	checker := signuptest.NewChecker(true)
	f := newField(checker)
	f.SetValue("abc")

	for i := 0; i < 2; i++ {
		outcome, err := f.Check(context.Background())
		if err != nil {
			t.Fatalf("Check() #%d error = %v", i+1, err)
		}
		if outcome != signup.OutcomeSuccess {
			t.Errorf("Check() #%d outcome = %v, want %v", i+1, outcome, signup.OutcomeSuccess)
		}
		if got := f.Status(); got != signup.StatusAvailable {
			t.Errorf("Status after check #%d = %v, want %v", i+1, got, signup.StatusAvailable)
		}
	}

	if got := len(checker.Calls()); got != 2 {
		t.Errorf("collaborator calls = %d, want 2", got)
	}
}

func TestField_RetryAfterFailure(t *testing.T) {
	checker := signuptest.NewChecker(true)
	checker.SetResult(false, errors.New("timeout"))
	f := newField(checker)
	f.SetValue("abc")

	if _, err := f.Check(context.Background()); !errors.Is(err, signup.ErrCollaboratorUnavailable) {
		t.Fatalf("first Check() error = %v, want %v", err, signup.ErrCollaboratorUnavailable)
	}

	checker.SetResult(true, nil)
	if _, err := f.Check(context.Background()); err != nil {
		t.Fatalf("retry Check() error = %v", err)
	}
	if got := f.Status(); got != signup.StatusAvailable {
		t.Errorf("Status = %v, want %v", got, signup.StatusAvailable)
	}
}

func TestField_SingleOutstandingCheck(t *testing.T) {
	checker := signuptest.NewChecker(true)
	checker.Hold()
	f := newField(checker)
	f.SetValue("abc")

	done := make(chan error, 1)
	go func() {
		_, err := f.Check(context.Background())
		done <- err
	}()

	select {
	case <-checker.Started():
	case <-time.After(2 * time.Second):
		t.Fatal("first check never reached the collaborator")
	}

	state := f.State()
	if !state.Pending {
		t.Error("Pending = false while check is in flight")
	}
	if state.DisplayState() != signup.DisplayPending {
		t.Errorf("DisplayState() = %v, want %v", state.DisplayState(), signup.DisplayPending)
	}

	if _, err := f.Check(context.Background()); !errors.Is(err, signup.ErrRequestInFlight) {
		t.Errorf("second Check() error = %v, want %v", err, signup.ErrRequestInFlight)
	}
	if got := len(checker.Calls()); got != 1 {
		t.Errorf("collaborator calls = %d, want 1", got)
	}

	checker.Release()
	if err := <-done; err != nil {
		t.Fatalf("first Check() error = %v", err)
	}
	if got := f.Status(); got != signup.StatusAvailable {
		t.Errorf("Status = %v, want %v", got, signup.StatusAvailable)
	}
}

func TestField_EditDuringCheckDiscardsResult(t *testing.T) {
	checker := signuptest.NewChecker(true)
	checker.Hold()
	f := newField(checker)
	f.SetValue("abc")

	done := make(chan error, 1)
	go func() {
		_, err := f.Check(context.Background())
		done <- err
	}()
	<-checker.Started()

	f.SetValue("xyz")

	// The in-flight call still counts as outstanding.
	if _, err := f.Check(context.Background()); !errors.Is(err, signup.ErrRequestInFlight) {
		t.Errorf("Check() during stale call error = %v, want %v", err, signup.ErrRequestInFlight)
	}

	checker.Release()
	if err := <-done; !errors.Is(err, signup.ErrSuperseded) {
		t.Errorf("stale Check() error = %v, want %v", err, signup.ErrSuperseded)
	}

	state := f.State()
	if state.Status != signup.StatusUnverified {
		t.Errorf("Status = %v, want %v", state.Status, signup.StatusUnverified)
	}
	if state.Pending {
		t.Error("Pending = true after stale call resolved")
	}
}

func TestField_Timeout(t *testing.T) {
	checker := signuptest.NewChecker(true)
	checker.Hold()
	defer checker.Release()
	f := signup.NewField(signup.FieldConfig{
		Name:    "email",
		Checker: checker,
		Timeout: 20 * time.Millisecond,
	})
	f.SetValue("a@b.com")

	outcome, err := f.Check(context.Background())
	if !errors.Is(err, signup.ErrCollaboratorUnavailable) {
		t.Errorf("Check() error = %v, want %v", err, signup.ErrCollaboratorUnavailable)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Check() error = %v, want deadline exceeded", err)
	}
	if outcome != signup.OutcomeError {
		t.Errorf("Check() outcome = %v, want %v", outcome, signup.OutcomeError)
	}
}
