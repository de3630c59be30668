package signup_test

import (
	"errors"
	"testing"

	"github.com/tendant/simple-signup/pkg/signup"
)

func TestEvaluate(t *testing.T) {
	ready := signup.GateInput{
		Email:         signup.StatusAvailable,
		Nickname:      signup.StatusAvailable,
		Address:       signup.StatusAvailable,
		Phone:         signup.StageVerified,
		BaseFormValid: true,
	}

	tests := []struct {
		name       string
		mutate     func(in *signup.GateInput)
		wantReady  bool
		wantReason signup.BlockReason
		wantErr    error
	}{
		{
			name:      "all verified",
			mutate:    func(in *signup.GateInput) {},
			wantReady: true,
		},
		{
			name:       "password mismatch",
			mutate:     func(in *signup.GateInput) { in.BaseFormValid = false },
			wantReason: signup.ReasonPasswordMismatch,
			wantErr:    signup.ErrPasswordMismatch,
		},
		{
			name:       "email unverified",
			mutate:     func(in *signup.GateInput) { in.Email = signup.StatusUnverified },
			wantReason: signup.ReasonEmailNotVerified,
			wantErr:    signup.ErrEmailNotVerified,
		},
		{
			name:       "email taken",
			mutate:     func(in *signup.GateInput) { in.Email = signup.StatusUnavailable },
			wantReason: signup.ReasonEmailNotVerified,
			wantErr:    signup.ErrEmailNotVerified,
		},
		{
			name:       "nickname unverified",
			mutate:     func(in *signup.GateInput) { in.Nickname = signup.StatusUnverified },
			wantReason: signup.ReasonNicknameNotVerified,
			wantErr:    signup.ErrNicknameNotVerified,
		},
		{
			name:       "phone code sent",
			mutate:     func(in *signup.GateInput) { in.Phone = signup.StageCodeSent },
			wantReason: signup.ReasonPhoneNotVerified,
			wantErr:    signup.ErrPhoneNotVerified,
		},
		{
			name:       "phone failed",
			mutate:     func(in *signup.GateInput) { in.Phone = signup.StageFailed },
			wantReason: signup.ReasonPhoneNotVerified,
			wantErr:    signup.ErrPhoneNotVerified,
		},
		{
			name:       "address unverified",
			mutate:     func(in *signup.GateInput) { in.Address = signup.StatusUnverified },
			wantReason: signup.ReasonAddressNotVerified,
			wantErr:    signup.ErrAddressNotVerified,
		},
		{
			name: "password mismatch wins over everything",
			mutate: func(in *signup.GateInput) {
				*in = signup.GateInput{}
			},
			wantReason: signup.ReasonPasswordMismatch,
			wantErr:    signup.ErrPasswordMismatch,
		},
		{
			name: "email before nickname",
			mutate: func(in *signup.GateInput) {
				in.Email = signup.StatusUnverified
				in.Nickname = signup.StatusUnavailable
			},
			wantReason: signup.ReasonEmailNotVerified,
			wantErr:    signup.ErrEmailNotVerified,
		},
		{
			name: "phone before address",
			mutate: func(in *signup.GateInput) {
				in.Phone = signup.StageIdle
				in.Address = signup.StatusUnverified
			},
			wantReason: signup.ReasonPhoneNotVerified,
			wantErr:    signup.ErrPhoneNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ready
			tt.mutate(&in)

			got := signup.Evaluate(in)
			if got.Ready != tt.wantReady {
				t.Errorf("Ready = %v, want %v", got.Ready, tt.wantReady)
			}
			if got.Blocked() == tt.wantReady {
				t.Errorf("Blocked() = %v, want %v", got.Blocked(), !tt.wantReady)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if err := got.Err(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Err() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadiness_String(t *testing.T) {
	if got := (signup.Readiness{Ready: true}).String(); got != "ready" {
		t.Errorf("String() = %q, want %q", got, "ready")
	}
	blocked := signup.Readiness{Reason: signup.ReasonPhoneNotVerified}
	if got := blocked.String(); got != "blocked: phone not verified" {
		t.Errorf("String() = %q, want %q", got, "blocked: phone not verified")
	}
}

func TestForm(t *testing.T) {
	tests := []struct {
		name          string
		form          signup.Form
		wantValid     bool
		wantBirthdate string
		wantAddress   string
	}{
		{
			name: "complete",
			form: signup.Form{
				Password:        "secret1!",
				PasswordConfirm: "secret1!",
				BirthYear:       "1994",
				Region:          "Seoul",
				District:        "Gangnam-gu",
			},
			wantValid:     true,
			wantBirthdate: "1994-01-01",
			wantAddress:   "Seoul Gangnam-gu",
		},
		{
			name:        "mismatched passwords",
			form:        signup.Form{Password: "a", PasswordConfirm: "b", Region: "Busan"},
			wantAddress: "Busan",
		},
		{
			name:        "empty confirmation",
			form:        signup.Form{Password: "a"},
			wantAddress: "",
		},
		{
			name:        "empty passwords",
			form:        signup.Form{District: "Jung-gu"},
			wantValid:   true,
			wantAddress: "Jung-gu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.form.Valid(); got != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", got, tt.wantValid)
			}
			if got := tt.form.Birthdate(); got != tt.wantBirthdate {
				t.Errorf("Birthdate() = %q, want %q", got, tt.wantBirthdate)
			}
			if got := tt.form.Address(); got != tt.wantAddress {
				t.Errorf("Address() = %q, want %q", got, tt.wantAddress)
			}
		})
	}
}
