package signup

// BlockReason is the single message shown when submission is refused.
type BlockReason string

const (
	ReasonPasswordMismatch    BlockReason = "password mismatch"
	ReasonEmailNotVerified    BlockReason = "email not verified"
	ReasonNicknameNotVerified BlockReason = "nickname not verified"
	ReasonPhoneNotVerified    BlockReason = "phone not verified"
	ReasonAddressNotVerified  BlockReason = "address not verified"
)

// GateInput is everything the submission gate looks at.
type GateInput struct {
	Email         FieldStatus
	Nickname      FieldStatus
	Address       FieldStatus
	Phone         OTPStage
	BaseFormValid bool
}

// Readiness is either Ready or Blocked with a reason.
type Readiness struct {
	Ready  bool
	Reason BlockReason
}

// Blocked reports whether submission is refused.
func (r Readiness) Blocked() bool {
	return !r.Ready
}

func (r Readiness) String() string {
	if r.Ready {
		return "ready"
	}
	return "blocked: " + string(r.Reason)
}

// Err returns the sentinel error matching the block reason, or nil when ready.
func (r Readiness) Err() error {
	if r.Ready {
		return nil
	}
	switch r.Reason {
	case ReasonPasswordMismatch:
		return ErrPasswordMismatch
	case ReasonEmailNotVerified:
		return ErrEmailNotVerified
	case ReasonNicknameNotVerified:
		return ErrNicknameNotVerified
	case ReasonPhoneNotVerified:
		return ErrPhoneNotVerified
	default:
		return ErrAddressNotVerified
	}
}

// Evaluate decides whether the form may be submitted. Checks run in a fixed
// order and the first failing one is reported.
func Evaluate(in GateInput) Readiness {
	switch {
	case !in.BaseFormValid:
		return blocked(ReasonPasswordMismatch)
	case in.Email != StatusAvailable:
		return blocked(ReasonEmailNotVerified)
	case in.Nickname != StatusAvailable:
		return blocked(ReasonNicknameNotVerified)
	case in.Phone != StageVerified:
		return blocked(ReasonPhoneNotVerified)
	case in.Address != StatusAvailable:
		return blocked(ReasonAddressNotVerified)
	}
	return Readiness{Ready: true}
}

func blocked(reason BlockReason) Readiness {
	return Readiness{Reason: reason}
}
