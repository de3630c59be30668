package auth

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/tendant/simple-signup/pkg/domain"
)

// Email validation regex (stricter than RFC 5322 for practical use)
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

const maxEmailLength = 254 // RFC 5321

// EmailRules configures ValidateEmail.
type EmailRules struct {
	Strict bool
	// Blocked rejects domains listed in ReservedNames when set.
	Blocked *ReservedNames
}

// ValidateEmail validates an email address for format and length. Every
// failure wraps domain.ErrInvalidEmail.
func ValidateEmail(email string, rules EmailRules) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email address is required", domain.ErrInvalidEmail)
	}

	// Check length
	if len(email) > maxEmailLength {
		return fmt.Errorf("%w: email address is too long (max %d characters)", domain.ErrInvalidEmail, maxEmailLength)
	}

	normalized := NormalizeEmail(email)

	// mail.ParseAddress accepts display names; only a bare address is valid here.
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return fmt.Errorf("%w: invalid email address format", domain.ErrInvalidEmail)
	}

	if rules.Strict && !emailRegex.MatchString(addr.Address) {
		return fmt.Errorf("%w: invalid email address format", domain.ErrInvalidEmail)
	}

	if rules.Blocked.IsBlockedEmailDomain(getDomain(addr.Address)) {
		return fmt.Errorf("%w: disposable email addresses are not allowed", domain.ErrInvalidEmail)
	}

	return nil
}

// NormalizeEmail normalizes an email address by lowercasing and trimming.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// getDomain extracts the domain from an email address.
func getDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
