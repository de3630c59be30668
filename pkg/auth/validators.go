package auth

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tendant/simple-signup/pkg/domain"
)

const (
	nicknameMinLen = 2
	nicknameMaxLen = 16
	otpCodeDigits  = 6
	minBirthYear   = 1900
)

// Address slugs: lower-case letters, digits, hyphen and underscore, starting
// with a letter or digit.
var addressSlugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,29}$`)

// Korean mobile numbers: 010 plus 8 digits, or a legacy 01x prefix with 7-8.
var mobileRegex = regexp.MustCompile(`^(?:010\d{8}|01[16789]\d{7,8})$`)

// ValidateNickname accepts 2-16 letters (any script), digits or underscores.
func ValidateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n < nicknameMinLen || n > nicknameMaxLen {
		return domain.ErrInvalidNickname
	}
	for _, r := range nickname {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return domain.ErrInvalidNickname
		}
	}
	return nil
}

// ValidateAddressSlug checks the public address format.
func ValidateAddressSlug(slug string) error {
	if !addressSlugRegex.MatchString(slug) {
		return domain.ErrInvalidAddressSlug
	}
	return nil
}

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhoneNumber renders typed input as the user sees it while typing:
// digits only, grouped 3-4-4. Partial input is grouped as far as it goes and
// anything past 11 digits is dropped.
func FormatPhoneNumber(input string) string {
	digits := DigitsOnly(input)
	if len(digits) > 11 {
		digits = digits[:11]
	}
	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 7:
		return digits[:3] + "-" + digits[3:]
	default:
		return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
	}
}

// NormalizePhoneNumber validates a mobile number and returns its canonical
// 3-4-4 (or 3-3-4 for 10 digits) form.
func NormalizePhoneNumber(input string) (string, error) {
	digits := DigitsOnly(input)
	if !mobileRegex.MatchString(digits) {
		return "", domain.ErrInvalidPhoneNumber
	}
	if len(digits) == 10 {
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:], nil
	}
	return digits[:3] + "-" + digits[3:7] + "-" + digits[7:], nil
}

// ValidatePhoneNumber reports whether input is a usable mobile number.
func ValidatePhoneNumber(input string) error {
	_, err := NormalizePhoneNumber(input)
	return err
}

// ValidateOTPCode checks that code is exactly six digits.
func ValidateOTPCode(code string) error {
	if len(code) != otpCodeDigits || DigitsOnly(code) != code {
		return domain.ErrInvalidOTPCode
	}
	return nil
}

// ParseBirthYear turns a four-digit year into the stored YYYY-01-01 date.
func ParseBirthYear(year string, now time.Time) (time.Time, error) {
	y, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 || y < minBirthYear || y > now.Year() {
		return time.Time{}, domain.ErrInvalidBirthYear
	}
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), nil
}
