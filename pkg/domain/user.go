package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered member.
type User struct {
	ID            uuid.UUID
	Email         string
	Nickname      string
	Name          *string
	PhoneNumber   string
	PhoneVerified bool
	// AddressSlug is the member's public address, e.g. melpick.com/<slug>.
	AddressSlug string
	Region      string
	District    string
	Birthdate   *time.Time
	Gender      *Gender
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Address joins region and district the way the signup form displays it.
func (u *User) Address() string {
	switch {
	case u.Region == "":
		return u.District
	case u.District == "":
		return u.Region
	}
	return u.Region + " " + u.District
}

// UserPassword stores password credentials separately from user profile.
type UserPassword struct {
	UserID            uuid.UUID
	PasswordHash      string
	PasswordUpdatedAt time.Time
}

// Gender is the self-declared gender collected at signup.
type Gender string

// Gender constants
const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// ParseGender accepts the stored values and the form labels.
func ParseGender(s string) (Gender, error) {
	switch s {
	case "female", "F", "f", "여성":
		return GenderFemale, nil
	case "male", "M", "m", "남성":
		return GenderMale, nil
	}
	return "", ErrInvalidGender
}
