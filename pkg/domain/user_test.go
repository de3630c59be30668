package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUser_Address(t *testing.T) {
	tests := []struct {
		name     string
		region   string
		district string
		want     string
	}{
		{
			name:     "region and district",
			region:   "Seoul",
			district: "Mapo-gu",
			want:     "Seoul Mapo-gu",
		},
		{
			name:   "region only",
			region: "Sejong",
			want:   "Sejong",
		},
		{
			name:     "district only",
			district: "Jung-gu",
			want:     "Jung-gu",
		},
		{
			name: "neither",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{
				ID:       uuid.New(),
				Email:    "test@example.com",
				Region:   tt.region,
				District: tt.district,
			}
			if got := user.Address(); got != tt.want {
				t.Errorf("Address() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		input   string
		want    Gender
		wantErr bool
	}{
		{input: "female", want: GenderFemale},
		{input: "F", want: GenderFemale},
		{input: "여성", want: GenderFemale},
		{input: "male", want: GenderMale},
		{input: "M", want: GenderMale},
		{input: "남성", want: GenderMale},
		{input: "", wantErr: true},
		{input: "other", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseGender(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGender(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && err != ErrInvalidGender {
				t.Errorf("ParseGender(%q) error = %v, want %v", tt.input, err, ErrInvalidGender)
			}
			if got != tt.want {
				t.Errorf("ParseGender(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPhoneCode_IsExpired(t *testing.T) {
	now := time.Now()
	code := &PhoneCode{
		PhoneNumber: "010-1234-5678",
		IssuedAt:    now,
		ExpiresAt:   now.Add(180 * time.Second),
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "just issued", at: now, want: false},
		{name: "one second left", at: now.Add(179 * time.Second), want: false},
		{name: "at expiry", at: now.Add(180 * time.Second), want: true},
		{name: "after expiry", at: now.Add(time.Hour), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := code.IsExpired(tt.at); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserPassword_Struct(t *testing.T) {
	userID := uuid.New()
	hash := "$argon2id$v=19$m=65536,t=1,p=4$..."
	now := time.Now()

	pwd := UserPassword{
		UserID:            userID,
		PasswordHash:      hash,
		PasswordUpdatedAt: now,
	}

	if pwd.UserID != userID {
		t.Errorf("UserID: got %v, want %v", pwd.UserID, userID)
	}
	if pwd.PasswordHash != hash {
		t.Errorf("PasswordHash: got %v, want %v", pwd.PasswordHash, hash)
	}
	if !pwd.PasswordUpdatedAt.Equal(now) {
		t.Errorf("PasswordUpdatedAt: got %v, want %v", pwd.PasswordUpdatedAt, now)
	}
}
