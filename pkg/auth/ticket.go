package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/simple-signup/pkg/domain"
)

// TicketConfig holds settings for phone verification tickets.
type TicketConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// TicketClaims are carried by a phone verification ticket. The ticket is the
// proof handed back after a successful code check and required on register.
type TicketClaims struct {
	jwt.RegisteredClaims
	PhoneNumber string `json:"phone_number"`
}

// TicketIssuer signs and checks phone verification tickets.
type TicketIssuer struct {
	config TicketConfig
	now    func() time.Time
}

// NewTicketIssuer creates a TicketIssuer.
func NewTicketIssuer(cfg TicketConfig) *TicketIssuer {
	return &TicketIssuer{config: cfg, now: time.Now}
}

// TTL returns how long an issued ticket stays valid.
func (t *TicketIssuer) TTL() time.Duration {
	return t.config.TTL
}

// Issue returns a signed ticket for a verified phone number.
func (t *TicketIssuer) Issue(phoneNumber string) (string, error) {
	now := t.now()
	claims := TicketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   phoneNumber,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.TTL)),
			Issuer:    t.config.Issuer,
			ID:        uuid.New().String(),
		},
		PhoneNumber: phoneNumber,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.config.Secret)
}

// Verify checks the ticket signature, issuer and expiry, and that it was
// issued for phoneNumber.
func (t *TicketIssuer) Verify(ticket, phoneNumber string) (*TicketClaims, error) {
	token, err := jwt.ParseWithClaims(ticket, &TicketClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidTicket
		}
		return t.config.Secret, nil
	}, jwt.WithIssuer(t.config.Issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, domain.ErrInvalidTicket
	}

	claims, ok := token.Claims.(*TicketClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidTicket
	}
	if claims.PhoneNumber != phoneNumber {
		return nil, domain.ErrTicketPhoneMismatch
	}
	return claims, nil
}
