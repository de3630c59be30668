package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-signup/pkg/domain"
)

// MemoryAccounts keeps members in memory. It enforces the same uniqueness
// rules as the users table and is used for local runs and tests.
type MemoryAccounts struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
	creds map[uuid.UUID]*domain.UserPassword
}

// NewMemoryAccounts creates an empty store.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		users: make(map[uuid.UUID]*domain.User),
		creds: make(map[uuid.UUID]*domain.UserPassword),
	}
}

// CreateAccount stores the user and credential, failing on a duplicate.
func (m *MemoryAccounts) CreateAccount(_ context.Context, user *domain.User, cred *domain.UserPassword) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		switch {
		case u.Email == user.Email:
			return domain.ErrUserAlreadyExists
		case strings.EqualFold(u.Nickname, user.Nickname):
			return domain.ErrNicknameAlreadyExists
		case u.AddressSlug == user.AddressSlug:
			return domain.ErrAddressAlreadyExists
		case u.PhoneNumber == user.PhoneNumber:
			return domain.ErrPhoneAlreadyRegistered
		}
	}

	stored := *user
	m.users[user.ID] = &stored
	storedCred := *cred
	m.creds[user.ID] = &storedCred
	return nil
}

// GetByID retrieves a user by ID.
func (m *MemoryAccounts) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := *u
	return &user, nil
}

// GetCredential retrieves the password credential for a user.
func (m *MemoryAccounts) GetCredential(_ context.Context, id uuid.UUID) (*domain.UserPassword, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.creds[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cred := *c
	return &cred, nil
}

func (m *MemoryAccounts) exists(match func(*domain.User) bool) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			return true
		}
	}
	return false
}

// ExistsByEmail checks if an e-mail is registered.
func (m *MemoryAccounts) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return m.exists(func(u *domain.User) bool { return u.Email == email }), nil
}

// ExistsByNickname checks case-insensitively if a nickname is taken.
func (m *MemoryAccounts) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	return m.exists(func(u *domain.User) bool { return strings.EqualFold(u.Nickname, nickname) }), nil
}

// ExistsByAddressSlug checks if an address slug is taken.
func (m *MemoryAccounts) ExistsByAddressSlug(_ context.Context, slug string) (bool, error) {
	return m.exists(func(u *domain.User) bool { return u.AddressSlug == slug }), nil
}

// ExistsByPhoneNumber checks if a phone number is registered.
func (m *MemoryAccounts) ExistsByPhoneNumber(_ context.Context, phoneNumber string) (bool, error) {
	return m.exists(func(u *domain.User) bool { return u.PhoneNumber == phoneNumber }), nil
}
