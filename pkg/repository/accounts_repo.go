package repository

import (
	"context"
	"database/sql"

	"github.com/tendant/simple-signup/pkg/domain"
)

// AccountsRepository creates a member and their password credential together.
type AccountsRepository struct {
	db    *sql.DB
	users *UsersRepository
	creds *CredentialsRepository
}

// NewAccountsRepository creates a new accounts repository.
func NewAccountsRepository(db *sql.DB, users *UsersRepository, creds *CredentialsRepository) *AccountsRepository {
	return &AccountsRepository{db: db, users: users, creds: creds}
}

// CreateAccount inserts the user and credential in one transaction.
func (r *AccountsRepository) CreateAccount(ctx context.Context, user *domain.User, cred *domain.UserPassword) error {
	return Tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.users.CreateTx(ctx, tx, user); err != nil {
			return err
		}
		return r.creds.CreateTx(ctx, tx, cred)
	})
}
