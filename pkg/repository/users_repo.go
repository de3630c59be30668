package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tendant/simple-signup/pkg/domain"
)

// Postgres unique constraint names from migrations/001_init.sql.
const (
	constraintUsersEmail    = "users_email_key"
	constraintUsersNickname = "users_nickname_key"
	constraintUsersAddress  = "users_address_slug_key"
	constraintUsersPhone    = "users_phone_number_key"
)

// UsersRepository handles user persistence.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

const insertUserQuery = `
	INSERT INTO users (id, email, nickname, name, phone_number, phone_verified, address_slug,
	                   region, district, birthdate, gender, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

// CreateTx creates a new user within a transaction. Unique violations are
// mapped to the matching domain error.
func (r *UsersRepository) CreateTx(ctx context.Context, q Querier, user *domain.User) error {
	_, err := q.ExecContext(ctx, insertUserQuery,
		user.ID, user.Email, user.Nickname, user.Name, user.PhoneNumber, user.PhoneVerified,
		user.AddressSlug, user.Region, user.District, user.Birthdate, user.Gender,
		user.CreatedAt, user.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

// GetByID retrieves a user by ID.
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, nickname, name, phone_number, phone_verified, address_slug,
		       region, district, birthdate, gender, created_at, updated_at, deleted_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.Nickname, &user.Name, &user.PhoneNumber, &user.PhoneVerified,
		&user.AddressSlug, &user.Region, &user.District, &user.Birthdate, &user.Gender,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ExistsByEmail checks if a user exists by email.
func (r *UsersRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`, email)
}

// ExistsByNickname checks if a nickname is taken. Comparison is case-insensitive.
func (r *UsersRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(nickname) = lower($1) AND deleted_at IS NULL)`, nickname)
}

// ExistsByAddressSlug checks if a public address is taken.
func (r *UsersRepository) ExistsByAddressSlug(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE address_slug = $1 AND deleted_at IS NULL)`, slug)
}

// ExistsByPhoneNumber checks if a phone number already belongs to a member.
func (r *UsersRepository) ExistsByPhoneNumber(ctx context.Context, phoneNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE phone_number = $1 AND deleted_at IS NULL)`, phoneNumber)
}

func (r *UsersRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&exists)
	return exists, err
}

// mapUniqueViolation turns a unique_violation on a users column into the
// domain error for that column. A concurrent signup can pass the
// availability checks and still lose the insert race.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}
	switch pqErr.Constraint {
	case constraintUsersEmail:
		return domain.ErrUserAlreadyExists
	case constraintUsersNickname:
		return domain.ErrNicknameAlreadyExists
	case constraintUsersAddress:
		return domain.ErrAddressAlreadyExists
	case constraintUsersPhone:
		return domain.ErrPhoneAlreadyRegistered
	}
	return err
}
