package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorandme/restaurant-api/internal/domain/auth"
)

const (
	getUserByEmailSQL = `SELECT user_id, first_name, last_name, email, phone_number,
		delivery_address, password_hash, user_type
		FROM users WHERE LOWER(email) = LOWER($1)`

	getUserByIDSQL = `SELECT user_id, first_name, last_name, email, phone_number,
		delivery_address, password_hash, user_type
		FROM users WHERE user_id = $1`

	insertUserSQL = `INSERT INTO users (first_name, last_name, email, phone_number,
		delivery_address, password_hash, user_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING user_id`
)

var _ auth.Repository = (*UserRepository)(nil)

// UserRepository implements auth.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByEmail looks up an account by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, getUserByEmailSQL, email)
}

// GetByID looks up an account by its identifier.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*auth.User, error) {
	return r.getOne(ctx, getUserByIDSQL, userID)
}

func (r *UserRepository) getOne(ctx context.Context, sql string, arg any) (*auth.User, error) {
	var u auth.User
	err := r.pool.QueryRow(ctx, sql, arg).Scan(
		&u.UserID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber,
		&u.DeliveryAddress, &u.PasswordHash, &u.UserType,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// Create inserts a new account and assigns its generated id.
func (r *UserRepository) Create(ctx context.Context, u *auth.User) error {
	err := r.pool.QueryRow(ctx, insertUserSQL,
		u.FirstName, u.LastName, u.Email, u.PhoneNumber,
		u.DeliveryAddress, u.PasswordHash, u.UserType,
	).Scan(&u.UserID)
	if err != nil {
		return fmt.Errorf("creating user %q: %w", u.Email, err)
	}
	return nil
}
