// Package auth handles customer/employee accounts, credential verification,
// and the JWT session tokens the API authenticates with.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// User roles. New registrations are always clients; employee accounts are
// provisioned by the seed tooling or manually.
const (
	RoleClient   = "Client"
	RoleEmployee = "Employee"
)

// Sentinel errors for the auth flows.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// User is an account row. PasswordHash is a bcrypt hash and never leaves
// the package.
type User struct {
	UserID          int64
	FirstName       string
	LastName        string
	Email           string
	PhoneNumber     string
	DeliveryAddress string
	PasswordHash    string
	UserType        string
}

// IsEmployee reports whether the user holds the staff role.
func (u *User) IsEmployee() bool {
	return u.UserType == RoleEmployee
}

// Repository persists user accounts.
type Repository interface {
	// GetByEmail returns ErrUserNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	// Create assigns UserID on success.
	Create(ctx context.Context, u *User) error
}

// identityKey is the context key under which the authenticated identity is
// stored by the API middleware.
type identityKey struct{}

// Identity is the authenticated caller extracted from a session token.
type Identity struct {
	UserID   int64
	UserType string
}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the authenticated identity from the context.
// ok is false for anonymous requests.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
