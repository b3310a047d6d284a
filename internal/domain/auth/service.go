package auth

import (
	"context"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// RegisterRequest carries the fields for a new client account.
type RegisterRequest struct {
	FirstName       string
	LastName        string
	Email           string
	PhoneNumber     string
	DeliveryAddress string
	Password        string
}

// ValidationError reports a rejected registration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Service implements registration, login, and session token handling.
type Service struct {
	users  Repository
	secret []byte

	now func() time.Time
}

// NewService creates an auth Service signing tokens with the given secret.
func NewService(users Repository, jwtSecret []byte) *Service {
	return &Service{
		users:  users,
		secret: jwtSecret,
		now:    time.Now,
	}
}

// Register creates a new client account and returns it with a session token.
// The password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	if err := validateRegister(req); err != nil {
		return nil, "", err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, "", errors.Wrap(err, "check existing email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "hash password")
	}

	u := &User{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		DeliveryAddress: req.DeliveryAddress,
		PasswordHash:    string(hash),
		UserType:        RoleClient,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", errors.Wrap(err, "create user")
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func validateRegister(req RegisterRequest) error {
	switch {
	case strings.TrimSpace(req.FirstName) == "":
		return &ValidationError{Field: "firstName", Reason: "required"}
	case strings.TrimSpace(req.LastName) == "":
		return &ValidationError{Field: "lastName", Reason: "required"}
	case strings.TrimSpace(req.Email) == "":
		return &ValidationError{Field: "email", Reason: "required"}
	case strings.TrimSpace(req.PhoneNumber) == "":
		return &ValidationError{Field: "phoneNumber", Reason: "required"}
	case strings.TrimSpace(req.DeliveryAddress) == "":
		return &ValidationError{Field: "deliveryAddress", Reason: "required"}
	case len(req.Password) < 6:
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return &ValidationError{Field: "email", Reason: "invalid format"}
	}
	return nil
}

// Login verifies the credentials and returns the account with a fresh
// session token. Unknown email and wrong password are indistinguishable to
// the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", errors.Wrap(err, "lookup user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

type sessionClaims struct {
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(u *User) (string, error) {
	now := s.now()
	claims := sessionClaims{
		UserType: u.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Profile returns the account behind an authenticated identity.
func (s *Service) Profile(ctx context.Context, userID int64) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "lookup user")
	}
	return u, nil
}

// VerifyToken parses and validates a session token, returning the identity
// it carries.
func (s *Service) VerifyToken(tokenString string) (Identity, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return Identity{}, errors.Wrap(err, "parse token")
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, errors.Wrap(err, "parse subject")
	}
	return Identity{UserID: userID, UserType: claims.UserType}, nil
}
