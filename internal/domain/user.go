package domain

import (
	"context"
	"time"
)

// User represents a registered host account.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}

// AuthEventType identifies a session lifecycle notification.
type AuthEventType string

const (
	AuthEventSignedIn       AuthEventType = "SIGNED_IN"
	AuthEventSignedOut      AuthEventType = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent is delivered to session-change subscribers (e.g. the state store).
type AuthEvent struct {
	Type AuthEventType
	User *User // nil for SIGNED_OUT
}

// UserService defines the business logic for accounts and authentication.
type UserService interface {
	SignUp(ctx context.Context, email, password, name string) (token string, user *User, err error)
	SignIn(ctx context.Context, email, password string) (token string, user *User, err error)
	// SignOut publishes a SIGNED_OUT notification. Best-effort; never blocks on subscribers.
	SignOut(ctx context.Context)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	// Subscribe returns a channel of session change notifications. Slow
	// subscribers miss events rather than block publishers.
	Subscribe() <-chan AuthEvent
}
