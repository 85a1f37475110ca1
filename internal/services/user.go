package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"partyhaus/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo    domain.UserRepository
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration

	mu   sync.Mutex
	subs []chan domain.AuthEvent
}

// NewUserService creates a UserService with the given repository and auth ports.
func NewUserService(userRepo domain.UserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration) domain.UserService {
	return &userService{
		userRepo:    userRepo,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
	}
}

func (s *userService) SignUp(ctx context.Context, email, password, name string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return "", nil, fmt.Errorf("invalid email format")
	}
	if len(password) < minPasswordLen {
		return "", nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return "", nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, domain.ErrNotFound) {
		return "", nil, fmt.Errorf("failed to check email: %w", err)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(email, strings.TrimSpace(name), hash, salt, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return "", nil, domain.ErrDuplicateEmail
		}
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	s.publish(domain.AuthEvent{Type: domain.AuthEventSignedIn, User: user})
	return token, user, nil
}

func (s *userService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	s.publish(domain.AuthEvent{Type: domain.AuthEventSignedIn, User: user})
	return token, user, nil
}

func (s *userService) SignOut(ctx context.Context) {
	s.publish(domain.AuthEvent{Type: domain.AuthEventSignedOut})
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, user *domain.User) error {
	user.Name = strings.TrimSpace(user.Name)
	if user.Email != "" && !emailRegexp.MatchString(user.Email) {
		return fmt.Errorf("invalid email format")
	}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *userService) Subscribe() <-chan domain.AuthEvent {
	ch := make(chan domain.AuthEvent, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// publish delivers evt to all subscribers without blocking. A subscriber with
// a full buffer misses the event.
func (s *userService) publish(evt domain.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
