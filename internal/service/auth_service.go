package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sirneij/cryptoflow/internal/domain"
	"github.com/Sirneij/cryptoflow/internal/repository"
	"github.com/Sirneij/cryptoflow/internal/security"
	"github.com/Sirneij/cryptoflow/internal/session"
)

var (
	// ErrInvalidCredentials covers an unknown email, an inactive account
	// and a wrong password. Login failures never reveal which.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidInput marks a request the caller can fix.
	ErrInvalidInput = errors.New("invalid input")
)

const minPasswordLength = 8

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthService owns the account lifecycle: registration, two-step
// activation, login against the session store and session teardown.
type AuthService struct {
	users         repository.UserRepository
	hasher        *security.PasswordHasher
	sessions      *session.Store
	codes         *session.ActivationStore
	notifier      ActivationNotifier
	logger        *slog.Logger
	sessionTTL    time.Duration
	activationTTL time.Duration
}

func NewAuthService(
	users repository.UserRepository,
	hasher *security.PasswordHasher,
	sessions *session.Store,
	codes *session.ActivationStore,
	notifier ActivationNotifier,
	logger *slog.Logger,
	sessionTTL, activationTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:         users,
		hasher:        hasher,
		sessions:      sessions,
		codes:         codes,
		notifier:      notifier,
		logger:        logger,
		sessionTTL:    sessionTTL,
		activationTTL: activationTTL,
	}
}

func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

// Register creates an inactive account and sends its activation code.
// The account stays invisible to every authenticated path until the
// code is consumed.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	case len(input.Password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	case firstName == "" || lastName == "":
		return nil, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(ctx, []byte(input.Password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:     email,
		Password:  hash,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	code, err := s.codes.Issue(ctx, user.ID, s.activationTTL)
	if err != nil {
		return nil, fmt.Errorf("issue activation code: %w", err)
	}
	err = s.notifier.SendActivationCode(ctx, ActivationNotification{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(s.activationTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("deliver activation code: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Activate consumes the single-use code and flips the account live.
func (s *AuthService) Activate(ctx context.Context, userID uuid.UUID, code string) error {
	if err := s.codes.Consume(ctx, userID, code); err != nil {
		return err
	}
	if err := s.users.Activate(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user activated", "user_id", userID)
	return nil
}

// Login verifies the password against the stored hash and opens a new
// session. Unknown emails, inactive accounts and wrong passwords all
// collapse into ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Verify(ctx, user.Password, []byte(password)); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	token, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return "", nil, err
	}
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return token, user, nil
}

// Logout revokes the session. A stale or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}

// CurrentUser resolves a session token to the live account behind it. A
// session whose account has been deactivated fails exactly like a
// missing session.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, session.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}
