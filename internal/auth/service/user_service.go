package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrwalh/aidfusion-auth/internal/auth/domain"
	"github.com/agrwalh/aidfusion-auth/internal/auth/dto"
	autherror "github.com/agrwalh/aidfusion-auth/internal/errors"
	"github.com/agrwalh/aidfusion-auth/internal/logging"
)

const (
	minPasswordLength = 6
	dbTimeout         = 5 * time.Second
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserService struct {
	users     domain.UserRepository
	twoFactor *TwoFactorService
	sessions  SessionIssuer
	log       logging.Logger
}

func NewUserService(users domain.UserRepository, twoFactor *TwoFactorService, sessions SessionIssuer, log logging.Logger) *UserService {
	return &UserService{
		users:     users,
		twoFactor: twoFactor,
		sessions:  sessions,
		log:       log,
	}
}

// Signup registers a new identity and issues its first session token. Email
// uniqueness is enforced by the store's unique index, so a concurrent signup
// for the same address loses cleanly with ErrEmailAlreadyRegistered.
func (s *UserService) Signup(ctx context.Context, input dto.SignupInput) (*domain.User, string, error) {
	email := NormalizeEmail(input.Email)
	if !emailPattern.MatchString(email) {
		return nil, "", autherror.ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, "", autherror.ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller. Accounts with a
// verified two-factor enrollment additionally require a TOTP or backup code.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		return nil, "", err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, "", autherror.ErrInvalidCredentials
	}

	enrollment, err := s.twoFactor.Enrollment(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	if enrollment != nil && enrollment.Verified {
		if input.Code == "" {
			return nil, "", autherror.ErrTwoFactorRequired
		}
		ok, err := s.twoFactor.VerifyLogin(ctx, enrollment, input.Code)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "", autherror.ErrInvalidTwoFactorCode
		}
		if !isSixDigits(input.Code) {
			s.log.Info(ctx, "backup code consumed during login", "user_id", user.ID)
		}
	}

	token, err := s.sessions.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetByID is an idempotent read, so transient storage errors are retried a
// bounded number of times with backoff. Writes are never retried.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var user *domain.User
	backoff := retry.WithMaxRetries(2, retry.NewExponential(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, id)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return s.users.List(ctx)
}

// UpdateRole changes a user's role on behalf of an acting admin. An admin can
// never revoke their own admin role through this path: with no other admin
// left, that would lock the system out permanently.
func (s *UserService) UpdateRole(ctx context.Context, acting *SessionClaims, targetID, newRole string) error {
	role, ok := domain.ParseRole(newRole)
	if !ok {
		return autherror.ErrInvalidRole
	}

	if acting.Subject == targetID && role != domain.RoleAdmin {
		return autherror.ErrSelfDemotion
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	updated, err := s.users.UpdateRole(ctx, targetID, role)
	if err != nil {
		return err
	}
	if !updated {
		return autherror.ErrUserNotFound
	}

	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
