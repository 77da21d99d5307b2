package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

const (
	maxLoginAttempts   = 5
	loginAttemptWindow = 15 * time.Minute
)

// RegisterInput carries the fields accepted by self-registration.
type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
}

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	limiter *redis.Client
}

// NewService constructs a new Service. The redis client backs the
// per-email login attempt counter; pass nil to disable throttling.
func NewService(repo Repository, limiter *redis.Client) *Service {
	return &Service{repo: repo, limiter: limiter}
}

// Authenticate validates email/password credentials and stamps last_login.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.checkAttempts(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.recordAttempt(ctx, email)
		return nil, shared.ErrInvalidCredentials
	}
	if !user.Active() {
		s.recordAttempt(ctx, email)
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordAttempt(ctx, email)
		return nil, shared.ErrInvalidCredentials
	}

	s.clearAttempts(ctx, email)
	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err == nil {
		user.LastLogin = &now
	}
	return user, nil
}

// Register creates a viewer account from self-service signup.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		Username:     strings.TrimSpace(input.Username),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         "Viewer",
		Status:       "active",
		LastLogin:    &now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) checkAttempts(ctx context.Context, email string) error {
	if s.limiter == nil {
		return nil
	}
	count, err := s.limiter.Get(ctx, attemptKey(email)).Int()
	if err != nil {
		return nil
	}
	if count >= maxLoginAttempts {
		return shared.ErrRateLimited
	}
	return nil
}

func (s *Service) recordAttempt(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	key := attemptKey(email)
	if n, err := s.limiter.Incr(ctx, key).Result(); err == nil && n == 1 {
		s.limiter.Expire(ctx, key, loginAttemptWindow)
	}
}

func (s *Service) clearAttempts(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	s.limiter.Del(ctx, attemptKey(email))
}

func attemptKey(email string) string {
	return "auth:attempts:" + email
}
