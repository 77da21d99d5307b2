package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

var (
	// ErrProtectedUser signals an attempt to delete or deactivate the
	// seed administrator.
	ErrProtectedUser = errors.New("users: the primary administrator cannot be removed or deactivated")
	// ErrDuplicateUser signals a username or email already in use.
	ErrDuplicateUser = errors.New("users: username or email already in use")
	// ErrUnknownRole signals a role outside the known set.
	ErrUnknownRole = errors.New("users: unknown role")
	// ErrUnknownStatus signals a status outside the known set.
	ErrUnknownStatus = errors.New("users: unknown status")
)

// Service implements account administration.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and persists a new account. New accounts start
// active; the role defaults to Employee.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		errs["username"] = "username is required"
	}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		errs["email"] = "email is required"
	}
	if req.Role != "" && !ValidRole(req.Role) {
		errs["role"] = "unknown role"
	}
	if errs.Any() {
		return nil, errs
	}

	role := req.Role
	if role == "" {
		role = RoleEmployee
	}
	user := &User{
		Username: strings.TrimSpace(req.Username),
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     role,
		Status:   StatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("users: create: %w", err)
	}
	s.logger.Info("user created",
		slog.Int64("id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)))
	return user, nil
}

// Get loads a single account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// List returns accounts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, error) {
	if filter.Role != "" && !ValidRole(filter.Role) {
		return nil, ErrUnknownRole
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, ErrUnknownStatus
	}
	return s.repo.List(ctx, filter)
}

// Update merges editable fields onto an account. Usernames never
// change; the seed administrator never leaves active status.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, shared.FieldErrors{"name": "name is required"}
		}
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return nil, shared.FieldErrors{"email": "email is required"}
		}
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		if !ValidRole(*req.Role) {
			return nil, ErrUnknownRole
		}
		user.Role = *req.Role
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, ErrUnknownStatus
		}
		if user.ID == SeedAdminID && *req.Status != StatusActive {
			return nil, ErrProtectedUser
		}
		user.Status = *req.Status
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("users: update %d: %w", id, err)
	}
	return user, nil
}

// Delete removes an account. The seed administrator is refused.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id == SeedAdminID {
		return ErrProtectedUser
	}
	return s.repo.Delete(ctx, id)
}

// Summary tallies the account breakdown.
func (s *Service) Summary(ctx context.Context) (*Stats, error) {
	accounts, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("users: load accounts: %w", err)
	}
	stats := ComputeStats(accounts)
	return &stats, nil
}
