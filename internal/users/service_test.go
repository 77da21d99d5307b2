package users

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hcp-erp/hcp-erp/internal/shared"
	_ "github.com/hcp-erp/hcp-erp/testing"
)

type memoryUsersRepo struct {
	users  map[int64]User
	nextID int64
}

func newMemoryUsersRepo() *memoryUsersRepo {
	return &memoryUsersRepo{users: make(map[int64]User)}
}

func (m *memoryUsersRepo) duplicate(candidate *User) bool {
	for _, user := range m.users {
		if user.ID == candidate.ID {
			continue
		}
		if user.Username == candidate.Username || user.Email == candidate.Email {
			return true
		}
	}
	return false
}

func (m *memoryUsersRepo) Create(ctx context.Context, user *User) error {
	if m.duplicate(user) {
		return ErrDuplicateUser
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUsersRepo) Get(ctx context.Context, id int64) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &user, nil
}

func (m *memoryUsersRepo) List(ctx context.Context, filter ListFilter) ([]User, error) {
	var result []User
	for _, user := range m.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Status != "" && user.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(user.Username), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memoryUsersRepo) Update(ctx context.Context, user *User) error {
	if _, ok := m.users[user.ID]; !ok {
		return shared.ErrNotFound
	}
	if m.duplicate(user) {
		return ErrDuplicateUser
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUsersRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryUsersRepo) {
	t.Helper()
	repo := newMemoryUsersRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, logger)

	admin, err := svc.Create(context.Background(), CreateRequest{
		Username: "admin",
		Name:     "System Administrator",
		Email:    "admin@hcp-erp.com",
		Role:     RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, SeedAdminID, admin.ID)
	return svc, repo
}

func TestCreateDefaultsToActiveEmployee(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Create(context.Background(), CreateRequest{
		Username: "employee1",
		Name:     "Mohammed Ali",
		Email:    "Mohammed@HCP-ERP.com",
	})
	require.NoError(t, err)
	require.Equal(t, RoleEmployee, user.Role)
	require.Equal(t, StatusActive, user.Status)
	require.Equal(t, "mohammed@hcp-erp.com", user.Email)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateRequest{Role: Role("Root")})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields, "username")
	require.Contains(t, fields, "name")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "role")
}

func TestCreateRejectsDuplicateUsernameOrEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Username: "admin", Name: "Other", Email: "other@hcp-erp.com"})
	require.ErrorIs(t, err, ErrDuplicateUser)

	_, err = svc.Create(ctx, CreateRequest{Username: "other", Name: "Other", Email: "admin@hcp-erp.com"})
	require.ErrorIs(t, err, ErrDuplicateUser)
}

func TestUpdateNeverTouchesUsername(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateRequest{Username: "manager1", Name: "Ahmed", Email: "ahmed@hcp-erp.com"})
	require.NoError(t, err)

	name := "Ahmed Mohammed"
	role := RoleManager
	updated, err := svc.Update(ctx, user.ID, UpdateRequest{Name: &name, Role: &role})
	require.NoError(t, err)
	require.Equal(t, "manager1", updated.Username)
	require.Equal(t, RoleManager, updated.Role)
	require.Equal(t, "manager1", repo.users[user.ID].Username)
}

func TestSeedAdminCannotBeDeactivated(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inactive := StatusInactive
	_, err := svc.Update(ctx, SeedAdminID, UpdateRequest{Status: &inactive})
	require.ErrorIs(t, err, ErrProtectedUser)

	active := StatusActive
	admin, err := svc.Update(ctx, SeedAdminID, UpdateRequest{Status: &active})
	require.NoError(t, err)
	require.Equal(t, StatusActive, admin.Status)
}

func TestSeedAdminCannotBeDeleted(t *testing.T) {
	svc, repo := newTestService(t)

	require.ErrorIs(t, svc.Delete(context.Background(), SeedAdminID), ErrProtectedUser)
	require.Contains(t, repo.users, SeedAdminID)
}

func TestDeleteRegularUser(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateRequest{Username: "viewer1", Name: "Saad", Email: "saad@hcp-erp.com", Role: RoleViewer})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, user.ID))
	require.NotContains(t, repo.users, user.ID)
}

func TestRolePermissionLabels(t *testing.T) {
	require.Equal(t, []string{"all permissions"}, Permissions(RoleAdmin))
	require.Equal(t, []string{"manage orders", "manage products"}, Permissions(RoleEmployee))
	require.Equal(t, []string{"view only"}, Permissions(RoleViewer))
	require.Len(t, Permissions(RoleManager), 4)
	require.Nil(t, Permissions(Role("Root")))
}

func TestSummaryBreakdown(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Username: "manager1", Name: "Ahmed", Email: "ahmed@hcp-erp.com", Role: RoleManager})
	require.NoError(t, err)
	viewer, err := svc.Create(ctx, CreateRequest{Username: "viewer1", Name: "Saad", Email: "saad@hcp-erp.com", Role: RoleViewer})
	require.NoError(t, err)
	inactive := StatusInactive
	_, err = svc.Update(ctx, viewer.ID, UpdateRequest{Status: &inactive})
	require.NoError(t, err)

	stats, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, Stats{
		Total:    3,
		Active:   2,
		Inactive: 1,
		Admins:   1,
		Managers: 1,
		Viewers:  1,
	}, *stats)
}
