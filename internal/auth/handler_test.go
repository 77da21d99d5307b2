package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hcp-erp/hcp-erp/internal/auth"
	"github.com/hcp-erp/hcp-erp/internal/shared"
	_ "github.com/hcp-erp/hcp-erp/testing"
)

type stubRepo struct {
	user    *auth.User
	created *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) Create(ctx context.Context, user *auth.User) error {
	if s.user != nil && s.user.Email == user.Email {
		return shared.ErrDuplicateAccount
	}
	user.ID = 7
	s.created = user
	return nil
}

func (s *stubRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return nil
}

// commitWriter mirrors the production middleware's responseWriterWithCommit:
// the session must be committed before the first response byte so Set-Cookie
// headers land before the recorder snapshots them.
type commitWriter struct {
	http.ResponseWriter
	commit    func(http.ResponseWriter)
	committed bool
}

func (w *commitWriter) commitNow() {
	if !w.committed {
		w.committed = true
		w.commit(w.ResponseWriter)
	}
}

func (w *commitWriter) WriteHeader(code int) {
	w.commitNow()
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.commitNow()
	return w.ResponseWriter.Write(b)
}

func newAuthRouter(t *testing.T, repo auth.Repository) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo, redisClient), sessionManager, csrfManager)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessionManager.Load(r.Context(), r)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(r.Context(), sess)
			wrapped := &commitWriter{ResponseWriter: w, commit: func(dst http.ResponseWriter) {
				require.NoError(t, sessionManager.Commit(ctx, dst, r, sess))
			}}
			next.ServeHTTP(wrapped, r.WithContext(ctx))
			wrapped.commitNow()
		})
	})
	router.Route("/auth", handler.MountRoutes)
	return router, sessionManager
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{user: &auth.User{
		ID:           1,
		Username:     "sales1",
		Name:         "Sales One",
		Email:        "sales@hcp.local",
		PasswordHash: hashPassword(t, "correctpass"),
		Role:         "SalesRep",
		Status:       "active",
	}}
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"sales@hcp.local","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		UserID    string `json:"userId"`
		Role      string `json:"role"`
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "1", payload.UserID)
	require.Equal(t, "SalesRep", payload.Role)
	require.NotEmpty(t, payload.CSRFToken)
	require.NotEmpty(t, res.Result().Cookies())
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := &stubRepo{user: &auth.User{
		ID:           1,
		Email:        "sales@hcp.local",
		PasswordHash: hashPassword(t, "correctpass"),
		Role:         "SalesRep",
		Status:       "active",
	}}
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"sales@hcp.local","password":"wrongpass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Contains(t, res.Body.String(), "Invalid email or password")
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := &stubRepo{user: &auth.User{
		ID:           2,
		Email:        "blocked@hcp.local",
		PasswordHash: hashPassword(t, "correctpass"),
		Role:         "Viewer",
		Status:       "blocked",
	}}
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"blocked@hcp.local","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginThrottledAfterRepeatedFailures(t *testing.T) {
	repo := &stubRepo{user: &auth.User{
		ID:           1,
		Email:        "sales@hcp.local",
		PasswordHash: hashPassword(t, "correctpass"),
		Role:         "SalesRep",
		Status:       "active",
	}}
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"sales@hcp.local","password":"wrongpass"}`
	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}

	require.Equal(t, http.StatusTooManyRequests, last.Code)
	require.Contains(t, last.Body.String(), "Too many attempts")
}

func TestRegisterDefaultsToViewer(t *testing.T) {
	repo := &stubRepo{}
	router, _ := newAuthRouter(t, repo)

	body := `{"username":"newbie","name":"New User","email":"new@hcp.local","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.NotNil(t, repo.created)
	require.Equal(t, "Viewer", repo.created.Role)
	require.Equal(t, "active", repo.created.Status)
	require.NotNil(t, repo.created.LastLogin)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &stubRepo{user: &auth.User{ID: 1, Email: "taken@hcp.local"}}
	router, _ := newAuthRouter(t, repo)

	body := `{"username":"dup","name":"Dup User","email":"taken@hcp.local","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusConflict, res.Code)
	require.Contains(t, res.Body.String(), "already exists")
}

func TestRegisterValidation(t *testing.T) {
	repo := &stubRepo{}
	router, _ := newAuthRouter(t, repo)

	body := `{"username":"x","name":"","email":"not-an-email","password":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)

	var problem struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	require.Contains(t, problem.Fields, "Email")
	require.Contains(t, problem.Fields, "Password")
}
