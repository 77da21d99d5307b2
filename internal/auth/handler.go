package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hcp-erp/hcp-erp/internal/platform/httpx"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/session", h.handleSession)
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type sessionResponse struct {
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CSRFToken string     `json:"csrfToken"`
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no active session")
		return
	}
	token, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	httpx.JSON(w, http.StatusOK, sessionResponse{
		UserID:    sess.User(),
		Role:      sess.Role(),
		CSRFToken: token,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if fields := h.validate(req); len(fields) > 0 {
		httpx.FieldProblem(w, "login request invalid", fields)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10), user.Role)
	token, _ := h.csrfManager.EnsureToken(r.Context(), sess)

	httpx.JSON(w, http.StatusOK, sessionResponse{
		UserID:    strconv.FormatInt(user.ID, 10),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		LastLogin: user.LastLogin,
		CSRFToken: token,
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if fields := h.validate(req); len(fields) > 0 {
		httpx.FieldProblem(w, "registration request invalid", fields)
		return
	}

	user, err := h.service.Register(r.Context(), RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.SetUser(strconv.FormatInt(user.ID, 10), user.Role)
	}
	token := ""
	if sess != nil {
		token, _ = h.csrfManager.EnsureToken(r.Context(), sess)
	}

	httpx.JSON(w, http.StatusCreated, sessionResponse{
		UserID:    strconv.FormatInt(user.ID, 10),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		LastLogin: user.LastLogin,
		CSRFToken: token,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessionManager.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *Handler) validate(req any) map[string]string {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fieldErr := range verrs {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
	}
	return fields
}

func (h *Handler) respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
	case errors.Is(err, shared.ErrRateLimited):
		httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "Too many attempts, try again later")
	case errors.Is(err, shared.ErrDuplicateAccount):
		httpx.Problem(w, http.StatusConflict, "Conflict", "An account with this email already exists")
	default:
		h.logger.Error("auth request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
