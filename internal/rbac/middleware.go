package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hcp-erp/hcp-erp/internal/platform/httpx"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Middleware wires role-based route gating for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAuthenticated rejects requests without a signed-in session.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.currentRole(r); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSection gates a subtree behind the menu table entry for key.
func (m Middleware) RequireSection(key string) func(http.Handler) http.Handler {
	return m.Require(RolesFor(key)...)
}

// Require ensures the session role is one of the listed roles.
func (m Middleware) Require(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := m.currentRole(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
				return
			}
			if !allowed(roles, role) {
				if m.Logger != nil {
					m.Logger.Warn("rbac denied",
						slog.String("role", role),
						slog.String("path", r.URL.Path),
					)
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "role not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentRole(r *http.Request) (string, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return "", false
	}
	if strings.TrimSpace(sess.User()) == "" {
		return "", false
	}
	role := strings.TrimSpace(sess.Role())
	if role == "" {
		return "", false
	}
	return role, true
}
