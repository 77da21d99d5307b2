package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hcp-erp/hcp-erp/internal/platform/httpx"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Handler serves the navigation menu for the signed-in role.
type Handler struct{}

// MountRoutes registers rbac routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/menu", h.handleMenu)
}

type menuItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	entries := VisibleTo(sess.Role())
	items := make([]menuItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, menuItem{Key: entry.Key, Label: entry.Label, Path: entry.Path})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"menu": items})
}
