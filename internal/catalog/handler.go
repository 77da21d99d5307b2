package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hcp-erp/hcp-erp/internal/platform/httpx"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Handler wires HTTP endpoints for the catalog module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/low-stock", h.handleLowStock)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Put("/{id}/stock", h.handleUpdateStock)
	r.Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	filter := ListFilter{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Page:     page,
		Size:     size,
	}

	list, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	views := make([]ProductView, 0, len(list))
	for _, product := range list {
		views = append(views, NewProductView(product))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   views,
		"pagination": shared.NewPagination(filter.Page, filter.Size, total),
	})
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.LowStock(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	views := make([]ProductView, 0, len(list))
	for _, product := range list {
		views = append(views, NewProductView(product))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": views})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	product, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewProductView(*product))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewProductView(*product))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewProductView(*product))
}

func (h *Handler) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req UpdateStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	product, err := h.service.UpdateStock(r.Context(), chi.URLParam(r, "id"), req.Stock)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewProductView(*product))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		httpx.RespondError(w, httpx.ErrConfirmRequired)
		return
	}
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var fields shared.FieldErrors
	switch {
	case errors.As(err, &fields):
		httpx.FieldProblem(w, "product request invalid", fields)
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
	case errors.Is(err, ErrNegativeStock):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("catalog request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
