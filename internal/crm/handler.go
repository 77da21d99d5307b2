package crm

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hcp-erp/hcp-erp/internal/platform/httpx"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// Handler wires HTTP endpoints for the crm module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers crm routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.handleListCustomers)
	r.Post("/customers", h.handleCreateCustomer)
	r.Get("/customers/{id}", h.handleGetCustomer)
	r.Put("/customers/{id}", h.handleUpdateCustomer)
	r.Delete("/customers/{id}", h.handleDeleteCustomer)

	r.Get("/suppliers", h.handleListSuppliers)
	r.Post("/suppliers", h.handleCreateSupplier)
	r.Get("/suppliers/{id}", h.handleGetSupplier)
	r.Put("/suppliers/{id}", h.handleUpdateSupplier)
	r.Delete("/suppliers/{id}", h.handleDeleteSupplier)
}

func (h *Handler) listFilter(r *http.Request) ListFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return ListFilter{
		Search: q.Get("q"),
		Status: PartyStatus(q.Get("status")),
		Page:   page,
		Size:   size,
	}
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	filter := h.listFilter(r)
	list, total, err := h.service.ListCustomers(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"customers":  list,
		"pagination": shared.NewPagination(filter.Page, filter.Size, total),
	})
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	customer, err := h.service.CreateCustomer(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req UpdateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	customer, err := h.service.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		httpx.RespondError(w, httpx.ErrConfirmRequired)
		return
	}
	if err := h.service.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	filter := h.listFilter(r)
	list, total, err := h.service.ListSuppliers(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"suppliers":  list,
		"pagination": shared.NewPagination(filter.Page, filter.Size, total),
	})
}

func (h *Handler) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req CreateSupplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	supplier, err := h.service.CreateSupplier(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, supplier)
}

func (h *Handler) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.service.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var req UpdateSupplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	supplier, err := h.service.UpdateSupplier(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		httpx.RespondError(w, httpx.ErrConfirmRequired)
		return
	}
	if err := h.service.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var fields shared.FieldErrors
	switch {
	case errors.As(err, &fields):
		httpx.FieldProblem(w, "crm request invalid", fields)
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, ErrUnknownStatus):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("crm request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
