package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hcp-erp/hcp-erp/internal/platform/httpx"
	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// InvoiceRenderer produces a PDF for an invoice. The report package
// implements it with Gotenberg.
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, invoice InvoiceView) ([]byte, error)
}

// Handler wires HTTP endpoints for the billing module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer InvoiceRenderer
}

// NewHandler constructs a Handler. renderer may be nil when PDF export
// is not configured.
func NewHandler(logger *slog.Logger, service *Service, renderer InvoiceRenderer) *Handler {
	return &Handler{logger: logger, service: service, renderer: renderer}
}

// MountRoutes registers billing routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.handleList)
	r.Post("/invoices", h.handleCreate)
	r.Get("/invoices/stats", h.handleStats)
	r.Get("/invoices/overdue", h.handleOverdue)
	r.Get("/invoices/{id}", h.handleGet)
	r.Post("/invoices/{id}/payments", h.handleRecordPayment)
	r.Get("/invoices/{id}/pdf", h.handlePDF)
	r.Delete("/invoices/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if size <= 0 {
		size = 20
	}
	filter := ListFilter{
		Search: q.Get("q"),
		Status: Status(q.Get("status")),
		Page:   page,
		Size:   size,
	}
	if filter.Status != "" {
		// Status is derived per invoice; filtering needs the full set.
		filter.Size = 0
	}

	list, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	now := time.Now()
	views := make([]InvoiceView, 0, len(list))
	for _, invoice := range list {
		views = append(views, NewInvoiceView(invoice, now))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   views,
		"pagination": shared.NewPagination(filter.Page, size, total),
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	invoice, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewInvoiceView(*invoice, time.Now()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewInvoiceView(*invoice, time.Now()))
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	invoice, err := h.service.RecordPayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewInvoiceView(*invoice, time.Now()))
}

func (h *Handler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Overdue(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	now := time.Now()
	views := make([]InvoiceView, 0, len(list))
	for _, invoice := range list {
		views = append(views, NewInvoiceView(invoice, now))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": views})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "PDF export is not configured")
		return
	}
	invoice, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	pdf, err := h.renderer.RenderInvoice(r.Context(), NewInvoiceView(*invoice, time.Now()))
	if err != nil {
		h.logger.Error("render invoice pdf", slog.String("invoice", invoice.ID), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", "PDF rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.ID+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
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
		httpx.FieldProblem(w, "invoice request invalid", fields)
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrOverpayment), errors.Is(err, ErrInvalidMethod):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("billing request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
