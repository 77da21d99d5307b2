package reports

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hcp-erp/hcp-erp/internal/platform/httpx"
)

// SummaryRenderer produces a PDF for a report summary. The report
// package implements it with Gotenberg.
type SummaryRenderer interface {
	RenderSummary(ctx context.Context, summary Summary) ([]byte, error)
}

// Handler wires HTTP endpoints for the reports module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer SummaryRenderer
}

// NewHandler constructs a Handler. renderer may be nil when PDF export
// is not configured.
func NewHandler(logger *slog.Logger, service *Service, renderer SummaryRenderer) *Handler {
	return &Handler{logger: logger, service: service, renderer: renderer}
}

// MountRoutes registers reports routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.handleSummary)
	r.Get("/summary/pdf", h.handleSummaryPDF)
}

func (h *Handler) rangeFrom(r *http.Request) (time.Time, time.Time, bool) {
	from, to := h.service.DefaultRange()
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	return from, to, true
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeFrom(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "dates must be formatted YYYY-MM-DD")
		return
	}
	summary, err := h.service.Summary(r.Context(), from, to)
	if err != nil {
		h.logger.Error("report summary failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "PDF export is not configured")
		return
	}
	from, to, ok := h.rangeFrom(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "dates must be formatted YYYY-MM-DD")
		return
	}
	summary, err := h.service.Summary(r.Context(), from, to)
	if err != nil {
		h.logger.Error("report summary failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	pdf, err := h.renderer.RenderSummary(r.Context(), *summary)
	if err != nil {
		h.logger.Error("report pdf render failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "PDF rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report-`+summary.From+`-`+summary.To+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
