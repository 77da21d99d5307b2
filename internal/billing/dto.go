package billing

import "time"

// CreateInvoiceRequest opens an invoice against an order.
type CreateInvoiceRequest struct {
	OrderID   string     `json:"orderId"`
	Customer  string     `json:"customer"`
	Amount    float64    `json:"amount"`
	IssueDate *time.Time `json:"issueDate,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

// RecordPaymentRequest carries the payment form.
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount"`
	Method    Method  `json:"method"`
	Reference string  `json:"reference,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// ListFilter narrows the invoice listing.
type ListFilter struct {
	Search string
	Status Status
	Page   int
	Size   int
}

// InvoiceView is the API representation with derived fields included.
type InvoiceView struct {
	Invoice
	Remaining float64 `json:"remaining"`
	Status    Status  `json:"status"`
}

// NewInvoiceView attaches the derived balance and status.
func NewInvoiceView(i Invoice, now time.Time) InvoiceView {
	return InvoiceView{
		Invoice:   i,
		Remaining: i.Remaining(),
		Status:    i.StatusAt(now),
	}
}

// Stats aggregates the billing book.
type Stats struct {
	TotalInvoiced  float64 `json:"totalInvoiced"`
	TotalCollected float64 `json:"totalCollected"`
	TotalPending   float64 `json:"totalPending"`
	OverdueCount   int     `json:"overdueCount"`
}
