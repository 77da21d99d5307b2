package collections

import "time"

// CreateRequest carries the manual collection form.
type CreateRequest struct {
	Date      time.Time `json:"date"`
	Collector string    `json:"collector"`
	Customer  string    `json:"customer"`
	InvoiceID string    `json:"invoiceId,omitempty"`
	Amount    float64   `json:"amount"`
	Method    Method    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	Status    Status    `json:"status,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// UpdateStatusRequest moves a pending collection to its outcome.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// ListFilter narrows ledger listings.
type ListFilter struct {
	Search string
	Status Status
	Method Method
	Since  *time.Time
	Page   int
	Size   int
}

// StatsResponse bundles the summary with the two leaderboards.
type StatsResponse struct {
	Stats      Stats            `json:"stats"`
	Collectors []CollectorTotal `json:"topCollectors"`
	Methods    []MethodTotal    `json:"methodTotals"`
}
