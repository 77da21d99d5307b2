package billing

import "time"

// Status is the derived payment state of an invoice.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Method is an accepted payment channel.
type Method string

const (
	MethodCash   Method = "cash"
	MethodBank   Method = "bank"
	MethodCheck  Method = "check"
	MethodWallet Method = "wallet"
)

// ValidMethod reports whether m is an accepted payment channel.
func ValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodBank, MethodCheck, MethodWallet:
		return true
	}
	return false
}

// Payment is one receipt recorded against an invoice.
type Payment struct {
	Date      time.Time `json:"date"`
	Amount    float64   `json:"amount"`
	Method    Method    `json:"method"`
	Reference string    `json:"reference"`
	Notes     string    `json:"notes,omitempty"`
}

// Invoice tracks cumulative payments against an order total.
type Invoice struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	Customer   string    `json:"customer"`
	Amount     float64   `json:"amount"`
	PaidAmount float64   `json:"paidAmount"`
	Payments   []Payment `json:"payments"`
	IssueDate  time.Time `json:"issueDate"`
	DueDate    time.Time `json:"dueDate"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Remaining is the unpaid balance.
func (i *Invoice) Remaining() float64 {
	return i.Amount - i.PaidAmount
}

// StatusAt derives the invoice status at the given instant. Overdue is
// a property of the due date, never stored.
func (i *Invoice) StatusAt(now time.Time) Status {
	return DeriveStatus(i.PaidAmount, i.Amount, i.DueDate, now)
}

// DeriveStatus is the pure invoice-status function.
func DeriveStatus(paid, total float64, due, now time.Time) Status {
	switch {
	case total > 0 && paid >= total:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	case !due.IsZero() && due.Before(now):
		return StatusOverdue
	default:
		return StatusUnpaid
	}
}
