package orders

import "time"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus labels how much of the order total has been paid.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Transitions is the explicit status machine. Every pair is currently
// allowed; tightening a transition later is a data change here, not a
// code change in the service.
var Transitions = map[Status][]Status{
	StatusPending:    {StatusPending, StatusProcessing, StatusCompleted, StatusCancelled},
	StatusProcessing: {StatusPending, StatusProcessing, StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusPending, StatusProcessing, StatusCompleted, StatusCancelled},
	StatusCancelled:  {StatusPending, StatusProcessing, StatusCompleted, StatusCancelled},
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s Status) bool {
	_, ok := Transitions[s]
	return ok
}

// CanTransition consults the transition table.
func CanTransition(from, to Status) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is a single ordered line.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
}

// Order is a customer order with embedded line items.
type Order struct {
	ID            string      `json:"id"`
	CustomerName  string      `json:"customerName"`
	CustomerPhone string      `json:"customerPhone"`
	OrderDate     time.Time   `json:"orderDate"`
	DeliveryDate  *time.Time  `json:"deliveryDate,omitempty"`
	Items         []OrderItem `json:"items"`
	Status        Status      `json:"status"`
	PaidAmount    float64     `json:"paidAmount"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// ComputeTotal sums quantity times price over the items.
func ComputeTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Quantity * item.Price
	}
	return total
}

// Total is the order's computed total. Never persisted.
func (o *Order) Total() float64 {
	return ComputeTotal(o.Items)
}

// PaymentState derives the payment status from paid amount vs total.
func (o *Order) PaymentState() PaymentStatus {
	return DerivePaymentStatus(o.PaidAmount, o.Total())
}

// DerivePaymentStatus is the pure payment-status function shared with
// order listings.
func DerivePaymentStatus(paid, total float64) PaymentStatus {
	switch {
	case total > 0 && paid >= total:
		return PaymentPaid
	case paid > 0:
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}
