package orders

import "time"

// CreateOrderRequest carries the order intake form.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	OrderDate     *time.Time         `json:"orderDate,omitempty"`
	DeliveryDate  *time.Time         `json:"deliveryDate,omitempty"`
	Items         []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one line of the intake form.
type OrderItemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
}

// UpdateOrderRequest merges editable fields onto an existing order.
type UpdateOrderRequest struct {
	CustomerName  *string            `json:"customerName,omitempty"`
	CustomerPhone *string            `json:"customerPhone,omitempty"`
	DeliveryDate  *time.Time         `json:"deliveryDate,omitempty"`
	Items         []OrderItemRequest `json:"items,omitempty"`
}

// UpdateStatusRequest changes the lifecycle status.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// ListFilter narrows the order listing.
type ListFilter struct {
	Search string
	Status Status
	Page   int
	Size   int
}

// OrderView is the API representation with derived fields included.
type OrderView struct {
	Order
	Total         float64       `json:"total"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// NewOrderView attaches the derived total and payment status.
func NewOrderView(o Order) OrderView {
	return OrderView{
		Order:         o,
		Total:         o.Total(),
		PaymentStatus: o.PaymentState(),
	}
}
