package crm

import "time"

// CreateCustomerRequest carries the customer form.
type CreateCustomerRequest struct {
	Name          string       `json:"name"`
	Type          CustomerType `json:"type"`
	Phone         string       `json:"phone"`
	Email         string       `json:"email,omitempty"`
	Address       string       `json:"address,omitempty"`
	ContactPerson string       `json:"contactPerson,omitempty"`
	Notes         string       `json:"notes,omitempty"`
}

// UpdateCustomerRequest merges editable fields onto a customer.
type UpdateCustomerRequest struct {
	Name          *string       `json:"name,omitempty"`
	Type          *CustomerType `json:"type,omitempty"`
	Phone         *string       `json:"phone,omitempty"`
	Email         *string       `json:"email,omitempty"`
	Address       *string       `json:"address,omitempty"`
	ContactPerson *string       `json:"contactPerson,omitempty"`
	TotalOrders   *int          `json:"totalOrders,omitempty"`
	TotalSpent    *float64      `json:"totalSpent,omitempty"`
	LastOrderDate *time.Time    `json:"lastOrderDate,omitempty"`
	Status        *PartyStatus  `json:"status,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
}

// CreateSupplierRequest carries the supplier form.
type CreateSupplierRequest struct {
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email,omitempty"`
	Address       string   `json:"address,omitempty"`
	ContactPerson string   `json:"contactPerson,omitempty"`
	Products      []string `json:"products,omitempty"`
	PaymentTerms  string   `json:"paymentTerms,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// UpdateSupplierRequest merges editable fields onto a supplier.
type UpdateSupplierRequest struct {
	Name             *string      `json:"name,omitempty"`
	Phone            *string      `json:"phone,omitempty"`
	Email            *string      `json:"email,omitempty"`
	Address          *string      `json:"address,omitempty"`
	ContactPerson    *string      `json:"contactPerson,omitempty"`
	Products         []string     `json:"products,omitempty"`
	TotalPurchases   *float64     `json:"totalPurchases,omitempty"`
	LastPurchaseDate *time.Time   `json:"lastPurchaseDate,omitempty"`
	PaymentTerms     *string      `json:"paymentTerms,omitempty"`
	Status           *PartyStatus `json:"status,omitempty"`
	Notes            *string      `json:"notes,omitempty"`
}

// ListFilter narrows customer and supplier listings.
type ListFilter struct {
	Search string
	Status PartyStatus
	Page   int
	Size   int
}
