package crm

import "time"

// PartyStatus labels a customer or supplier account.
type PartyStatus string

const (
	PartyActive   PartyStatus = "active"
	PartyInactive PartyStatus = "inactive"
	PartyBlocked  PartyStatus = "blocked"
)

// ValidPartyStatus reports whether s is a known account status.
func ValidPartyStatus(s PartyStatus) bool {
	switch s {
	case PartyActive, PartyInactive, PartyBlocked:
		return true
	}
	return false
}

// CustomerType distinguishes companies from walk-in individuals.
type CustomerType string

const (
	CustomerCompany    CustomerType = "company"
	CustomerIndividual CustomerType = "individual"
)

// Customer is a buying party.
type Customer struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          CustomerType `json:"type"`
	Phone         string       `json:"phone"`
	Email         string       `json:"email,omitempty"`
	Address       string       `json:"address,omitempty"`
	ContactPerson string       `json:"contactPerson,omitempty"`
	TotalOrders   int          `json:"totalOrders"`
	TotalSpent    float64      `json:"totalSpent"`
	LastOrderDate *time.Time   `json:"lastOrderDate,omitempty"`
	Status        PartyStatus  `json:"status"`
	Notes         string       `json:"notes,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Supplier is a selling party. Products carries the supplied product
// names as a plain list.
type Supplier struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Phone            string      `json:"phone"`
	Email            string      `json:"email,omitempty"`
	Address          string      `json:"address,omitempty"`
	ContactPerson    string      `json:"contactPerson,omitempty"`
	Products         []string    `json:"products,omitempty"`
	TotalPurchases   float64     `json:"totalPurchases"`
	LastPurchaseDate *time.Time  `json:"lastPurchaseDate,omitempty"`
	PaymentTerms     string      `json:"paymentTerms,omitempty"`
	Status           PartyStatus `json:"status"`
	Notes            string      `json:"notes,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}
