package dispatch

import "time"

// Status is the lifecycle state of a delivery.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Transitions is the explicit status machine. Every pair is currently
// allowed; tightening a transition later is a data change here.
var Transitions = map[Status][]Status{
	StatusPending:   {StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusFailed},
	StatusAssigned:  {StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusFailed},
	StatusInTransit: {StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusFailed},
	StatusDelivered: {StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusFailed},
	StatusFailed:    {StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusFailed},
}

// ValidStatus reports whether s is a known delivery status.
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

// Occupies reports whether a delivery in this status holds its driver.
// A driver is unavailable exactly while assigned to a delivery in an
// occupying status.
func (s Status) Occupies() bool {
	return s == StatusAssigned || s == StatusInTransit
}

// Delivery is a dispatch record linking an order to a driver.
type Delivery struct {
	ID            string     `json:"id"`
	OrderID       string     `json:"orderId"`
	Customer      string     `json:"customer"`
	CustomerPhone string     `json:"customerPhone"`
	Address       string     `json:"address"`
	ScheduledDate string     `json:"scheduledDate"`
	ScheduledTime string     `json:"scheduledTime"`
	Status        Status     `json:"status"`
	DriverID      *int64     `json:"driverId,omitempty"`
	DriverName    string     `json:"driverName,omitempty"`
	DriverPhone   string     `json:"driverPhone,omitempty"`
	DriverVehicle string     `json:"driverVehicle,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Items         []string   `json:"items,omitempty"`
	AssignedAt    *time.Time `json:"assignedAt,omitempty"`
	DeliveredAt   *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Driver is a dispatchable driver.
type Driver struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Vehicle   string    `json:"vehicle"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
