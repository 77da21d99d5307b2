package dispatch

// CreateDeliveryRequest opens a delivery for an order.
type CreateDeliveryRequest struct {
	OrderID       string   `json:"orderId"`
	Customer      string   `json:"customer"`
	CustomerPhone string   `json:"customerPhone"`
	Address       string   `json:"address"`
	ScheduledDate string   `json:"scheduledDate"`
	ScheduledTime string   `json:"scheduledTime"`
	Items         []string `json:"items,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// AssignRequest puts a driver on a delivery.
type AssignRequest struct {
	DriverID int64  `json:"driverId"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes,omitempty"`
}

// UpdateStatusRequest changes the delivery status.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// CreateDriverRequest registers a driver.
type CreateDriverRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Vehicle string `json:"vehicle"`
}

// ListFilter narrows the delivery listing.
type ListFilter struct {
	Search string
	Status Status
	Page   int
	Size   int
}

// Stats counts deliveries per status.
type Stats struct {
	Pending   int `json:"pending"`
	Assigned  int `json:"assigned"`
	InTransit int `json:"inTransit"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}
