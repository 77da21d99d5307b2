package catalog

import "time"

// StockState labels the derived availability of a product.
type StockState string

const (
	StockOut       StockState = "out_of_stock"
	StockLow       StockState = "low"
	StockAvailable StockState = "available"
)

// Product is a catalog entry.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Color       string    `json:"color"`
	Size        string    `json:"size"`
	Unit        string    `json:"unit"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	MinStock    int       `json:"minStock"`
	Supplier    string    `json:"supplier"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StockStatus derives the availability label. Never persisted.
func StockStatus(stock, minStock int) StockState {
	switch {
	case stock <= 0:
		return StockOut
	case stock <= minStock:
		return StockLow
	default:
		return StockAvailable
	}
}

// StockState reports the product's derived availability.
func (p *Product) StockState() StockState {
	return StockStatus(p.Stock, p.MinStock)
}
