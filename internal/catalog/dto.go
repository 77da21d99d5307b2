package catalog

// CreateProductRequest carries the product form.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	MinStock    int     `json:"minStock"`
	Supplier    string  `json:"supplier"`
	Description string  `json:"description"`
}

// UpdateProductRequest merges editable fields onto a product.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Color       *string  `json:"color,omitempty"`
	Size        *string  `json:"size,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	MinStock    *int     `json:"minStock,omitempty"`
	Supplier    *string  `json:"supplier,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// UpdateStockRequest overwrites the stock level.
type UpdateStockRequest struct {
	Stock int `json:"stock"`
}

// ListFilter narrows the product listing.
type ListFilter struct {
	Search   string
	Category string
	Page     int
	Size     int
}

// ProductView is the API representation with the derived stock state.
type ProductView struct {
	Product
	StockStatus StockState `json:"stockStatus"`
}

// NewProductView attaches the derived stock state.
func NewProductView(p Product) ProductView {
	return ProductView{Product: p, StockStatus: p.StockState()}
}
