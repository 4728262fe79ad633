package product

// Product is a read-only snapshot of one catalog entry as served by the
// remote store. Snapshots are never patched or merged locally; a newer view
// of the catalog always comes from a fresh fetch.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	ImageURL      string  `json:"image_url,omitempty"`
	StockQuantity int     `json:"stock_quantity"`
}

// InStock reports whether the snapshot had remaining stock at fetch time.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}
