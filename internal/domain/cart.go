package domain

// CartLine is one product entry in a cart. It snapshots the product's
// name, image and price at the moment the product was first added.
type CartLine struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductImage string  `json:"productImage"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
}

// Subtotal returns price × quantity for the line.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// CartSummary is a read-only view of a cart with derived totals.
type CartSummary struct {
	Lines       []CartLine `json:"lines"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount float64    `json:"totalAmount"`
}
