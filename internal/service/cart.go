package service

import (
	"sync"

	"github.com/dukerupert/pantry/internal/domain"
)

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 999

// Cart is one user's in-memory shopping cart. Lines are unique per product
// and every line has a quantity between 1 and MaxLineQuantity. None of its
// operations fail.
type Cart struct {
	mu    sync.Mutex
	lines []domain.CartLine
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// AddToCart increments the line for p by quantity, or appends a snapshot of
// p's id, name, image and price if the cart has no line for it yet.
// Quantities below 1 are treated as 1 and the line saturates at
// MaxLineQuantity.
func (c *Cart) AddToCart(p domain.Product, quantity int) {
	quantity = clampQuantity(quantity)

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(p.ID); i >= 0 {
		c.lines[i].Quantity = clampQuantity(c.lines[i].Quantity + quantity)
		return
	}
	c.lines = append(c.lines, domain.CartLine{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductImage: p.ImageURL,
		Quantity:     quantity,
		Price:        p.Price,
	})
}

// RemoveFromCart drops the line for productID. No-op if absent.
func (c *Cart) RemoveFromCart(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// UpdateQuantity sets the line's quantity, clamped to [1, MaxLineQuantity].
// No-op if the cart has no line for productID.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	quantity = clampQuantity(quantity)

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(productID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

// ClearCart empties the cart.
func (c *Cart) ClearCart() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// RemoveOrdered takes the quantities in items off the matching lines and
// drops lines that reach zero. Lines added after the order was snapshotted
// are kept.
func (c *Cart) RemoveOrdered(items []domain.OrderItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range items {
		i := c.indexOf(item.ProductID)
		if i < 0 {
			continue
		}
		if c.lines[i].Quantity > item.Quantity {
			c.lines[i].Quantity -= item.Quantity
			continue
		}
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Lines returns a copy of the cart's lines.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalItems is the sum of all line quantities.
func (c *Cart) TotalItems() int {
	return totalItems(c.Lines())
}

// TotalAmount is the sum of price × quantity over all lines.
func (c *Cart) TotalAmount() float64 {
	return totalAmount(c.Lines())
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Summary returns the lines and both totals computed from the same snapshot.
func (c *Cart) Summary() domain.CartSummary {
	lines := c.Lines()
	return domain.CartSummary{
		Lines:       lines,
		TotalItems:  totalItems(lines),
		TotalAmount: totalAmount(lines),
	}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// clampQuantity also catches a sum that wrapped negative.
func clampQuantity(q int) int {
	return min(max(q, 1), MaxLineQuantity)
}

func totalItems(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func totalAmount(lines []domain.CartLine) float64 {
	return orderTotal(snapshotLines(lines)).InexactFloat64()
}

// CartRegistry holds one cart per user for the life of the process.
type CartRegistry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewCartRegistry creates an empty registry.
func NewCartRegistry() *CartRegistry {
	return &CartRegistry{carts: make(map[string]*Cart)}
}

// Cart returns the cart for userID, creating it on first use.
func (r *CartRegistry) Cart(userID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		c = NewCart()
		r.carts[userID] = c
	}
	return c
}

// Len returns the number of carts held.
func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
