package domain

import (
	"context"
	"time"
)

// Inventory domain errors.
var (
	ErrInventoryNotFound = &Error{Code: ENOTFOUND, Message: "Inventory not found"}
	ErrInsufficientStock = &Error{Code: ECONFLICT, Message: "Insufficient stock"}
	ErrInventoryExists   = &Error{Code: ECONFLICT, Message: "Inventory already exists for this product"}
	ErrNegativeQuantity  = &Error{Code: EINVALID, Message: "Quantity must not be negative"}
	ErrMissingProductID  = &Error{Code: EINVALID, Message: "Product ID is required"}
	ErrInvalidAdjustment = &Error{Code: EINVALID, Message: "Adjustment quantity must be greater than 0"}
)

// InventoryItem is the stock record for one product.
type InventoryItem struct {
	ID              string    `firestore:"-" json:"id"`
	ProductID       string    `firestore:"productId" json:"productId"`
	Quantity        int       `firestore:"quantity" json:"quantity"`
	Location        string    `firestore:"location" json:"location"`
	LastStockUpdate time.Time `firestore:"lastStockUpdate" json:"lastStockUpdate"`
}

// InStock is the value the product's availability flag must hold.
func (i *InventoryItem) InStock() bool {
	return i.Quantity > 0
}

// StockAdjustment asks for quantity units of a product to be taken from stock.
type StockAdjustment struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// InventoryTx is the set of reads and writes available inside an inventory
// transaction. Implementations backed by Firestore require every read to
// happen before the first write.
type InventoryTx interface {
	InventoryByProduct(ctx context.Context, productID string) (*InventoryItem, error)
	Inventory(ctx context.Context, id string) (*InventoryItem, error)
	ProductExists(ctx context.Context, productID string) (bool, error)

	// CreateInventory assigns item.ID.
	CreateInventory(ctx context.Context, item *InventoryItem) error
	SaveInventory(ctx context.Context, item *InventoryItem) error
	DeleteInventory(ctx context.Context, id string) error
	SetProductInStock(ctx context.Context, productID string, inStock bool, at time.Time) error
}

// InventoryRepository is the persistence contract for inventory.
type InventoryRepository interface {
	// RunInventoryTransaction runs fn atomically. If fn returns an error no
	// write made through tx is kept.
	RunInventoryTransaction(ctx context.Context, fn func(ctx context.Context, tx InventoryTx) error) error

	GetInventory(ctx context.Context, id string) (*InventoryItem, error)
	GetInventoryByProduct(ctx context.Context, productID string) (*InventoryItem, error)
	ListInventory(ctx context.Context) ([]InventoryItem, error)
}
