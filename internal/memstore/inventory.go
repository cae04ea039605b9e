package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/dukerupert/pantry/internal/domain"
)

// RunInventoryTransaction runs fn against private copies of the inventory
// and product collections and swaps them in only if fn succeeds.
func (s *Store) RunInventoryTransaction(ctx context.Context, fn func(ctx context.Context, tx domain.InventoryTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	tx := &inventoryTx{
		inventory: make(map[string]domain.InventoryItem, len(s.inventory)),
		products:  make(map[string]domain.Product, len(s.products)),
	}
	for k, v := range s.inventory {
		tx.inventory[k] = v
	}
	for k, v := range s.products {
		tx.products[k] = v
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.inventory = tx.inventory
	s.products = tx.products
	return nil
}

func (s *Store) GetInventory(ctx context.Context, id string) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	inv, ok := s.inventory[id]
	if !ok {
		return nil, domain.ErrInventoryNotFound
	}
	return &inv, nil
}

func (s *Store) GetInventoryByProduct(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return findByProduct(s.inventory, productID)
}

func (s *Store) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	out := make([]domain.InventoryItem, 0, len(s.inventory))
	for _, inv := range s.inventory {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func findByProduct(items map[string]domain.InventoryItem, productID string) (*domain.InventoryItem, error) {
	for _, inv := range items {
		if inv.ProductID == productID {
			return &inv, nil
		}
	}
	return nil, domain.ErrInventoryNotFound
}

type inventoryTx struct {
	inventory map[string]domain.InventoryItem
	products  map[string]domain.Product
}

func (tx *inventoryTx) InventoryByProduct(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	return findByProduct(tx.inventory, productID)
}

func (tx *inventoryTx) Inventory(ctx context.Context, id string) (*domain.InventoryItem, error) {
	inv, ok := tx.inventory[id]
	if !ok {
		return nil, domain.ErrInventoryNotFound
	}
	return &inv, nil
}

func (tx *inventoryTx) ProductExists(ctx context.Context, productID string) (bool, error) {
	_, ok := tx.products[productID]
	return ok, nil
}

func (tx *inventoryTx) CreateInventory(ctx context.Context, item *domain.InventoryItem) error {
	if item.ID == "" {
		item.ID = newID()
	}
	tx.inventory[item.ID] = *item
	return nil
}

func (tx *inventoryTx) SaveInventory(ctx context.Context, item *domain.InventoryItem) error {
	if _, ok := tx.inventory[item.ID]; !ok {
		return domain.ErrInventoryNotFound
	}
	tx.inventory[item.ID] = *item
	return nil
}

func (tx *inventoryTx) DeleteInventory(ctx context.Context, id string) error {
	delete(tx.inventory, id)
	return nil
}

func (tx *inventoryTx) SetProductInStock(ctx context.Context, productID string, inStock bool, at time.Time) error {
	p, ok := tx.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.InStock = inStock
	p.UpdatedAt = at
	tx.products[productID] = p
	return nil
}
