package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/pantry/internal/connectivity"
	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/events"
	"github.com/dukerupert/pantry/internal/telemetry"
)

// InventoryService provides business logic for stock records. Every mutation
// keeps the product's inStock flag equal to quantity > 0.
type InventoryService interface {
	// AdjustAfterOrder takes the ordered quantities out of stock. Either every
	// item is decremented or none is.
	AdjustAfterOrder(ctx context.Context, items []domain.StockAdjustment) error

	Create(ctx context.Context, productID string, quantity int, location string) (*domain.InventoryItem, error)
	SetQuantity(ctx context.Context, id string, quantity int) (*domain.InventoryItem, error)
	SetLocation(ctx context.Context, id, location string) (*domain.InventoryItem, error)
	Delete(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (*domain.InventoryItem, error)
	GetByProduct(ctx context.Context, productID string) (*domain.InventoryItem, error)
	List(ctx context.Context) ([]domain.InventoryItem, error)
}

type inventoryService struct {
	repo      domain.InventoryRepository
	gate      *connectivity.Gate
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewInventoryService creates a new InventoryService instance
func NewInventoryService(repo domain.InventoryRepository, gate *connectivity.Gate, publisher events.Publisher, logger *slog.Logger) InventoryService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &inventoryService{
		repo:      repo,
		gate:      gate,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *inventoryService) AdjustAfterOrder(ctx context.Context, items []domain.StockAdjustment) error {
	const op = "InventoryService.AdjustAfterOrder"

	if err := s.gate.RequireOnline(op); err != nil {
		return err
	}

	productIDs, wanted, err := aggregateAdjustments(op, items)
	if err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}

	now := s.now()
	var depleted []domain.InventoryItem

	err = s.repo.RunInventoryTransaction(ctx, func(ctx context.Context, tx domain.InventoryTx) error {
		depleted = depleted[:0]

		// Reads and checks first. Nothing is written unless every item passes.
		records := make([]*domain.InventoryItem, 0, len(productIDs))
		hasProduct := make([]bool, 0, len(productIDs))
		for _, productID := range productIDs {
			inv, err := tx.InventoryByProduct(ctx, productID)
			if err != nil {
				return err
			}
			if inv.Quantity < wanted[productID] {
				return &domain.Error{
					Code:    domain.ECONFLICT,
					Message: domain.ErrInsufficientStock.Message,
					Op:      op,
					Err:     fmt.Errorf("product %s: have %d, want %d", productID, inv.Quantity, wanted[productID]),
				}
			}
			exists, err := tx.ProductExists(ctx, productID)
			if err != nil {
				return err
			}
			records = append(records, inv)
			hasProduct = append(hasProduct, exists)
		}

		for i, inv := range records {
			inv.Quantity -= wanted[inv.ProductID]
			inv.LastStockUpdate = now
			if err := tx.SaveInventory(ctx, inv); err != nil {
				return err
			}
			if hasProduct[i] {
				if err := tx.SetProductInStock(ctx, inv.ProductID, inv.InStock(), now); err != nil {
					return err
				}
			}
			if !inv.InStock() {
				depleted = append(depleted, *inv)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.Business.InventoryAdjusted(adjustmentResult(err))
		return opError(op, err, "Failed to adjust inventory")
	}

	telemetry.Business.InventoryAdjusted("ok")
	for _, inv := range depleted {
		s.publishDepleted(ctx, inv, now)
	}
	return nil
}

// aggregateAdjustments merges duplicate product entries, keeping first-seen
// order so transactions touch records in a stable sequence.
func aggregateAdjustments(op string, items []domain.StockAdjustment) ([]string, map[string]int, error) {
	order := make([]string, 0, len(items))
	wanted := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return nil, nil, domain.WithOp(domain.ErrMissingProductID, op)
		}
		if item.Quantity <= 0 {
			return nil, nil, domain.WithOp(domain.ErrInvalidAdjustment, op)
		}
		if _, seen := wanted[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		wanted[item.ProductID] += item.Quantity
	}
	return order, wanted, nil
}

func adjustmentResult(err error) string {
	switch domain.ErrorCode(err) {
	case domain.ENOTFOUND:
		return "not_found"
	case domain.ECONFLICT:
		return "conflict"
	default:
		return "error"
	}
}

func (s *inventoryService) Create(ctx context.Context, productID string, quantity int, location string) (*domain.InventoryItem, error) {
	const op = "InventoryService.Create"

	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.WithOp(domain.ErrMissingProductID, op)
	}
	if quantity < 0 {
		return nil, domain.WithOp(domain.ErrNegativeQuantity, op)
	}

	now := s.now()
	var created domain.InventoryItem

	err := s.repo.RunInventoryTransaction(ctx, func(ctx context.Context, tx domain.InventoryTx) error {
		_, err := tx.InventoryByProduct(ctx, productID)
		switch {
		case err == nil:
			return domain.ErrInventoryExists
		case !domain.IsCode(err, domain.ENOTFOUND):
			return err
		}

		exists, err := tx.ProductExists(ctx, productID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrProductNotFound
		}

		created = domain.InventoryItem{
			ProductID:       productID,
			Quantity:        quantity,
			Location:        strings.TrimSpace(location),
			LastStockUpdate: now,
		}
		if err := tx.CreateInventory(ctx, &created); err != nil {
			return err
		}
		return tx.SetProductInStock(ctx, productID, created.InStock(), now)
	})
	if err != nil {
		return nil, opError(op, err, "Failed to create inventory")
	}

	s.logger.Info("inventory created", "inventory_id", created.ID, "product_id", productID, "quantity", quantity)
	return &created, nil
}

func (s *inventoryService) SetQuantity(ctx context.Context, id string, quantity int) (*domain.InventoryItem, error) {
	const op = "InventoryService.SetQuantity"

	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, domain.WithOp(domain.ErrNegativeQuantity, op)
	}

	now := s.now()
	var updated domain.InventoryItem
	var wasInStock bool

	err := s.repo.RunInventoryTransaction(ctx, func(ctx context.Context, tx domain.InventoryTx) error {
		inv, err := tx.Inventory(ctx, id)
		if err != nil {
			return err
		}
		exists, err := tx.ProductExists(ctx, inv.ProductID)
		if err != nil {
			return err
		}

		wasInStock = inv.InStock()
		inv.Quantity = quantity
		inv.LastStockUpdate = now
		if err := tx.SaveInventory(ctx, inv); err != nil {
			return err
		}
		if exists {
			if err := tx.SetProductInStock(ctx, inv.ProductID, inv.InStock(), now); err != nil {
				return err
			}
		}
		updated = *inv
		return nil
	})
	if err != nil {
		return nil, opError(op, err, "Failed to update inventory")
	}

	if wasInStock && !updated.InStock() {
		s.publishDepleted(ctx, updated, now)
	}
	return &updated, nil
}

func (s *inventoryService) SetLocation(ctx context.Context, id, location string) (*domain.InventoryItem, error) {
	const op = "InventoryService.SetLocation"

	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}

	var updated domain.InventoryItem
	err := s.repo.RunInventoryTransaction(ctx, func(ctx context.Context, tx domain.InventoryTx) error {
		inv, err := tx.Inventory(ctx, id)
		if err != nil {
			return err
		}
		inv.Location = strings.TrimSpace(location)
		if err := tx.SaveInventory(ctx, inv); err != nil {
			return err
		}
		updated = *inv
		return nil
	})
	if err != nil {
		return nil, opError(op, err, "Failed to update inventory")
	}
	return &updated, nil
}

// Delete removes the record and marks its product out of stock. A product
// that no longer exists is skipped.
func (s *inventoryService) Delete(ctx context.Context, id string) error {
	const op = "InventoryService.Delete"

	if err := s.gate.RequireOnline(op); err != nil {
		return err
	}

	now := s.now()
	err := s.repo.RunInventoryTransaction(ctx, func(ctx context.Context, tx domain.InventoryTx) error {
		inv, err := tx.Inventory(ctx, id)
		if err != nil {
			return err
		}
		exists, err := tx.ProductExists(ctx, inv.ProductID)
		if err != nil {
			return err
		}
		if err := tx.DeleteInventory(ctx, id); err != nil {
			return err
		}
		if !exists {
			return nil
		}
		return tx.SetProductInStock(ctx, inv.ProductID, false, now)
	})
	if err != nil {
		return opError(op, err, "Failed to delete inventory")
	}

	s.logger.Info("inventory deleted", "inventory_id", id)
	return nil
}

func (s *inventoryService) Get(ctx context.Context, id string) (*domain.InventoryItem, error) {
	inv, err := s.repo.GetInventory(ctx, id)
	if err != nil {
		return nil, opError("InventoryService.Get", err, "Failed to load inventory")
	}
	return inv, nil
}

func (s *inventoryService) GetByProduct(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	inv, err := s.repo.GetInventoryByProduct(ctx, productID)
	if err != nil {
		return nil, opError("InventoryService.GetByProduct", err, "Failed to load inventory")
	}
	return inv, nil
}

func (s *inventoryService) List(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, opError("InventoryService.List", err, "Failed to list inventory")
	}
	return items, nil
}

func (s *inventoryService) publishDepleted(ctx context.Context, inv domain.InventoryItem, at time.Time) {
	telemetry.Business.StockDepleted()
	err := s.publisher.Publish(ctx, events.SubjectInventoryDepleted, events.InventoryDepleted{
		InventoryID: inv.ID,
		ProductID:   inv.ProductID,
		At:          at,
	})
	telemetry.Business.EventPublished(events.SubjectInventoryDepleted, err)
	if err != nil {
		s.logger.Warn("failed to publish inventory depleted event",
			"product_id", inv.ProductID,
			"error", err,
		)
	}
}
