package memstore

import (
	"time"

	"github.com/dukerupert/pantry/internal/domain"
)

// SeedItem is a product with its starting stock.
type SeedItem struct {
	Product  domain.Product
	Quantity int
	Location string
}

// Seed inserts products and matching inventory records, keeping each
// product's inStock flag in line with its quantity.
func (s *Store) Seed(items []SeedItem, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		p := item.Product
		if p.ID == "" {
			p.ID = newID()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = at
		}
		p.UpdatedAt = at
		p.InStock = item.Quantity > 0
		s.products[p.ID] = p

		inv := domain.InventoryItem{
			ID:              newID(),
			ProductID:       p.ID,
			Quantity:        item.Quantity,
			Location:        item.Location,
			LastStockUpdate: at,
		}
		s.inventory[inv.ID] = inv
	}
}

// DemoCatalog is a small catalog for local development.
func DemoCatalog() []SeedItem {
	return []SeedItem{
		{
			Product: domain.Product{
				ID: "sourdough", Name: "Sourdough Loaf", Category: "bakery",
				Description: "Naturally leavened, baked each morning.", Price: 6.5, Featured: true,
			},
			Quantity: 24, Location: "front rack",
		},
		{
			Product: domain.Product{
				ID: "eggs-dozen", Name: "Free Range Eggs (12)", Category: "dairy",
				Description: "Local farm eggs.", Price: 5.25,
			},
			Quantity: 40, Location: "cooler 2",
		},
		{
			Product: domain.Product{
				ID: "honey-jar", Name: "Wildflower Honey", Category: "pantry",
				Description: "Raw honey, 350g jar.", Price: 11,
			},
			Quantity: 0, Location: "shelf B",
		},
	}
}
