package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dukerupert/pantry/internal/domain"
)

// InventoryRepository implements domain.InventoryRepository.
type InventoryRepository struct {
	client *firestore.Client
}

var _ domain.InventoryRepository = (*InventoryRepository)(nil)

func NewInventoryRepository(client *firestore.Client) *InventoryRepository {
	return &InventoryRepository{client: client}
}

func (r *InventoryRepository) col() *firestore.CollectionRef {
	return r.client.Collection(inventoryCollection)
}

// RunInventoryTransaction runs fn in a Firestore transaction. Firestore
// rejects reads after the first write, so fn must do all its reads first.
// The transaction is retried on contention.
func (r *InventoryRepository) RunInventoryTransaction(ctx context.Context, fn func(ctx context.Context, tx domain.InventoryTx) error) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(ctx, &inventoryTx{
			tx:        t,
			inventory: r.col(),
			products:  r.client.Collection(productsCollection),
		})
	})
}

func (r *InventoryRepository) GetInventory(ctx context.Context, id string) (*domain.InventoryItem, error) {
	if id == "" {
		return nil, domain.ErrInventoryNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrInventoryNotFound)
	}
	return docToInventory(snap)
}

func (r *InventoryRepository) GetInventoryByProduct(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	it := r.col().Where("productId", "==", productID).Limit(1).Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if isDone(err) {
		return nil, domain.ErrInventoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return docToInventory(doc)
}

func (r *InventoryRepository) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	it := r.col().OrderBy("productId", firestore.Asc).Documents(ctx)
	defer it.Stop()

	items := make([]domain.InventoryItem, 0)
	for {
		doc, err := it.Next()
		if isDone(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		inv, err := docToInventory(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, *inv)
	}
	return items, nil
}

func docToInventory(doc *firestore.DocumentSnapshot) (*domain.InventoryItem, error) {
	var inv domain.InventoryItem
	if err := doc.DataTo(&inv); err != nil {
		return nil, fmt.Errorf("decode inventory %s: %w", doc.Ref.ID, err)
	}
	inv.ID = doc.Ref.ID
	return &inv, nil
}

// inventoryTx adapts a Firestore transaction to domain.InventoryTx.
type inventoryTx struct {
	tx        *firestore.Transaction
	inventory *firestore.CollectionRef
	products  *firestore.CollectionRef
}

func (t *inventoryTx) InventoryByProduct(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	it := t.tx.Documents(t.inventory.Where("productId", "==", productID).Limit(1))
	defer it.Stop()

	doc, err := it.Next()
	if isDone(err) {
		return nil, domain.ErrInventoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return docToInventory(doc)
}

func (t *inventoryTx) Inventory(ctx context.Context, id string) (*domain.InventoryItem, error) {
	if id == "" {
		return nil, domain.ErrInventoryNotFound
	}
	snap, err := t.tx.Get(t.inventory.Doc(id))
	if err != nil {
		return nil, notFound(err, domain.ErrInventoryNotFound)
	}
	return docToInventory(snap)
}

func (t *inventoryTx) ProductExists(ctx context.Context, productID string) (bool, error) {
	_, err := t.tx.Get(t.products.Doc(productID))
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (t *inventoryTx) CreateInventory(ctx context.Context, item *domain.InventoryItem) error {
	ref := t.inventory.NewDoc()
	if err := t.tx.Create(ref, item); err != nil {
		return err
	}
	item.ID = ref.ID
	return nil
}

func (t *inventoryTx) SaveInventory(ctx context.Context, item *domain.InventoryItem) error {
	return t.tx.Set(t.inventory.Doc(item.ID), item)
}

func (t *inventoryTx) DeleteInventory(ctx context.Context, id string) error {
	return t.tx.Delete(t.inventory.Doc(id))
}

func (t *inventoryTx) SetProductInStock(ctx context.Context, productID string, inStock bool, at time.Time) error {
	return t.tx.Update(t.products.Doc(productID), []firestore.Update{
		{Path: "inStock", Value: inStock},
		{Path: "updatedAt", Value: at},
	})
}
