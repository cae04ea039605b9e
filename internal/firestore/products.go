package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/dukerupert/pantry/internal/domain"
	"google.golang.org/api/iterator"
)

// ProductRepository implements domain.ProductRepository.
type ProductRepository struct {
	client *firestore.Client
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(client *firestore.Client) *ProductRepository {
	return &ProductRepository{client: client}
}

func (r *ProductRepository) col() *firestore.CollectionRef {
	return r.client.Collection(productsCollection)
}

// ListProducts needs composite indexes on (category|inStock|featured,
// createdAt desc) for filtered listings.
func (r *ProductRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := r.col().Query
	if filter.Category != "" {
		q = q.Where("category", "==", filter.Category)
	}
	if filter.InStock != nil {
		q = q.Where("inStock", "==", *filter.InStock)
	}
	if filter.Featured != nil {
		q = q.Where("featured", "==", *filter.Featured)
	}
	q = q.OrderBy("createdAt", firestore.Desc)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	products := make([]domain.Product, 0)
	for {
		doc, err := it.Next()
		if isDone(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		p, err := docToProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.ErrProductNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrProductNotFound)
	}
	p, err := docToProduct(snap)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	ref := r.col().NewDoc()
	if p.ID != "" {
		ref = r.col().Doc(p.ID)
	}
	if _, err := ref.Create(ctx, p); err != nil {
		return err
	}
	p.ID = ref.ID
	return nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	_, err := r.col().Doc(p.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: p.Name},
		{Path: "description", Value: p.Description},
		{Path: "category", Value: p.Category},
		{Path: "price", Value: p.Price},
		{Path: "imageUrl", Value: p.ImageURL},
		{Path: "imageKey", Value: p.ImageKey},
		{Path: "featured", Value: p.Featured},
		{Path: "updatedAt", Value: p.UpdatedAt},
	})
	return notFound(err, domain.ErrProductNotFound)
}

// DeleteProduct drops the product and any inventory document pointing at it
// in one transaction.
func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	ref := r.col().Doc(id)
	inventory := r.client.Collection(inventoryCollection)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return notFound(err, domain.ErrProductNotFound)
		}
		stock, err := tx.Documents(inventory.Where("productId", "==", id)).GetAll()
		if err != nil {
			return err
		}

		for _, doc := range stock {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
}

func docToProduct(doc *firestore.DocumentSnapshot) (domain.Product, error) {
	var p domain.Product
	if err := doc.DataTo(&p); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %s: %w", doc.Ref.ID, err)
	}
	p.ID = doc.Ref.ID
	return p, nil
}

func isDone(err error) bool {
	return err == iterator.Done
}
