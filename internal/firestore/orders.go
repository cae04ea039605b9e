package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dukerupert/pantry/internal/domain"
)

// OrderRepository implements domain.OrderRepository.
type OrderRepository struct {
	client *firestore.Client
}

var _ domain.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(client *firestore.Client) *OrderRepository {
	return &OrderRepository{client: client}
}

func (r *OrderRepository) col() *firestore.CollectionRef {
	return r.client.Collection(ordersCollection)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	ref := r.col().NewDoc()
	if _, err := ref.Create(ctx, o); err != nil {
		return err
	}
	o.ID = ref.ID
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.ErrOrderNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound)
	}
	o, err := docToOrder(snap)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	q := r.col().Query
	if filter.UserID != "" {
		q = q.Where("userId", "==", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	q = q.OrderBy("createdAt", firestore.Desc)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	orders := make([]domain.Order, 0)
	for {
		doc, err := it.Next()
		if isDone(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		o, err := docToOrder(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateOrderStatus reads and writes the order in one transaction, so a
// concurrent transition makes this one fail instead of overwriting it.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, reason string, at time.Time) error {
	ref := r.col().Doc(id)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return notFound(err, domain.ErrOrderNotFound)
		}
		current, err := snap.DataAt("status")
		if err != nil {
			return fmt.Errorf("read status of order %s: %w", id, err)
		}
		if s, _ := current.(string); domain.OrderStatus(s) != from {
			return domain.ErrOrderStatusChanged
		}

		updates := []firestore.Update{
			{Path: "status", Value: string(to)},
			{Path: "updatedAt", Value: at},
		}
		if reason != "" {
			updates = append(updates, firestore.Update{Path: "failureReason", Value: reason})
		}
		return tx.Update(ref, updates)
	})
}

func (r *OrderRepository) UpdateOrderCollection(ctx context.Context, id, date, clock string, at time.Time) error {
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "collectionDate", Value: date},
		{Path: "collectionTime", Value: clock},
		{Path: "updatedAt", Value: at},
	})
	return notFound(err, domain.ErrOrderNotFound)
}

func docToOrder(doc *firestore.DocumentSnapshot) (domain.Order, error) {
	var o domain.Order
	if err := doc.DataTo(&o); err != nil {
		return domain.Order{}, fmt.Errorf("decode order %s: %w", doc.Ref.ID, err)
	}
	o.ID = doc.Ref.ID
	return o, nil
}
