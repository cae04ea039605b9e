// Package memstore is an in-memory implementation of the storefront
// repositories, used for local development and tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/google/uuid"
)

var (
	_ domain.ProductRepository   = (*Store)(nil)
	_ domain.OrderRepository     = (*Store)(nil)
	_ domain.InventoryRepository = (*Store)(nil)
	_ domain.UserRepository      = (*Store)(nil)
)

// Store holds every collection behind one lock.
type Store struct {
	mu        sync.Mutex
	products  map[string]domain.Product
	orders    map[string]domain.Order
	inventory map[string]domain.InventoryItem
	users     map[string]domain.User

	// failNext, when set, is returned by the next repository call.
	failNext error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		products:  make(map[string]domain.Product),
		orders:    make(map[string]domain.Order),
		inventory: make(map[string]domain.InventoryItem),
		users:     make(map[string]domain.User),
	}
}

// FailNext makes the next repository call return err. Used to simulate
// backend outages.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

// takeFailure must be called with s.mu held.
func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func newID() string {
	return uuid.NewString()
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0)
	for _, p := range s.products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = newID()
	}
	s.products[p.ID] = *p
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	if _, ok := s.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	if _, ok := s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.products, id)
	for invID, inv := range s.inventory {
		if inv.ProductID == id {
			delete(s.inventory, invID)
		}
	}
	return nil
}

// =============================================================================
// ORDERS
// =============================================================================

func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	if o.ID == "" {
		o.ID = newID()
	}
	stored := *o
	stored.Items = append([]domain.OrderItem(nil), o.Items...)
	s.orders[o.ID] = stored
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	out := make([]domain.Order, 0)
	for _, o := range s.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		o.Items = append([]domain.OrderItem(nil), o.Items...)
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	o, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrOrderStatusChanged
	}
	o.Status = to
	o.UpdatedAt = at
	if reason != "" {
		o.FailureReason = reason
	}
	s.orders[id] = o
	return nil
}

func (s *Store) UpdateOrderCollection(ctx context.Context, id, date, clock string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	o, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.CollectionDate = date
	o.CollectionTime = clock
	o.UpdatedAt = at
	s.orders[id] = o
	return nil
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) SaveUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	s.users[u.ID] = *u
	return nil
}

// newerFirst orders by creation time descending, then by ID for stability.
func newerFirst(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA < idB
}
