package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/pantry/internal/connectivity"
	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/memstore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	testNow      = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	errBackend   = status.Error(codes.Unavailable, "backend unreachable")
	errUnrelated = errors.New("disk on fire")
)

func fixedNow() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticChecker is an OnlineChecker with a fixed answer.
type staticChecker bool

func (c staticChecker) Online() bool { return bool(c) }

func newGate(online bool) *connectivity.Gate {
	return connectivity.NewGate(staticChecker(online), nil)
}

// mockOrderRepo delegates to an embedded repository unless a Func is set.
type mockOrderRepo struct {
	domain.OrderRepository

	CreateOrderFunc       func(ctx context.Context, o *domain.Order) error
	UpdateOrderStatusFunc func(ctx context.Context, id string, from, to domain.OrderStatus, reason string, at time.Time) error
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, o *domain.Order) error {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, o)
	}
	return m.OrderRepository.CreateOrder(ctx, o)
}

func (m *mockOrderRepo) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, reason string, at time.Time) error {
	if m.UpdateOrderStatusFunc != nil {
		return m.UpdateOrderStatusFunc(ctx, id, from, to, reason, at)
	}
	return m.OrderRepository.UpdateOrderStatus(ctx, id, from, to, reason, at)
}

// recordingPublisher keeps every published subject and payload.
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

// testEnv wires the order and inventory services over one in-memory store.
type testEnv struct {
	store     *memstore.Store
	orderRepo *mockOrderRepo
	carts     *CartRegistry
	inventory *inventoryService
	orders    *orderService
	publisher *recordingPublisher
}

func newTestEnv(t *testing.T, online bool, seed ...memstore.SeedItem) *testEnv {
	t.Helper()

	store := memstore.New()
	store.Seed(seed, testNow.Add(-24*time.Hour))

	gate := newGate(online)
	pub := &recordingPublisher{}
	logger := discardLogger()

	inv := NewInventoryService(store, gate, pub, logger).(*inventoryService)
	inv.now = fixedNow

	repo := &mockOrderRepo{OrderRepository: store}
	carts := NewCartRegistry()
	orders := NewOrderService(repo, inv, carts, gate, pub, logger, OrderConfig{Location: time.UTC}).(*orderService)
	orders.now = fixedNow

	return &testEnv{
		store:     store,
		orderRepo: repo,
		carts:     carts,
		inventory: inv,
		orders:    orders,
		publisher: pub,
	}
}

func seedItem(id string, price float64, qty int) memstore.SeedItem {
	return memstore.SeedItem{
		Product:  domain.Product{ID: id, Name: "Product " + id, Category: "pantry", Price: price},
		Quantity: qty,
	}
}

// validCheckout is a slot the day after testNow.
func validCheckout(total float64) domain.CheckoutRequest {
	return domain.CheckoutRequest{
		CollectionDate: "2026-03-11",
		CollectionTime: "10:00",
		TotalAmount:    total,
	}
}

func mustProduct(t *testing.T, store *memstore.Store, id string) *domain.Product {
	t.Helper()
	p, err := store.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("GetProduct(%s): %v", id, err)
	}
	return p
}

func mustInventory(t *testing.T, store *memstore.Store, productID string) *domain.InventoryItem {
	t.Helper()
	inv, err := store.GetInventoryByProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("GetInventoryByProduct(%s): %v", productID, err)
	}
	return inv
}
