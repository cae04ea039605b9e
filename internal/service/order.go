package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/pantry/internal/connectivity"
	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/events"
	"github.com/dukerupert/pantry/internal/telemetry"
	"github.com/shopspring/decimal"
)

// totalTolerance is the largest difference allowed between the caller's
// total and the recomputed one.
var totalTolerance = decimal.New(1, -2)

// OrderService provides the checkout workflow and order administration.
type OrderService interface {
	// PlaceOrder validates the user's cart and collection slot, persists the
	// order, takes its items out of stock and clears the cart.
	PlaceOrder(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, error)

	// CheckoutStatus reports the state of the user's latest attempt.
	CheckoutStatus(userID string) domain.CheckoutStatus

	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error)
	ListOrders(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error)

	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	UpdateCollection(ctx context.Context, id, date, clock string) (*domain.Order, error)
}

// OrderConfig holds checkout settings.
type OrderConfig struct {
	// Location is the store's time zone for collection slots.
	Location *time.Location
}

type orderService struct {
	orders    domain.OrderRepository
	inventory InventoryService
	carts     *CartRegistry
	gate      *connectivity.Gate
	publisher events.Publisher
	logger    *slog.Logger
	location  *time.Location
	checkouts *checkoutTracker
	now       func() time.Time
}

// NewOrderService creates a new OrderService instance
func NewOrderService(
	orders domain.OrderRepository,
	inventory InventoryService,
	carts *CartRegistry,
	gate *connectivity.Gate,
	publisher events.Publisher,
	logger *slog.Logger,
	cfg OrderConfig,
) OrderService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &orderService{
		orders:    orders,
		inventory: inventory,
		carts:     carts,
		gate:      gate,
		publisher: publisher,
		logger:    logger,
		location:  loc,
		checkouts: newCheckoutTracker(),
		now:       time.Now,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, error) {
	const op = "OrderService.PlaceOrder"

	if userID == "" {
		return nil, domain.WithOp(ErrNotAuthenticated, op)
	}
	if err := s.checkouts.begin(userID); err != nil {
		return nil, domain.WithOp(err, op)
	}

	ctx, finish := telemetry.StartSpan(ctx, "checkout.place_order", "place order")
	defer finish()

	cart := s.carts.Cart(userID)
	lines := cart.Lines()

	slot, err := s.validate(op, lines, req)
	if err != nil {
		s.rejected(userID, err)
		return nil, err
	}
	req.CollectionDate = slot.Format(domain.CollectionDateLayout)
	req.CollectionTime = slot.Format(domain.CollectionTimeLayout)

	s.checkouts.placing(userID)
	order, err := s.place(ctx, op, userID, cart, lines, req)
	if err != nil {
		s.rejected(userID, err)
		return nil, err
	}

	s.checkouts.succeed(userID, order.ID)
	telemetry.Business.CheckoutFinished(string(domain.CheckoutSucceeded))
	return order, nil
}

func (s *orderService) rejected(userID string, err error) {
	s.checkouts.reject(userID, err)
	telemetry.Business.CheckoutFinished(string(domain.CheckoutRejected))
	telemetry.Business.OrderFailed(domain.ErrorCode(err))
}

// validate checks, in order: a non-empty cart, a collection date, a
// collection time, and a slot that is not in the past.
func (s *orderService) validate(op string, lines []domain.CartLine, req domain.CheckoutRequest) (time.Time, error) {
	if len(lines) == 0 {
		return time.Time{}, domain.WithOp(ErrEmptyCart, op)
	}

	slot, err := domain.ParseCollectionSlot(op, req.CollectionDate, req.CollectionTime, s.location)
	if err != nil {
		return time.Time{}, err
	}
	if slot.Before(s.now().In(s.location)) {
		return time.Time{}, domain.WithOp(ErrInvalidCollectionDate, op)
	}
	return slot, nil
}

func (s *orderService) place(ctx context.Context, op, userID string, cart *Cart, lines []domain.CartLine, req domain.CheckoutRequest) (*domain.Order, error) {
	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}

	items := snapshotLines(lines)
	total := orderTotal(items)
	if total.Sub(decimal.NewFromFloat(req.TotalAmount)).Abs().GreaterThan(totalTolerance) {
		s.logger.Warn("order total mismatch",
			"user_id", userID,
			"supplied", req.TotalAmount,
			"computed", total.StringFixed(2),
		)
		return nil, domain.WithOp(ErrTotalMismatch, op)
	}

	now := s.now()
	order := &domain.Order{
		UserID:         userID,
		Items:          items,
		TotalAmount:    total.Round(2).InexactFloat64(),
		Status:         domain.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
		CollectionDate: req.CollectionDate,
		CollectionTime: req.CollectionTime,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, opError(op, err, "Failed to place order")
	}

	if err := s.inventory.AdjustAfterOrder(ctx, order.StockAdjustments()); err != nil {
		s.compensate(ctx, order, err)
		return nil, err
	}

	cart.RemoveOrdered(items)
	if cart.IsEmpty() {
		telemetry.Business.CartEmptied()
	}

	units := totalItems(lines)
	telemetry.Business.OrderPlaced(order.TotalAmount, units)
	s.logger.Info("order placed",
		"order_id", order.ID,
		"user_id", userID,
		"total", order.TotalAmount,
		"units", units,
	)

	err := s.publisher.Publish(ctx, events.SubjectOrderPlaced, events.OrderPlaced{
		OrderID:        order.ID,
		UserID:         userID,
		TotalAmount:    order.TotalAmount,
		Units:          units,
		CollectionDate: order.CollectionDate,
		CollectionTime: order.CollectionTime,
		PlacedAt:       now,
	})
	telemetry.Business.EventPublished(events.SubjectOrderPlaced, err)
	if err != nil {
		s.logger.Warn("failed to publish order placed event", "order_id", order.ID, "error", err)
		telemetry.CaptureError(err, map[string]interface{}{
			"subject":  events.SubjectOrderPlaced,
			"order_id": order.ID,
		})
	}

	return order, nil
}

// compensate cancels an order whose stock could not be adjusted. If the
// cancellation also fails the order stays pending and is reported for
// manual reconciliation.
func (s *orderService) compensate(ctx context.Context, order *domain.Order, cause error) {
	reason := "Inventory adjustment failed: " + domain.ErrorMessage(cause)
	now := s.now()

	err := s.orders.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled, reason, now)
	if err == nil {
		order.Status = domain.OrderStatusCancelled
		order.FailureReason = reason
		order.UpdatedAt = now
		s.logger.Warn("order cancelled after inventory adjustment failed",
			"order_id", order.ID,
			"user_id", order.UserID,
			"error", cause,
		)
		return
	}

	telemetry.Business.OrderUnreconciled()
	s.logger.Error("order needs manual reconciliation",
		"order_id", order.ID,
		"user_id", order.UserID,
		"adjust_error", cause,
		"cancel_error", err,
	)
	telemetry.CaptureOrderError(
		domain.WrapError(fmt.Errorf("adjust: %w; cancel: %v", cause, err), domain.EINTERNAL, "OrderService.compensate", domain.ErrReconciliationRequired.Message),
		order.ID,
		order.UserID,
		map[string]interface{}{"total": order.TotalAmount, "items": len(order.Items)},
	)
}

func (s *orderService) CheckoutStatus(userID string) domain.CheckoutStatus {
	return s.checkouts.status(userID)
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, opError("OrderService.GetOrder", err, "Failed to load order")
	}
	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	const op = "OrderService.ListUserOrders"

	if userID == "" {
		return nil, domain.WithOp(ErrNotAuthenticated, op)
	}
	orders, err := s.orders.ListOrders(ctx, domain.OrderFilter{UserID: userID, Limit: limit})
	if err != nil {
		return nil, opError(op, err, "Failed to list orders")
	}
	return orders, nil
}

func (s *orderService) ListOrders(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error) {
	const op = "OrderService.ListOrders"

	if status != "" && !status.Valid() {
		return nil, domain.WithOp(domain.ErrInvalidOrderStatus, op)
	}
	orders, err := s.orders.ListOrders(ctx, domain.OrderFilter{Status: status, Limit: limit})
	if err != nil {
		return nil, opError(op, err, "Failed to list orders")
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	const op = "OrderService.UpdateStatus"

	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.WithOp(domain.ErrInvalidOrderStatus, op)
	}

	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, opError(op, err, "Failed to load order")
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, &domain.Error{
			Code:    domain.ECONFLICT,
			Message: ErrInvalidTransition.Message,
			Op:      op,
			Err:     fmt.Errorf("%s -> %s", order.Status, status),
		}
	}

	now := s.now()
	if err := s.orders.UpdateOrderStatus(ctx, id, order.Status, status, "", now); err != nil {
		return nil, opError(op, err, "Failed to update order")
	}

	telemetry.Business.OrderTransitioned(string(order.Status), string(status))
	s.logger.Info("order status updated", "order_id", id, "from", order.Status, "to", status)

	order.Status = status
	order.UpdatedAt = now
	return order, nil
}

// UpdateCollection moves the pickup slot of an order that has not shipped.
func (s *orderService) UpdateCollection(ctx context.Context, id, date, clock string) (*domain.Order, error) {
	const op = "OrderService.UpdateCollection"

	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}

	slot, err := domain.ParseCollectionSlot(op, date, clock, s.location)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if slot.Before(now.In(s.location)) {
		return nil, domain.WithOp(ErrInvalidCollectionDate, op)
	}

	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, opError(op, err, "Failed to load order")
	}
	if order.Status != domain.OrderStatusPending && order.Status != domain.OrderStatusProcessing {
		return nil, domain.Conflict(op, "Collection can only change before the order ships")
	}

	date, clock = slot.Format(domain.CollectionDateLayout), slot.Format(domain.CollectionTimeLayout)
	if err := s.orders.UpdateOrderCollection(ctx, id, date, clock, now); err != nil {
		return nil, opError(op, err, "Failed to update order")
	}

	order.CollectionDate = date
	order.CollectionTime = clock
	order.UpdatedAt = now
	return order, nil
}

// snapshotLines copies cart lines into order items.
func snapshotLines(lines []domain.CartLine) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
		})
	}
	return items
}

// orderTotal sums price × quantity in decimal.
func orderTotal(items []domain.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
