package domain

import (
	"context"
	"time"
)

// Order-related domain errors.
var (
	ErrOrderNotFound          = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyCart              = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrMissingCollectionDate  = &Error{Code: EINVALID, Message: "Collection date is required"}
	ErrMissingCollectionTime  = &Error{Code: EINVALID, Message: "Collection time is required"}
	ErrInvalidCollectionDate  = &Error{Code: EINVALID, Message: "Collection date and time must be in the future"}
	ErrTotalMismatch          = &Error{Code: EINVALID, Message: "Order total does not match items"}
	ErrInvalidOrderStatus     = &Error{Code: EINVALID, Message: "Invalid order status"}
	ErrInvalidTransition      = &Error{Code: ECONFLICT, Message: "Order status cannot change that way"}
	ErrOrderStatusChanged     = &Error{Code: ECONFLICT, Message: "Order status changed, reload and try again"}
	ErrCheckoutInProgress     = &Error{Code: ECONFLICT, Message: "A checkout is already in progress"}
	ErrReconciliationRequired = &Error{Code: EINTERNAL, Message: "Order requires manual reconciliation"}
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the statuses each status may move to.
// Delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is a persisted line item. It is a copy of a cart line taken at
// placement time and never follows later product price changes.
type OrderItem struct {
	ProductID   string  `firestore:"productId" json:"productId"`
	ProductName string  `firestore:"productName" json:"productName"`
	Quantity    int     `firestore:"quantity" json:"quantity"`
	Price       float64 `firestore:"price" json:"price"`
}

// Order is a customer's pickup order.
type Order struct {
	ID             string      `firestore:"-" json:"id"`
	UserID         string      `firestore:"userId" json:"userId"`
	Items          []OrderItem `firestore:"items" json:"items"`
	TotalAmount    float64     `firestore:"totalAmount" json:"totalAmount"`
	Status         OrderStatus `firestore:"status" json:"status"`
	CreatedAt      time.Time   `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time   `firestore:"updatedAt" json:"updatedAt"`
	CollectionDate string      `firestore:"collectionDate,omitempty" json:"collectionDate,omitempty"`
	CollectionTime string      `firestore:"collectionTime,omitempty" json:"collectionTime,omitempty"`

	// FailureReason is set when placement was rolled back after persistence.
	FailureReason string `firestore:"failureReason,omitempty" json:"failureReason,omitempty"`
}

// StockAdjustments returns the per-product decrements for the order.
func (o *Order) StockAdjustments() []StockAdjustment {
	out := make([]StockAdjustment, 0, len(o.Items))
	for _, item := range o.Items {
		out = append(out, StockAdjustment{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

// OrderFilter narrows an order listing. Results are ordered newest first.
type OrderFilter struct {
	UserID string
	Status OrderStatus
	Limit  int
}

// OrderRepository is the persistence contract for orders.
type OrderRepository interface {
	// CreateOrder assigns o.ID.
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)

	// UpdateOrderStatus moves the order from one status to another and sets
	// the failure reason (may be empty) and updatedAt. It returns
	// ErrOrderStatusChanged if the stored status is no longer from.
	UpdateOrderStatus(ctx context.Context, id string, from, to OrderStatus, reason string, at time.Time) error
	UpdateOrderCollection(ctx context.Context, id, date, clock string, at time.Time) error
}
