package service

import (
	"sync"

	"github.com/dukerupert/pantry/internal/domain"
)

// checkoutTracker records the state of each user's latest checkout attempt
// and refuses to start a second attempt while one is in flight.
type checkoutTracker struct {
	mu       sync.Mutex
	attempts map[string]domain.CheckoutStatus
}

func newCheckoutTracker() *checkoutTracker {
	return &checkoutTracker{attempts: make(map[string]domain.CheckoutStatus)}
}

// begin moves the user to Validating.
func (t *checkoutTracker) begin(userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.attempts[userID].State.InFlight() {
		return domain.ErrCheckoutInProgress
	}
	t.attempts[userID] = domain.CheckoutStatus{State: domain.CheckoutValidating}
	return nil
}

func (t *checkoutTracker) placing(userID string) {
	t.set(userID, domain.CheckoutStatus{State: domain.CheckoutPlacing})
}

func (t *checkoutTracker) succeed(userID, orderID string) {
	t.set(userID, domain.CheckoutStatus{State: domain.CheckoutSucceeded, OrderID: orderID})
}

func (t *checkoutTracker) reject(userID string, err error) {
	t.set(userID, domain.CheckoutStatus{State: domain.CheckoutRejected, Error: domain.ErrorMessage(err)})
}

func (t *checkoutTracker) set(userID string, s domain.CheckoutStatus) {
	t.mu.Lock()
	t.attempts[userID] = s
	t.mu.Unlock()
}

// status returns Idle for users who never checked out.
func (t *checkoutTracker) status(userID string) domain.CheckoutStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.attempts[userID]
	if !ok {
		return domain.CheckoutStatus{State: domain.CheckoutIdle}
	}
	return s
}
