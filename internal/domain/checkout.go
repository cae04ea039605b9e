package domain

import (
	"strings"
	"time"
)

// Collection slot formats.
const (
	CollectionDateLayout = "2006-01-02"
	CollectionTimeLayout = "15:04"
)

// CheckoutState is the stage a user's checkout attempt has reached.
type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutValidating CheckoutState = "validating"
	CheckoutPlacing    CheckoutState = "placing"
	CheckoutSucceeded  CheckoutState = "succeeded"
	CheckoutRejected   CheckoutState = "rejected"
)

// InFlight reports whether an attempt in this state is still running.
func (s CheckoutState) InFlight() bool {
	return s == CheckoutValidating || s == CheckoutPlacing
}

// CheckoutRequest is what a customer submits to place an order.
type CheckoutRequest struct {
	CollectionDate string  `json:"collectionDate"`
	CollectionTime string  `json:"collectionTime"`
	TotalAmount    float64 `json:"totalAmount"`
}

// CheckoutStatus is the externally visible state of a user's last attempt.
type CheckoutStatus struct {
	State   CheckoutState `json:"state"`
	OrderID string        `json:"orderId,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ParseCollectionSlot parses a date and time in loc. Blank inputs are
// reported as missing before any format check.
func ParseCollectionSlot(op, date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" {
		return time.Time{}, WithOp(ErrMissingCollectionDate, op)
	}
	if clock == "" {
		return time.Time{}, WithOp(ErrMissingCollectionTime, op)
	}
	if loc == nil {
		loc = time.UTC
	}
	slot, err := time.ParseInLocation(CollectionDateLayout+" "+CollectionTimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, &Error{
			Code:    EINVALID,
			Message: "Collection date must be YYYY-MM-DD and time HH:MM",
			Op:      op,
			Err:     err,
		}
	}
	return slot, nil
}
