package service

import (
	"errors"

	"github.com/dukerupert/pantry/internal/connectivity"
	"github.com/dukerupert/pantry/internal/domain"
)

// Product errors - use domain.ENOTFOUND
var (
	ErrProductNotFound = domain.ErrProductNotFound
)

// Image upload errors - use domain.EINVALID
var (
	ErrImageRequired        = domain.Invalid("", "Image file is required")
	ErrImageTooLarge        = domain.Invalid("", "Image must be 5MB or smaller")
	ErrUnsupportedImageType = domain.Invalid("", "Image must be JPEG, PNG, WebP or GIF")
)

// Order-related errors
var (
	ErrOrderNotFound         = domain.ErrOrderNotFound
	ErrEmptyCart             = domain.ErrEmptyCart
	ErrMissingCollectionDate = domain.ErrMissingCollectionDate
	ErrMissingCollectionTime = domain.ErrMissingCollectionTime
	ErrInvalidCollectionDate = domain.ErrInvalidCollectionDate
	ErrTotalMismatch         = domain.ErrTotalMismatch
	ErrInvalidTransition     = domain.ErrInvalidTransition
	ErrCheckoutInProgress    = domain.ErrCheckoutInProgress
)

// Inventory errors
var (
	ErrInventoryNotFound = domain.ErrInventoryNotFound
	ErrInsufficientStock = domain.ErrInsufficientStock
	ErrInventoryExists   = domain.ErrInventoryExists
)

// Auth errors
var (
	ErrNotAuthenticated = domain.Unauthorized("", "Sign in to continue")
)

// opError tags domain errors with op and converts everything else. Backend
// failures caused by lost connectivity surface as EOFFLINE.
func opError(op string, err error, message string) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		if de.Op == "" {
			return domain.WithOp(err, op)
		}
		return err
	}
	if domain.IsValidationError(err) {
		return err
	}
	if connectivity.IsNetworkError(err) {
		offline := domain.Offline(op).(*domain.Error)
		offline.Err = err
		return offline
	}
	return domain.Internal(err, op, message)
}
