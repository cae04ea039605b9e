package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	dbErr := errors.New("rpc error: code = Unavailable")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", &Error{Code: EINVALID, Message: "Cart is empty"}, "Cart is empty"},
		{"with op", &Error{Code: EINVALID, Op: "OrderService.PlaceOrder", Message: "Cart is empty"}, "OrderService.PlaceOrder: Cart is empty"},
		{"with op and cause", &Error{Code: EINTERNAL, Op: "ProductService.CreateProduct", Message: "Failed to create product", Err: dbErr},
			"ProductService.CreateProduct: Failed to create product: rpc error: code = Unavailable"},
		{"cause without op", &Error{Code: EINTERNAL, Message: "Failed to create product", Err: dbErr},
			"Failed to create product: rpc error: code = Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_UnwrapAndIs(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := Internal(cause, "InventoryService.AdjustAfterOrder", "Failed to adjust inventory")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}

	tagged := WithOp(ErrInsufficientStock, "InventoryService.AdjustAfterOrder")
	if !errors.Is(tagged, ErrInsufficientStock) {
		t.Error("a tagged sentinel should still match the sentinel")
	}
	if errors.Is(tagged, ErrInventoryNotFound) {
		t.Error("different sentinels must not match")
	}
	if ErrInsufficientStock.Op != "" {
		t.Error("WithOp must not mutate the sentinel")
	}

	plain := errors.New("plain")
	if WithOp(plain, "op") != plain {
		t.Error("WithOp should return non-domain errors unchanged")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"sentinel", ErrTotalMismatch, EINVALID},
		{"wrapped sentinel", fmt.Errorf("checkout: %w", ErrInventoryExists), ECONFLICT},
		{"offline", Offline("ProfileService.Update"), EOFFLINE},
		{"validation", NewValidationError("product", "name", "Name is required"), EINVALID},
		{"plain error", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	const generic = "An internal error occurred. Please try again later."

	multi := NewValidationError("product", "name", "Name is required")
	multi = AddFieldError(multi, "price", "Price must not be negative")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"user facing", ErrTotalMismatch, "Order total does not match items"},
		{"internal hides details", Internal(errors.New("secret dsn"), "op", "Failed to save"), generic},
		{"plain error", errors.New("secret dsn"), generic},
		{"single field", NewValidationError("profile", "displayName", "Display name is required"), "Display name is required"},
		{"several fields", multi, "Please correct the highlighted fields."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorOp(t *testing.T) {
	if got := ErrorOp(WithOp(ErrEmptyCart, "OrderService.PlaceOrder")); got != "OrderService.PlaceOrder" {
		t.Errorf("ErrorOp() = %q", got)
	}
	if got := ErrorOp(errors.New("plain")); got != "" {
		t.Errorf("ErrorOp(plain) = %q, want empty", got)
	}
	if got := ErrorOp(nil); got != "" {
		t.Errorf("ErrorOp(nil) = %q, want empty", got)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(EINVALID, "admin.orders", "unknown status %q", "lost")

	if ErrorCode(err) != EINVALID {
		t.Errorf("code = %q", ErrorCode(err))
	}
	if ErrorMessage(err) != `unknown status "lost"` {
		t.Errorf("message = %q", ErrorMessage(err))
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, EINTERNAL, "op", "msg") != nil {
		t.Error("WrapError(nil) should be nil")
	}

	cause := errors.New("bucket missing")
	err := WrapError(cause, EINTERNAL, "ProductService.UploadImage", "Failed to store image")
	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if ErrorOp(err) != "ProductService.UploadImage" {
		t.Errorf("op = %q", ErrorOp(err))
	}
}

func TestValidationErrors(t *testing.T) {
	err := NewValidationError("product", "name", "Name is required")
	err = AddFieldError(err, "category", "Category is required")

	fields := GetValidationFields(err)
	if len(fields) != 2 || fields["category"] != "Category is required" {
		t.Errorf("fields = %v", fields)
	}
	if err.Error() != "product: validation failed for 2 fields" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !IsValidationError(err) {
		t.Error("IsValidationError should be true")
	}

	fresh := AddFieldError(nil, "quantity", "Quantity must not be negative")
	if GetValidationFields(fresh)["quantity"] == "" {
		t.Error("AddFieldError(nil) should start a new validation error")
	}

	if IsValidationError(ErrEmptyCart) || GetValidationFields(ErrEmptyCart) != nil {
		t.Error("domain errors are not validation errors")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"unauthorized", Unauthorized("auth", "Sign in to continue"), EUNAUTHORIZED},
		{"forbidden", Forbidden("admin", "Admins only"), EFORBIDDEN},
		{"invalid", Invalid("cart", "Quantity must be positive"), EINVALID},
		{"conflict", Conflict("inventory", "Inventory already exists"), ECONFLICT},
		{"offline", Offline("OrderService.PlaceOrder"), EOFFLINE},
		{"internal", Internal(errors.New("x"), "op", "Failed"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsCode(tt.err, tt.code) {
				t.Errorf("code = %q, want %q", ErrorCode(tt.err), tt.code)
			}
			if ErrorOp(tt.err) == "" {
				t.Error("op should be set")
			}
		})
	}

	if msg := ErrorMessage(Forbidden("admin", "Admins only")); msg != "Admins only" {
		t.Errorf("Forbidden message = %q", msg)
	}
}
