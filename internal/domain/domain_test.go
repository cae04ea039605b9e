package domain

import (
	"context"
	"testing"
	"time"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	if !OrderStatusDelivered.Valid() {
		t.Error("delivered should be valid")
	}
	if OrderStatus("lost").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestOrder_StockAdjustments(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ProductID: "bread", Quantity: 2},
		{ProductID: "eggs", Quantity: 1},
	}}

	got := o.StockAdjustments()
	if len(got) != 2 || got[0] != (StockAdjustment{ProductID: "bread", Quantity: 2}) {
		t.Errorf("StockAdjustments() = %v", got)
	}
}

func TestParseCollectionSlot(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Skip("tzdata not available")
	}

	tests := []struct {
		name       string
		date, time string
		wantErr    error
		wantCode   string
	}{
		{"missing date", "", "10:00", ErrMissingCollectionDate, EINVALID},
		{"blank date", "   ", "10:00", ErrMissingCollectionDate, EINVALID},
		{"missing time", "2099-01-02", "", ErrMissingCollectionTime, EINVALID},
		{"bad format", "02/01/2099", "10:00", nil, EINVALID},
		{"bad time", "2099-01-02", "25:00", nil, EINVALID},
		{"ok", "2099-01-02", "10:30", nil, ""},
		{"single digit hour", "2099-01-02", "9:30", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := ParseCollectionSlot("checkout", tt.date, tt.time, denver)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if slot.Location() != denver {
					t.Errorf("slot location = %v, want %v", slot.Location(), denver)
				}
				return
			}
			if !IsCode(err, tt.wantCode) {
				t.Fatalf("code = %q, want %q", ErrorCode(err), tt.wantCode)
			}
			if tt.wantErr != nil && ErrorMessage(err) != ErrorMessage(tt.wantErr) {
				t.Errorf("message = %q, want %q", ErrorMessage(err), ErrorMessage(tt.wantErr))
			}
		})
	}

	slot, _ := ParseCollectionSlot("checkout", "2099-01-02", "9:30", denver)
	if got := slot.Format(CollectionTimeLayout); got != "09:30" {
		t.Errorf("normalised time = %q, want 09:30", got)
	}
}

func TestCheckoutState_InFlight(t *testing.T) {
	for state, want := range map[CheckoutState]bool{
		CheckoutIdle:       false,
		CheckoutValidating: true,
		CheckoutPlacing:    true,
		CheckoutSucceeded:  false,
		CheckoutRejected:   false,
	} {
		if got := state.InFlight(); got != want {
			t.Errorf("%s.InFlight() = %v, want %v", state, got, want)
		}
	}
}

func TestProduct_Validate(t *testing.T) {
	p := Product{Name: " ", Category: "", Price: -1}
	err := p.Validate("ProductService.CreateProduct")

	fields := GetValidationFields(err)
	for _, f := range []string{"name", "category", "price"} {
		if fields[f] == "" {
			t.Errorf("missing field error for %s", f)
		}
	}

	ok := Product{Name: "Sourdough", Category: "bread", Price: 6.5}
	if err := ok.Validate("op"); err != nil {
		t.Errorf("valid product rejected: %v", err)
	}
}

func TestProductFilter(t *testing.T) {
	yes, no := true, false
	p := Product{Category: "bakery", InStock: true, Featured: false}

	tests := []struct {
		name   string
		filter ProductFilter
		want   bool
	}{
		{"empty filter", ProductFilter{}, true},
		{"category match", ProductFilter{Category: "bakery"}, true},
		{"category miss", ProductFilter{Category: "dairy"}, false},
		{"in stock", ProductFilter{InStock: &yes}, true},
		{"out of stock only", ProductFilter{InStock: &no}, false},
		{"featured only", ProductFilter{Featured: &yes}, false},
		{"limit ignored", ProductFilter{Limit: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(p); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}

	if (ProductFilter{InStock: &yes}).Key() == (ProductFilter{InStock: &no}).Key() {
		t.Error("filters differing in inStock must not share a key")
	}
	if (ProductFilter{}).Key() == (ProductFilter{InStock: &no}).Key() {
		t.Error("nil and false must not share a key")
	}
}

func TestIdentity_MinimalUser(t *testing.T) {
	u := Identity{UID: "u1", Email: "a@example.com", DisplayName: "Alice"}.MinimalUser()
	if u.ID != "u1" || u.Email != "a@example.com" || u.Role != RoleCustomer {
		t.Errorf("MinimalUser() = %+v", u)
	}

	admin := Identity{UID: "root", Role: RoleAdmin}.MinimalUser()
	if admin.Role != RoleAdmin {
		t.Errorf("role = %q, want admin", admin.Role)
	}
}

func TestProfileUpdate_Validate(t *testing.T) {
	u := ProfileUpdate{DisplayName: "  Alice ", Phone: " 555 "}
	if err := u.Validate("op"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.DisplayName != "Alice" || u.Phone != "555" {
		t.Errorf("fields not trimmed: %+v", u)
	}

	blank := ProfileUpdate{DisplayName: "   "}
	if GetValidationFields(blank.Validate("op"))["displayName"] == "" {
		t.Error("blank display name should fail")
	}
}

func TestInventoryItem_InStock(t *testing.T) {
	if (&InventoryItem{Quantity: 0}).InStock() {
		t.Error("zero quantity is out of stock")
	}
	if !(&InventoryItem{Quantity: 3}).InStock() {
		t.Error("positive quantity is in stock")
	}
}

func TestCartLine_Subtotal(t *testing.T) {
	if got := (CartLine{Price: 2.5, Quantity: 3}).Subtotal(); got != 7.5 {
		t.Errorf("Subtotal() = %v, want 7.5", got)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if IsAuthenticated(ctx) || IsAdmin(ctx) || UserIDFromContext(ctx) != "" {
		t.Error("empty context should carry no identity")
	}

	ctx = NewContextWithIdentity(ctx, &Identity{UID: "u1", Role: RoleCustomer})
	if !IsAuthenticated(ctx) || IsAdmin(ctx) || UserIDFromContext(ctx) != "u1" {
		t.Error("customer identity not read back")
	}

	ctx = NewContextWithIdentity(ctx, &Identity{UID: "root", Role: RoleAdmin})
	if !IsAdmin(ctx) {
		t.Error("admin identity not read back")
	}

	ctx = NewContextWithRequestID(ctx, "req-1")
	if RequestIDFromContext(ctx) != "req-1" {
		t.Error("request id not read back")
	}
}
