package storefront

import (
	"context"
	"net/http"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/service"
)

// mockProductService implements service.ProductService for testing
type mockProductService struct {
	service.ProductService
	listProductsFunc func(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	getProductFunc   func(ctx context.Context, id string) (*domain.Product, error)
}

func (m *mockProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if m.listProductsFunc != nil {
		return m.listProductsFunc(ctx, filter)
	}
	return []domain.Product{}, nil
}

func (m *mockProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if m.getProductFunc != nil {
		return m.getProductFunc(ctx, id)
	}
	return nil, domain.ErrProductNotFound
}

// mockOrderService implements service.OrderService for testing
type mockOrderService struct {
	service.OrderService
	placeOrderFunc     func(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, error)
	checkoutStatusFunc func(userID string) domain.CheckoutStatus
	getOrderFunc       func(ctx context.Context, id string) (*domain.Order, error)
	listUserOrdersFunc func(ctx context.Context, userID string, limit int) ([]domain.Order, error)
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, error) {
	return m.placeOrderFunc(ctx, userID, req)
}

func (m *mockOrderService) CheckoutStatus(userID string) domain.CheckoutStatus {
	if m.checkoutStatusFunc != nil {
		return m.checkoutStatusFunc(userID)
	}
	return domain.CheckoutStatus{State: domain.CheckoutIdle}
}

func (m *mockOrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return m.getOrderFunc(ctx, id)
}

func (m *mockOrderService) ListUserOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	return m.listUserOrdersFunc(ctx, userID, limit)
}

// mockUserService implements service.UserService for testing
type mockUserService struct {
	getProfileFunc    func(ctx context.Context, id domain.Identity) (*domain.User, error)
	updateProfileFunc func(ctx context.Context, id domain.Identity, update domain.ProfileUpdate) (*domain.User, error)
}

func (m *mockUserService) GetProfile(ctx context.Context, id domain.Identity) (*domain.User, error) {
	return m.getProfileFunc(ctx, id)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id domain.Identity, update domain.ProfileUpdate) (*domain.User, error) {
	return m.updateProfileFunc(ctx, id, update)
}

// withIdentity attaches a signed-in customer to the request.
func withIdentity(r *http.Request, uid string) *http.Request {
	id := &domain.Identity{UID: uid, Email: uid + "@example.com", Role: domain.RoleCustomer}
	return r.WithContext(domain.NewContextWithIdentity(r.Context(), id))
}
