package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/pantry/internal/connectivity"
	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/memstore"
	"github.com/dukerupert/pantry/internal/service"
	"github.com/dukerupert/pantry/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminEnv struct {
	store     *memstore.Store
	products  *ProductHandler
	orders    *OrderHandler
	inventory *InventoryHandler
}

func newAdminEnv(t *testing.T) *adminEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	store.Seed(memstore.DemoCatalog(), time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))

	files, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	gate := connectivity.NewGate(connectivity.AlwaysOnline{}, nil)
	inventory := service.NewInventoryService(store, gate, nil, logger)
	orders := service.NewOrderService(store, inventory, service.NewCartRegistry(), gate, nil, logger, service.OrderConfig{Location: time.UTC})

	return &adminEnv{
		store:     store,
		products:  NewProductHandler(service.NewProductService(store, files, gate, logger)),
		orders:    NewOrderHandler(orders),
		inventory: NewInventoryHandler(inventory),
	}
}

func jsonRequest(method, target, body string, pathValues ...string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestProductHandler_CRUD(t *testing.T) {
	env := newAdminEnv(t)

	rec := httptest.NewRecorder()
	env.products.Create(rec, jsonRequest(http.MethodPost, "/api/admin/products",
		`{"name":"Rye loaf","category":"bakery","price":7.25}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.Product](t, rec)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.InStock)

	rec = httptest.NewRecorder()
	env.products.Update(rec, jsonRequest(http.MethodPut, "/api/admin/products/"+created.ID,
		`{"name":"Dark rye loaf","category":"bakery","price":7.5,"featured":true}`, "id", created.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Product](t, rec)
	assert.Equal(t, "Dark rye loaf", updated.Name)
	assert.True(t, updated.Featured)

	rec = httptest.NewRecorder()
	env.products.Create(rec, jsonRequest(http.MethodPost, "/api/admin/products", `{"price":-1}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	env.products.Delete(rec, jsonRequest(http.MethodDelete, "/api/admin/products/"+created.ID, "", "id", created.ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	env.products.Delete(rec, jsonRequest(http.MethodDelete, "/api/admin/products/"+created.ID, "", "id", created.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func imageRequest(t *testing.T, productID, contentType string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if content != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/"+productID+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetPathValue("id", productID)
	return req
}

func TestProductHandler_UploadImage(t *testing.T) {
	env := newAdminEnv(t)

	tests := []struct {
		name        string
		productID   string
		contentType string
		content     []byte
		wantStatus  int
	}{
		{name: "png", productID: "sourdough", contentType: "image/png", content: []byte("\x89PNG fake"), wantStatus: http.StatusOK},
		{name: "unsupported type", productID: "sourdough", contentType: "text/plain", content: []byte("hello"), wantStatus: http.StatusBadRequest},
		{name: "missing file", productID: "sourdough", wantStatus: http.StatusBadRequest},
		{name: "unknown product", productID: "ghost", contentType: "image/png", content: []byte("x"), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.products.UploadImage(rec, imageRequest(t, tt.productID, tt.contentType, tt.content))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				p := decode[domain.Product](t, rec)
				assert.True(t, strings.HasPrefix(p.ImageURL, "/uploads/products/sourdough/"))
				assert.True(t, strings.HasSuffix(p.ImageURL, ".png"))
			}
		})
	}
}

func TestOrderHandler(t *testing.T) {
	env := newAdminEnv(t)
	ctx := context.Background()

	order := &domain.Order{
		UserID:         "u1",
		Items:          []domain.OrderItem{{ProductID: "sourdough", ProductName: "Sourdough", Quantity: 1, Price: 6.5}},
		TotalAmount:    6.5,
		Status:         domain.OrderStatusPending,
		CreatedAt:      time.Now(),
		CollectionDate: "2099-01-01",
		CollectionTime: "10:00",
	}
	require.NoError(t, env.store.CreateOrder(ctx, order))

	t.Run("list by status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.orders.List(rec, jsonRequest(http.MethodGet, "/api/admin/orders?status=pending", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[struct {
			Orders []domain.Order `json:"orders"`
		}](t, rec)
		assert.Len(t, body.Orders, 1)

		rec = httptest.NewRecorder()
		env.orders.List(rec, jsonRequest(http.MethodGet, "/api/admin/orders?status=lost", ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("move collection", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.orders.UpdateCollection(rec, jsonRequest(http.MethodPatch, "/api/admin/orders/"+order.ID+"/collection",
			`{"collectionDate":"2099-01-02","collectionTime":"9:30"}`, "id", order.ID))
		require.Equal(t, http.StatusOK, rec.Code)
		updated := decode[domain.Order](t, rec)
		assert.Equal(t, "2099-01-02", updated.CollectionDate)
		assert.Equal(t, "09:30", updated.CollectionTime)
	})

	t.Run("status transitions", func(t *testing.T) {
		steps := []struct {
			status     string
			wantStatus int
		}{
			{"processing", http.StatusOK},
			{"pending", http.StatusConflict},
			{"shipped", http.StatusOK},
			{"delivered", http.StatusOK},
			{"cancelled", http.StatusConflict},
			{"bogus", http.StatusBadRequest},
		}
		for _, step := range steps {
			rec := httptest.NewRecorder()
			env.orders.UpdateStatus(rec, jsonRequest(http.MethodPatch, "/api/admin/orders/"+order.ID+"/status",
				`{"status":"`+step.status+`"}`, "id", order.ID))
			assert.Equal(t, step.wantStatus, rec.Code, step.status)
		}
	})

	t.Run("collection frozen after shipping", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.orders.UpdateCollection(rec, jsonRequest(http.MethodPatch, "/api/admin/orders/"+order.ID+"/collection",
			`{"collectionDate":"2099-01-03","collectionTime":"11:00"}`, "id", order.ID))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestInventoryHandler(t *testing.T) {
	env := newAdminEnv(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	env.inventory.List(rec, jsonRequest(http.MethodGet, "/api/admin/inventory", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[struct {
		Inventory []domain.InventoryItem `json:"inventory"`
	}](t, rec)
	require.Len(t, listed.Inventory, 3)

	honey, err := env.store.GetInventoryByProduct(ctx, "honey-jar")
	require.NoError(t, err)

	t.Run("restock flips in stock", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.inventory.SetQuantity(rec, jsonRequest(http.MethodPatch, "/api/admin/inventory/"+honey.ID+"/quantity",
			`{"quantity":12}`, "id", honey.ID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 12, decode[domain.InventoryItem](t, rec).Quantity)

		p, err := env.store.GetProduct(ctx, "honey-jar")
		require.NoError(t, err)
		assert.True(t, p.InStock)
	})

	t.Run("negative quantity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.inventory.SetQuantity(rec, jsonRequest(http.MethodPatch, "/api/admin/inventory/"+honey.ID+"/quantity",
			`{"quantity":-1}`, "id", honey.ID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("move location", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.inventory.SetLocation(rec, jsonRequest(http.MethodPatch, "/api/admin/inventory/"+honey.ID+"/location",
			`{"location":"Shelf B"}`, "id", honey.ID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Shelf B", decode[domain.InventoryItem](t, rec).Location)
	})

	t.Run("duplicate record", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.inventory.Create(rec, jsonRequest(http.MethodPost, "/api/admin/inventory",
			`{"productId":"honey-jar","quantity":1,"location":"Shelf C"}`))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete then recreate", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.inventory.Delete(rec, jsonRequest(http.MethodDelete, "/api/admin/inventory/"+honey.ID, "", "id", honey.ID))
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = httptest.NewRecorder()
		env.inventory.Create(rec, jsonRequest(http.MethodPost, "/api/admin/inventory",
			`{"productId":"honey-jar","quantity":3,"location":"Shelf C"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 3, decode[domain.InventoryItem](t, rec).Quantity)
	})

	t.Run("unknown record", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.inventory.Delete(rec, jsonRequest(http.MethodDelete, "/api/admin/inventory/ghost", "", "id", "ghost"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
