package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessMetrics_NilReceiver(t *testing.T) {
	var m *BusinessMetrics

	assert.NotPanics(t, func() {
		m.CartItemAdded("p1", 2)
		m.CartEmptied()
		m.CheckoutFinished("succeeded")
		m.OrderPlaced(12.5, 3)
		m.OrderFailed("conflict")
		m.OrderTransitioned("pending", "processing")
		m.OrderUnreconciled()
		m.InventoryAdjusted("ok")
		m.StockDepleted()
		m.SetOnline(false)
		m.Blocked("OrderService.PlaceOrder")
		m.Fallback("products")
		m.EventPublished("orders.placed", nil)
	})
}

func TestBusinessMetrics_Record(t *testing.T) {
	m := NewBusinessMetrics("telemetry_test")

	m.CartItemAdded("p1", 3)
	m.OrderPlaced(18.25, 5)
	m.SetOnline(true)
	m.SetOnline(false)
	m.EventPublished("orders.placed", errors.New("nats down"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CartItemsAdded.WithLabelValues("p1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersPlaced))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Online))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("orders.placed", "error")))
}

func TestSentry_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	flush, err := InitSentry(SentryConfig{Enabled: false}, logger)
	require.NoError(t, err)
	require.NotNil(t, flush)
	defer flush()

	assert.False(t, IsEnabled())
	assert.NotPanics(t, func() {
		CaptureError(errors.New("boom"))
		CaptureOrderError(errors.New("boom"), "o1", "u1", nil)
		CaptureErrorFromContext(context.Background(), errors.New("boom"), nil)
		AddBreadcrumb("connectivity", "status changed", nil)
	})

	ctx := context.Background()
	spanCtx, finish := StartSpan(ctx, "checkout.place_order", "place order")
	finish()
	assert.Equal(t, ctx, spanCtx)
}

func TestSentry_EnabledWithoutDSN(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := InitSentry(SentryConfig{Enabled: true}, logger)
	require.NoError(t, err)
	assert.False(t, IsEnabled())
}

func TestSentryMiddleware_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := InitSentry(SentryConfig{}, logger)
	require.NoError(t, err)

	var called bool
	h := SentryContextMiddleware(func(context.Context) *UserInfo { return &UserInfo{ID: "u1"} })(
		SentryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusTeapot)
		})),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRecoverWithSentry_Repanics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := InitSentry(SentryConfig{}, logger)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "boom", func() {
		defer RecoverWithSentry()
		panic("boom")
	})
}
