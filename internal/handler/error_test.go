package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ETOOLARGE, http.StatusRequestEntityTooLarge},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{domain.EOFFLINE, http.StatusServiceUnavailable},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponse_JSON(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found error",
			err:            domain.WithOp(domain.ErrProductNotFound, "ProductService.GetProduct"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   domain.ENOTFOUND,
		},
		{
			name:           "invalid error",
			err:            domain.Invalid("product.create", "price must be positive"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.EINVALID,
		},
		{
			name:           "total mismatch",
			err:            domain.WithOp(domain.ErrTotalMismatch, "OrderService.PlaceOrder"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.EINVALID,
		},
		{
			name:           "insufficient stock",
			err:            domain.ErrInsufficientStock,
			expectedStatus: http.StatusConflict,
			expectedCode:   domain.ECONFLICT,
		},
		{
			name:           "offline",
			err:            domain.Offline("OrderService.PlaceOrder"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   domain.EOFFLINE,
		},
		{
			name:           "plain error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   domain.EINTERNAL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rec := httptest.NewRecorder()

			ErrorResponse(rec, req, tt.err)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.expectedCode, decodeError(t, rec).Error.Code)
		})
	}
}

func TestErrorResponse_TotalMismatchMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodPost, "/api/checkout", nil), domain.ErrTotalMismatch)

	assert.Equal(t, "Order total does not match items", decodeError(t, rec).Error.Message)
}

func TestErrorResponse_InternalHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	err := domain.Internal(nil, "db.query", "failed to reach firestore at 10.0.0.7:8080")
	ErrorResponse(rec, req, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An internal error occurred. Please try again later.", decodeError(t, rec).Error.Message)
}

func TestErrorResponse_ValidationFields(t *testing.T) {
	err := domain.NewValidationError("product.create", "name", "Name is required")
	err = domain.AddFieldError(err, "price", "Price must not be negative")

	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodPost, "/test", nil), err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, domain.EINVALID, resp.Error.Code)
	assert.Len(t, resp.Error.Fields, 2)
}

func TestValidationErrorResponse_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rec := httptest.NewRecorder()

	err := domain.NewValidationError("product.create", "name", "name is required")
	err = domain.AddFieldError(err, "price", "price must be positive")

	ValidationErrorResponse(rec, req, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, domain.EINVALID, resp.Error.Code)
	assert.Len(t, resp.Error.Fields, 2)
	assert.Equal(t, "name is required", resp.Error.Fields["name"])
}

func TestValidationErrorResponse_NonValidationError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rec := httptest.NewRecorder()

	ValidationErrorResponse(rec, req, domain.ErrOrderNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFoundResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundResponse(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.ENOTFOUND, decodeError(t, rec).Error.Code)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name     string
		body     string
		limit    int64
		wantCode string
	}{
		{name: "valid", body: `{"name":"bread"}`},
		{name: "empty body", body: ``, wantCode: domain.EINVALID},
		{name: "malformed", body: `{"name":`, wantCode: domain.EINVALID},
		{name: "unknown field", body: `{"nam":"bread"}`, wantCode: domain.EINVALID},
		{name: "trailing object", body: `{"name":"a"}{"name":"b"}`, wantCode: domain.EINVALID},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", 64) + `"}`, limit: 16, wantCode: domain.ETOOLARGE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			if tt.limit > 0 {
				req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, tt.limit)
			}

			var got payload
			err := DecodeJSON(req, &got)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "bread", got.Name)
				return
			}
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
		})
	}
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test?limit=5&inStock=true&bad=x", nil)

	n, err := QueryInt(req, "limit")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	b, err := QueryBool(req, "inStock")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, *b)

	none, err := QueryBool(req, "featured")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = QueryInt(req, "bad")
	assert.True(t, domain.IsValidationError(err))
	_, err = QueryBool(req, "bad")
	assert.True(t, domain.IsValidationError(err))
}
