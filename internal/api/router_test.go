package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderpulse/ordersbff/internal/config"
	"github.com/orderpulse/ordersbff/internal/domain"
	"github.com/orderpulse/ordersbff/internal/metrics"
	"github.com/orderpulse/ordersbff/internal/result"
)

type fakeOrderService struct {
	topSold     result.Outcome[[]domain.ProductAggregate]
	update      result.Outcome[result.Unit]
	updatedNo   string
	updatedWith *int
}

func (f *fakeOrderService) GetTopSoldProducts(context.Context) result.Outcome[[]domain.ProductAggregate] {
	return f.topSold
}

func (f *fakeOrderService) UpdateProductStock(_ context.Context, merchantProductNo string, stock int) result.Outcome[result.Unit] {
	f.updatedNo = merchantProductNo
	f.updatedWith = &stock
	return f.update
}

type fakeStockEvents struct {
	events []*domain.StockEvent
	err    error
	limit  int
}

func (f *fakeStockEvents) Create(context.Context, *domain.StockEvent) error { return nil }

func (f *fakeStockEvents) ListRecent(_ context.Context, limit int) ([]*domain.StockEvent, error) {
	f.limit = limit
	return f.events, f.err
}

type envelope struct {
	Success bool                `json:"success"`
	Errors  []result.ErrorEntry `json:"errors"`
	Data    json.RawMessage     `json:"data"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, svc *fakeOrderService, events *fakeStockEvents, apiKeyHash string) *gin.Engine {
	t.Helper()
	cfg := &config.Config{Environment: "test", APIKeyHash: apiKeyHash}
	if events == nil {
		return NewRouter(cfg, svc, nil, metrics.NewRegistry(), zap.NewNop())
	}
	return NewRouter(cfg, svc, events, metrics.NewRegistry(), zap.NewNop())
}

func do(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &fakeOrderService{}, nil, "")

	w := do(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(t, &fakeOrderService{}, nil, "")

	w := do(router, http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = do(router, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestTopSold_Success(t *testing.T) {
	svc := &fakeOrderService{topSold: result.Success([]domain.ProductAggregate{
		{ProductName: "Keyboard", Gtin: "123", TotalQuantity: 8, MerchantProductNo: "K123"},
	})}
	router := newTestRouter(t, svc, nil, "")

	w := do(router, http.MethodGet, "/api/orders/top-sold", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.NotNil(t, env.Errors)
	assert.Empty(t, env.Errors)
	assert.JSONEq(t, `[{"productName":"Keyboard","gtin":"123","totalQuantity":8,"merchantProductNo":"K123"}]`, string(env.Data))
}

func TestTopSold_EmptyListIsArray(t *testing.T) {
	svc := &fakeOrderService{topSold: result.Success([]domain.ProductAggregate{})}
	router := newTestRouter(t, svc, nil, "")

	w := do(router, http.MethodGet, "/api/orders/top-sold", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, w).Data))
}

func TestTopSold_FailureStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantStatus int
	}{
		{name: "upstream not found", code: http.StatusNotFound, wantStatus: http.StatusNotFound},
		{name: "rate limited", code: http.StatusTooManyRequests, wantStatus: http.StatusTooManyRequests},
		{name: "canceled", code: 499, wantStatus: 499},
		{name: "not an error status", code: 42, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeOrderService{topSold: result.FailureText[[]domain.ProductAggregate](tt.code, "failed")}
			router := newTestRouter(t, svc, nil, "")

			w := do(router, http.MethodGet, "/api/orders/top-sold", "", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, []result.ErrorEntry{{Text: "failed"}}, env.Errors)
			assert.Empty(t, env.Data)
		})
	}
}

func TestTopSold_FailureWithoutEntriesHasEmptyErrors(t *testing.T) {
	svc := &fakeOrderService{topSold: result.Failure[[]domain.ProductAggregate](http.StatusBadGateway)}
	router := newTestRouter(t, svc, nil, "")

	w := do(router, http.MethodGet, "/api/orders/top-sold", "", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"errors":[]`)
}

func TestUpdateStock_Success(t *testing.T) {
	svc := &fakeOrderService{update: result.Success(result.Unit{})}
	router := newTestRouter(t, svc, nil, "")

	w := do(router, http.MethodPatch, "/api/orders/update-stock/K123", `{"stock":0}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"errors":[]}`, w.Body.String())
	assert.Equal(t, "K123", svc.updatedNo)
	require.NotNil(t, svc.updatedWith)
	assert.Equal(t, 0, *svc.updatedWith)
}

func TestUpdateStock_InvalidBody(t *testing.T) {
	for name, body := range map[string]string{
		"missing stock": `{}`,
		"wrong type":    `{"stock":"many"}`,
		"not json":      `stock=5`,
	} {
		t.Run(name, func(t *testing.T) {
			svc := &fakeOrderService{update: result.Success(result.Unit{})}
			router := newTestRouter(t, svc, nil, "")

			w := do(router, http.MethodPatch, "/api/orders/update-stock/K123", body, nil)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
			assert.Len(t, env.Errors, 1)
			assert.Nil(t, svc.updatedWith)
		})
	}
}

func TestUpdateStock_BlankMerchantProductNo(t *testing.T) {
	svc := &fakeOrderService{update: result.Success(result.Unit{})}
	router := newTestRouter(t, svc, nil, "")

	w := do(router, http.MethodPatch, "/api/orders/update-stock/%20", `{"stock":3}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.updatedWith)
}

func TestUpdateStock_DotSegmentMerchantProductNo(t *testing.T) {
	for _, path := range []string{
		"/api/orders/update-stock/.",
		"/api/orders/update-stock/..",
		"/api/orders/update-stock/%2E%2E",
	} {
		t.Run(path, func(t *testing.T) {
			svc := &fakeOrderService{update: result.Success(result.Unit{})}
			router := newTestRouter(t, svc, nil, "")

			w := do(router, http.MethodPatch, path, `{"stock":25}`, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, decodeEnvelope(t, w).Success)
			assert.Nil(t, svc.updatedWith)
		})
	}
}

func TestUpdateStock_UpstreamFailure(t *testing.T) {
	svc := &fakeOrderService{
		update: result.Failure[result.Unit](http.StatusNotFound, result.ErrorEntry{Text: "Product not found"}),
	}
	router := newTestRouter(t, svc, nil, "")

	w := do(router, http.MethodPatch, "/api/orders/update-stock/missing", `{"stock":3}`, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []result.ErrorEntry{{Text: "Product not found"}}, decodeEnvelope(t, w).Errors)
}

func TestUpdateStock_RequiresAPIKeyWhenConfigured(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := &fakeOrderService{update: result.Success(result.Unit{})}
	router := newTestRouter(t, svc, nil, string(hash))

	w := do(router, http.MethodPatch, "/api/orders/update-stock/K123", `{"stock":3}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodPatch, "/api/orders/update-stock/K123", `{"stock":3}`,
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, svc.updatedWith)

	w = do(router, http.MethodPatch, "/api/orders/update-stock/K123", `{"stock":3}`,
		map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/orders/top-sold", "", nil)
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestStockEvents(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		router := newTestRouter(t, &fakeOrderService{}, nil, "")

		w := do(router, http.MethodGet, "/api/orders/stock-events", "", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("lists recent", func(t *testing.T) {
		events := &fakeStockEvents{events: []*domain.StockEvent{
			{MerchantProductNo: "K123", Stock: 25, RequestedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		}}
		router := newTestRouter(t, &fakeOrderService{}, events, "")

		w := do(router, http.MethodGet, "/api/orders/stock-events?limit=500", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 100, events.limit)
		assert.Contains(t, string(decodeEnvelope(t, w).Data), `"merchantProductNo":"K123"`)
	})

	t.Run("invalid limit", func(t *testing.T) {
		router := newTestRouter(t, &fakeOrderService{}, &fakeStockEvents{}, "")

		w := do(router, http.MethodGet, "/api/orders/stock-events?limit=abc", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		events := &fakeStockEvents{err: errors.New("connection refused")}
		router := newTestRouter(t, &fakeOrderService{}, events, "")

		w := do(router, http.MethodGet, "/api/orders/stock-events", "", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 20, events.limit)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeOrderService{topSold: result.Success([]domain.ProductAggregate{})}, nil, "")

	do(router, http.MethodGet, "/api/orders/top-sold", "", nil)
	w := do(router, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/api/orders/top-sold",status="200"} 1`)
}
