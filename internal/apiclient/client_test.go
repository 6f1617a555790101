package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderpulse/ordersbff/internal/domain"
	"github.com/orderpulse/ordersbff/internal/result"
)

func TestTopSold(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/top-sold", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"errors":[],"data":[{"productName":"Keyboard","gtin":"123","totalQuantity":8,"merchantProductNo":"K123"}]}`))
	}))
	defer server.Close()

	products, err := New(server.URL+"/", "", time.Second).TopSold(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.ProductAggregate{
		{ProductName: "Keyboard", Gtin: "123", TotalQuantity: 8, MerchantProductNo: "K123"},
	}, products)
}

func TestUpdateStock(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"success":true,"errors":[]}`))
	}))
	defer server.Close()

	err := New(server.URL, "s3cret", time.Second).UpdateStock(context.Background(), "SKU 1", 25)

	require.NoError(t, err)
	assert.Equal(t, "/api/orders/update-stock/SKU%201", gotPath)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assert.Equal(t, map[string]int{"stock": 25}, gotBody)
}

func TestErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"errors":[{"text":"Product not found"}]}`))
	}))
	defer server.Close()

	err := New(server.URL, "", time.Second).UpdateStock(context.Background(), "missing", 1)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, []result.ErrorEntry{{Text: "Product not found"}}, apiErr.Errors)
	assert.Contains(t, err.Error(), "Product not found")
}

func TestErrorResponseWithoutEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, "", time.Second).TopSold(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "orders API returned status 502", apiErr.Error())
}
