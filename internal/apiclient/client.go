package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/orderpulse/ordersbff/internal/domain"
	"github.com/orderpulse/ordersbff/internal/result"
)

// APIError is a non-2xx response from the orders API.
type APIError struct {
	StatusCode int
	Errors     []result.ErrorEntry
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("orders API returned status %d", e.StatusCode)
	}
	texts := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		texts = append(texts, entry.Text)
	}
	return fmt.Sprintf("orders API returned status %d: %s", e.StatusCode, strings.Join(texts, "; "))
}

// Client calls the orders API exposed by cmd/server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the API at baseURL. apiKey may be empty when the
// server does not protect stock updates.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type envelope struct {
	Success bool                `json:"success"`
	Errors  []result.ErrorEntry `json:"errors"`
	Data    json.RawMessage     `json:"data"`
}

// TopSold fetches the ranked top-selling products.
func (c *Client) TopSold(ctx context.Context) ([]domain.ProductAggregate, error) {
	var products []domain.ProductAggregate
	if err := c.do(ctx, http.MethodGet, "/api/orders/top-sold", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateStock sets the stock of one product.
func (c *Client) UpdateStock(ctx context.Context, merchantProductNo string, stock int) error {
	path := "/api/orders/update-stock/" + url.PathEscape(merchantProductNo)
	return c.do(ctx, http.MethodPatch, path, map[string]int{"stock": stock}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to execute request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Errors: env.Errors}
	}
	if decodeErr != nil {
		return errors.Wrap(decodeErr, "failed to decode response")
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "failed to decode response data")
		}
	}
	return nil
}
