package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order represents a marketplace order as returned by the upstream
type Order struct {
	ID           int         `json:"id"`
	ChannelName  string      `json:"channelName"`
	ChannelID    int         `json:"channelId"`
	Status       OrderStatus `json:"status"`
	CreatedAt    Timestamp   `json:"createdAt"`
	Email        string      `json:"email"`
	CurrencyCode string      `json:"currencyCode"`
	OrderDate    Timestamp   `json:"orderDate"`
	Lines        []OrderLine `json:"lines"`
}

// OrderLine represents a single product line of an order
type OrderLine struct {
	ID                int    `json:"id"`
	Gtin              string `json:"gtin"`
	Description       string `json:"description"`
	Quantity          int    `json:"quantity"`
	MerchantProductNo string `json:"merchantProductNo"`
}

// ProductAggregate is one distinct product summed across orders
type ProductAggregate struct {
	ProductName       string `json:"productName"`
	Gtin              string `json:"gtin"`
	TotalQuantity     int    `json:"totalQuantity"`
	MerchantProductNo string `json:"merchantProductNo"`
}

// StockEvent is an audit record of a stock update relayed upstream
type StockEvent struct {
	ID                uuid.UUID `json:"id"`
	MerchantProductNo string    `json:"merchantProductNo"`
	Stock             int       `json:"stock"`
	RequestedAt       time.Time `json:"requestedAt"`
}

// Timestamp accepts the upstream date formats, with or without a UTC offset.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp format: %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
