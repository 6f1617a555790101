package repository

import (
	"context"

	"github.com/orderpulse/ordersbff/internal/domain"
)

// StockEventRepository stores the audit trail of stock updates relayed upstream.
type StockEventRepository interface {
	Create(ctx context.Context, event *domain.StockEvent) error
	ListRecent(ctx context.Context, limit int) ([]*domain.StockEvent, error)
}
