package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderpulse/ordersbff/internal/domain"
)

type stockEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStockEventRepository creates a new stock event repository
func NewStockEventRepository(db *sql.DB, logger *zap.Logger) *stockEventRepository {
	return &stockEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *stockEventRepository) Create(ctx context.Context, event *domain.StockEvent) error {
	query := `
		INSERT INTO stock_events (id, merchant_product_no, stock, requested_at)
		VALUES ($1, $2, $3, $4)
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.RequestedAt.IsZero() {
		event.RequestedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.MerchantProductNo,
		event.Stock,
		event.RequestedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create stock event", zap.Error(err))
		return err
	}

	return nil
}

// ListRecent returns up to limit events, newest first.
func (r *stockEventRepository) ListRecent(ctx context.Context, limit int) ([]*domain.StockEvent, error) {
	if limit <= 0 {
		return []*domain.StockEvent{}, nil
	}

	query := `
		SELECT id, merchant_product_no, stock, requested_at
		FROM stock_events
		ORDER BY requested_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to query stock events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.StockEvent, 0, limit)
	for rows.Next() {
		var event domain.StockEvent
		if err := rows.Scan(
			&event.ID,
			&event.MerchantProductNo,
			&event.Stock,
			&event.RequestedAt,
		); err != nil {
			r.logger.Error("Failed to scan stock event", zap.Error(err))
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate stock events", zap.Error(err))
		return nil, err
	}

	return events, nil
}
