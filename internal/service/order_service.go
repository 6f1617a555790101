package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/orderpulse/ordersbff/internal/channelengine"
	"github.com/orderpulse/ordersbff/internal/domain"
	"github.com/orderpulse/ordersbff/internal/ranking"
	"github.com/orderpulse/ordersbff/internal/repository"
	"github.com/orderpulse/ordersbff/internal/result"
)

// OrderService is safe for concurrent use; it holds no per-request state.
type OrderService interface {
	GetTopSoldProducts(ctx context.Context) result.Outcome[[]domain.ProductAggregate]
	UpdateProductStock(ctx context.Context, merchantProductNo string, stock int) result.Outcome[result.Unit]
}

type orderService struct {
	client   channelengine.Sender
	events   repository.StockEventRepository
	topLimit int
	logger   *zap.Logger
}

// NewOrderService creates a new order service. events may be nil, in which
// case stock updates are not audited.
func NewOrderService(
	client channelengine.Sender,
	events repository.StockEventRepository,
	topLimit int,
	logger *zap.Logger,
) *orderService {
	if topLimit <= 0 {
		topLimit = ranking.DefaultLimit
	}
	return &orderService{
		client:   client,
		events:   events,
		topLimit: topLimit,
		logger:   logger.With(zap.String("component", "OrderService")),
	}
}

// GetTopSoldProducts ranks the lines of all in-progress orders.
func (s *orderService) GetTopSoldProducts(ctx context.Context) result.Outcome[[]domain.ProductAggregate] {
	s.logger.Info("Fetching IN_PROGRESS orders")

	req := channelengine.NewRequest(http.MethodGet, "orders").
		AddQueryParameter("statuses", domain.OrderStatusInProgress.String())

	resp := channelengine.Execute[GetOrdersResponse](ctx, s.client, req)
	if !resp.IsSuccess() {
		s.logger.Error("Failed to fetch orders",
			zap.Int("error_code", resp.ErrorCode()),
			zap.Any("errors", resp.Errors()),
		)
		return result.Propagate[[]domain.ProductAggregate](resp)
	}

	return result.Map(resp, func(r GetOrdersResponse) []domain.ProductAggregate {
		return ranking.TopN(r.Content, s.topLimit)
	})
}

// UpdateProductStock replaces the stock of one product upstream.
func (s *orderService) UpdateProductStock(ctx context.Context, merchantProductNo string, stock int) result.Outcome[result.Unit] {
	s.logger.Info("Updating product stock",
		zap.String("merchant_product_no", merchantProductNo),
		zap.Int("stock", stock),
	)

	patch := []PatchOperation{{Op: "replace", Path: "/Stock", Value: stock}}
	req := channelengine.NewRequest(http.MethodPatch, "products", merchantProductNo).SetJSONBody(patch)

	resp := channelengine.ExecuteNoContent(ctx, s.client, req)
	if !resp.IsSuccess() {
		s.logger.Error("Failed to update stock",
			zap.String("merchant_product_no", merchantProductNo),
			zap.Int("error_code", resp.ErrorCode()),
			zap.Any("errors", resp.Errors()),
		)
		return resp
	}

	s.recordStockEvent(ctx, merchantProductNo, stock)
	return resp
}

func (s *orderService) recordStockEvent(ctx context.Context, merchantProductNo string, stock int) {
	if s.events == nil {
		return
	}
	event := &domain.StockEvent{
		MerchantProductNo: merchantProductNo,
		Stock:             stock,
		RequestedAt:       time.Now().UTC(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record stock event",
			zap.String("merchant_product_no", merchantProductNo),
			zap.Error(err),
		)
	}
}
