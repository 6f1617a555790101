package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderpulse/ordersbff/internal/api/middleware"
	"github.com/orderpulse/ordersbff/internal/repository"
	"github.com/orderpulse/ordersbff/internal/result"
	"github.com/orderpulse/ordersbff/internal/service"
)

const (
	defaultStockEventLimit = 20
	maxStockEventLimit     = 100
)

// HandleGetTopSold handles GET /api/orders/top-sold
func HandleGetTopSold(orders service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		o := orders.GetTopSoldProducts(c.Request.Context())
		if !o.IsSuccess() {
			logger.Warn("Top-sold request failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Int("error_code", o.ErrorCode()),
			)
		}
		respond(c, o, o.Data())
	}
}

// HandleUpdateStock handles PATCH /api/orders/update-stock/:merchantProductNo
func HandleUpdateStock(orders service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		merchantProductNo := strings.TrimSpace(c.Param("merchantProductNo"))
		if merchantProductNo == "" {
			respondError(c, http.StatusBadRequest, "merchantProductNo is required")
			return
		}
		if merchantProductNo == "." || merchantProductNo == ".." {
			respondError(c, http.StatusBadRequest, "merchantProductNo is invalid")
			return
		}

		var req service.UpdateStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}

		o := orders.UpdateProductStock(c.Request.Context(), merchantProductNo, *req.Stock)
		if !o.IsSuccess() {
			logger.Warn("Stock update failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("merchant_product_no", merchantProductNo),
				zap.Int("error_code", o.ErrorCode()),
			)
		}
		respond(c, o, nil)
	}
}

// HandleListStockEvents handles GET /api/orders/stock-events
func HandleListStockEvents(events repository.StockEventRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if events == nil {
			respondError(c, http.StatusServiceUnavailable, "stock event audit is disabled")
			return
		}

		limit := defaultStockEventLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				respondError(c, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}
		if limit > maxStockEventLimit {
			limit = maxStockEventLimit
		}

		list, err := events.ListRecent(c.Request.Context(), limit)
		if err != nil {
			logger.Error("Failed to list stock events",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
			respondError(c, http.StatusInternalServerError, "internal error")
			return
		}

		respond(c, result.Success(list), list)
	}
}
