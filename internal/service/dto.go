package service

import "github.com/orderpulse/ordersbff/internal/domain"

// UpdateStockRequest is the body of PATCH /api/orders/update-stock/:merchantProductNo.
// Stock is a pointer so that 0 is accepted while a missing field is not.
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

// GetOrdersResponse is the upstream envelope returned by GET /orders.
type GetOrdersResponse struct {
	Count      int            `json:"count"`
	TotalCount int            `json:"totalCount"`
	StatusCode int            `json:"statusCode"`
	Content    []domain.Order `json:"content"`
}

// PatchOperation is a single JSON-Patch instruction sent to the upstream.
type PatchOperation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}
