package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderpulse/ordersbff/internal/result"
)

// Response is the envelope returned by every /api route.
type Response struct {
	Success bool                `json:"success"`
	Errors  []result.ErrorEntry `json:"errors"`
	Data    interface{}         `json:"data,omitempty"`
}

// respond writes o as an envelope. Successful outcomes carry data; pass nil
// to omit it.
func respond[T any](c *gin.Context, o result.Outcome[T], data interface{}) {
	if o.IsSuccess() {
		c.JSON(http.StatusOK, Response{Success: true, Errors: []result.ErrorEntry{}, Data: data})
		return
	}
	c.JSON(statusFor(o.ErrorCode()), Response{Success: false, Errors: o.Errors()})
}

func respondError(c *gin.Context, status int, text string) {
	c.JSON(status, Response{Success: false, Errors: []result.ErrorEntry{{Text: text}}})
}

// statusFor maps a failure code to the HTTP status returned to callers.
func statusFor(code int) int {
	if code < 400 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}
