package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderpulse/ordersbff/internal/result"
)

// AuthMiddleware requires "Authorization: Bearer <key>" matching the bcrypt
// apiKeyHash. An empty hash disables the check.
func AuthMiddleware(apiKeyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKeyHash == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "invalid authorization header")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(apiKeyHash), []byte(strings.TrimSpace(parts[1]))); err != nil {
			logger.Warn("Rejected request with invalid API key",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)),
			)
			abortUnauthorized(c, "invalid API key")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, text string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"errors":  []result.ErrorEntry{{Text: text}},
	})
}
