package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/civicfix/civicfix-api/internal/models"
	appErrors "github.com/civicfix/civicfix-api/pkg/errors"
	"github.com/civicfix/civicfix-api/pkg/response"
)

// AdminChecker decides whether an authenticated identity holds
// administrator capability.
type AdminChecker interface {
	IsAdministrator(email string) bool
}

// AdminOnly gates a route group behind the administrator capability.
// It must run after JWT so claims are present.
func AdminOnly(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrLoginRequired)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok || !checker.IsAdministrator(claims.Email) {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}
