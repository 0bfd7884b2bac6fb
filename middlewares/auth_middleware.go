package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cashflow-guardian/backend/controllers"
	"cashflow-guardian/backend/utils"
)

// Auth requires a bearer token and stores the caller's startup id in the context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		t := strings.TrimPrefix(h, "Bearer ")
		claims, err := utils.ParseJWT(secret, t)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(controllers.StartupIDKey, claims.StartupID)
		c.Next()
	}
}
