package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cashflow-guardian/backend/logger"
)

func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Cashflow Guardian API is running", "status": "healthy"})
	}
}

// Health reports the process and database status. A failed ping is a 503;
// its cause is logged, never returned.
func Health(db Pinger, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 2*time.Second)
		defer cancel()
		resp := gin.H{"status": "healthy", "timestamp": time.Now(), "database": "ok"}
		if err := db.Ping(ctx); err != nil {
			log.Error("health check ping failed", logger.ErrorType(logger.DBConnectionError), zap.Error(err))
			resp["status"] = "degraded"
			resp["database"] = "unavailable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
