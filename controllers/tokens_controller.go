package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cashflow-guardian/backend/logger"
	"cashflow-guardian/backend/models"
)

// TokensUsage reports the caller's cumulative advisor token usage and quota.
func TokensUsage(chats ChatStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		ledger, err := chats.TokenUsage(ctx, startupID(c))
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		c.JSON(http.StatusOK, ledger)
	}
}

// TokensSetPlan sets the quota in points of 10,000 tokens. Plans above five points are capped.
func TokensSetPlan(chats ChatStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TokenPlanRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Points <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		req.Points = min(req.Points, models.MaxPlanPoints)
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		ledger, err := chats.SetTokenQuota(ctx, startupID(c), int64(req.Points)*models.TokensPerPoint, req.ResetUsed)
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		c.JSON(http.StatusOK, ledger)
	}
}

// recordUsage adds a reply's tokens to the ledger, also after a failed or
// cancelled request. Failures are logged, not returned.
func recordUsage(ctx context.Context, chats ChatStore, log *zap.Logger, startupID int64, u models.TokenUsage) {
	if u == (models.TokenUsage{}) {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := chats.AddTokenUsage(ctx, startupID, u); err != nil {
		log.Error("token usage not recorded", logger.ErrorType(logger.DBConnectionError),
			zap.Int64("startup_id", startupID), zap.Error(err))
	}
}
