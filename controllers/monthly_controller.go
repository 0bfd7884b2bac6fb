package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cashflow-guardian/backend/models"
)

func ListMonthly(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		months, err := store.ListMonthly(ctx, startupID(c))
		if err != nil {
			storeError(c, log, err, "no monthly data")
			return
		}
		if months == nil {
			months = []models.MonthlyRecord{}
		}
		c.JSON(http.StatusOK, months)
	}
}

// UpsertMonthly writes one month. Any day within the month addresses the same row.
func UpsertMonthly(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.MonthlyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		saved, err := store.UpsertMonthly(ctx, req.ToModel(startupID(c)))
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

func DeleteMonthly(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		month, err := models.ParseMonth(c.Param("month"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		if err := store.DeleteMonthly(ctx, startupID(c), month); err != nil {
			storeError(c, log, err, "no data for month "+month.Format("2006-01"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted", "month": month.Format("2006-01")})
	}
}
