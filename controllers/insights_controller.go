package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cashflow-guardian/backend/finance"
)

// reporter is any finance result that renders a text breakdown.
type reporter interface {
	Report() string
}

// insight loads the caller's snapshot, computes one metric and returns it with its report.
func insight(store StartupStore, log *zap.Logger, compute func(c *gin.Context, s finance.Snapshot) (reporter, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		snap, err := store.Snapshot(ctx, startupID(c))
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		result, err := compute(c, snap)
		switch {
		case errors.Is(err, finance.ErrNoMonthlyData):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result, "report": result.Report()})
	}
}

func SummaryInsight(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return insight(store, log, func(_ *gin.Context, s finance.Snapshot) (reporter, error) {
		return finance.Summarize(s), nil
	})
}

func ChurnInsight(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return insight(store, log, func(_ *gin.Context, s finance.Snapshot) (reporter, error) {
		r, err := finance.AnalyzeChurn(s)
		return r, err
	})
}

func BurnRateInsight(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return insight(store, log, func(_ *gin.Context, s finance.Snapshot) (reporter, error) {
		return finance.ComputeBurnRate(s), nil
	})
}

// RunwayInsight accepts an optional simulated_expense query parameter.
func RunwayInsight(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return insight(store, log, func(c *gin.Context, s finance.Snapshot) (reporter, error) {
		var expense *decimal.Decimal
		if raw := c.Query("simulated_expense"); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, errors.New("simulated_expense must be a number")
			}
			expense = &d
		}
		r, err := finance.ComputeRunway(s, expense)
		return r, err
	})
}

func CACInsight(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return insight(store, log, func(_ *gin.Context, s finance.Snapshot) (reporter, error) {
		r, err := finance.ComputeCAC(s)
		return r, err
	})
}

func LTVInsight(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return insight(store, log, func(_ *gin.Context, s finance.Snapshot) (reporter, error) {
		r, err := finance.ComputeLTV(s)
		return r, err
	})
}

// HiringInsight reads role, monthly_salary and months_ahead from the query string.
func HiringInsight(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return insight(store, log, func(c *gin.Context, s finance.Snapshot) (reporter, error) {
		in := finance.HiringInput{Role: c.Query("role")}
		if raw := c.Query("monthly_salary"); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, errors.New("monthly_salary must be a number")
			}
			in.MonthlySalary = &d
		}
		if raw := c.Query("months_ahead"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, errors.New("months_ahead must be a whole number")
			}
			in.MonthsAhead = &n
		}
		r, err := finance.AnalyzeHiring(s, in)
		return r, err
	})
}
