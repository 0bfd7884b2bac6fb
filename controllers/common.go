package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cashflow-guardian/backend/advisor"
	"cashflow-guardian/backend/database"
	"cashflow-guardian/backend/finance"
	"cashflow-guardian/backend/logger"
	"cashflow-guardian/backend/models"
)

// StartupStore is the persistence the onboarding, monthly and insights handlers need.
type StartupStore interface {
	CreateOnboarding(ctx context.Context, o models.Onboarding) (models.Onboarding, error)
	GetOnboarding(ctx context.Context, startupID int64) (models.Onboarding, error)
	UpdateOnboarding(ctx context.Context, o models.Onboarding) (models.Onboarding, error)
	ListMonthly(ctx context.Context, startupID int64) ([]models.MonthlyRecord, error)
	UpsertMonthly(ctx context.Context, m models.MonthlyRecord) (models.MonthlyRecord, error)
	UpsertMonthlyBatch(ctx context.Context, records []models.MonthlyRecord) error
	DeleteMonthly(ctx context.Context, startupID int64, month time.Time) error
	Snapshot(ctx context.Context, startupID int64) (finance.Snapshot, error)
}

type ChatStore interface {
	CreateThread(ctx context.Context, startupID int64, title string) (string, error)
	EnsureThread(ctx context.Context, startupID int64, threadID, title string) error
	ThreadOwner(ctx context.Context, threadID string) (int64, error)
	ListThreads(ctx context.Context, startupID int64) ([]models.ChatThread, error)
	RenameThread(ctx context.Context, startupID int64, threadID, title string) error
	ListMessages(ctx context.Context, threadID string, limit int) ([]models.ChatMessage, error)
	DeleteThread(ctx context.Context, threadID string) error
	AddTokenUsage(ctx context.Context, startupID int64, u models.TokenUsage) error
	TokenUsage(ctx context.Context, startupID int64) (models.TokenLedger, error)
	SetTokenQuota(ctx context.Context, startupID, quota int64, resetUsed bool) (models.TokenLedger, error)
}

// Advisor answers chat messages. It is nil when no Gemini key is configured.
type Advisor interface {
	Ask(ctx context.Context, startupID int64, threadID, message string, onText func(string)) (advisor.Reply, error)
	Forget(threadID string)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// StartupIDKey is where the auth middleware stores the caller's startup.
const StartupIDKey = "startup_id"

func startupID(c *gin.Context) int64 { return c.GetInt64(StartupIDKey) }

func requestContext(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

// storeError maps a store failure onto a JSON error response.
func storeError(c *gin.Context, log *zap.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "startup_name already exists"})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		log.Error("database request failed", logger.ErrorType(logger.DBConnectionError),
			zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
	}
}
