package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cashflow-guardian/backend/config"
	"cashflow-guardian/backend/controllers"
	"cashflow-guardian/backend/metrics"
	"cashflow-guardian/backend/middlewares"
)

// Deps are the services the handlers are built from. Advisor may be nil.
type Deps struct {
	Startups controllers.StartupStore
	Chats    controllers.ChatStore
	Advisor  controllers.Advisor
	DB       controllers.Pinger
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

func Register(r *gin.Engine, cfg config.Config, d Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigin,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", controllers.Root())
	r.GET("/health", controllers.Health(d.DB, d.Log))
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/api")
	{
		api.POST("/onboarding", controllers.CreateOnboarding(cfg, d.Startups, d.Log))

		priv := api.Group("/")
		priv.Use(middlewares.Auth(cfg.JWTSecret))
		// Baseline profile
		priv.GET("onboarding", controllers.GetOnboarding(d.Startups, d.Log))
		priv.PUT("onboarding", controllers.UpdateOnboarding(d.Startups, d.Log))
		// Monthly actuals
		priv.GET("monthly", controllers.ListMonthly(d.Startups, d.Log))
		priv.PUT("monthly", controllers.UpsertMonthly(d.Startups, d.Log))
		priv.DELETE("monthly/:month", controllers.DeleteMonthly(d.Startups, d.Log))
		priv.POST("monthly/import", controllers.ImportMonthly(d.Startups, d.Log))
		priv.GET("monthly/export", controllers.ExportMonthly(d.Startups, d.Log))
		// Deterministic metrics
		priv.GET("insights/summary", controllers.SummaryInsight(d.Startups, d.Log))
		priv.GET("insights/churn", controllers.ChurnInsight(d.Startups, d.Log))
		priv.GET("insights/burn-rate", controllers.BurnRateInsight(d.Startups, d.Log))
		priv.GET("insights/runway", controllers.RunwayInsight(d.Startups, d.Log))
		priv.GET("insights/cac", controllers.CACInsight(d.Startups, d.Log))
		priv.GET("insights/ltv", controllers.LTVInsight(d.Startups, d.Log))
		priv.GET("insights/hiring", controllers.HiringInsight(d.Startups, d.Log))
		// Advisor chat
		priv.POST("start-session", controllers.StartSession(d.Chats, d.Log))
		priv.GET("chat/threads", controllers.ListThreads(d.Chats, d.Log))
		priv.PUT("chat/threads/:thread_id/title", controllers.RenameThread(d.Chats, d.Log))
		priv.POST("chat", controllers.Chat(d.Chats, d.Advisor, d.Log))
		priv.POST("chat/stream", controllers.ChatStream(d.Chats, d.Advisor, d.Log))
		priv.GET("chat/history/:thread_id", controllers.ChatHistory(d.Chats, d.Log))
		priv.DELETE("chat/history/:thread_id", controllers.ClearChatHistory(d.Chats, d.Advisor, d.Log))
		// Token usage and quota
		priv.GET("tokens/usage", controllers.TokensUsage(d.Chats, d.Log))
		priv.POST("tokens/set-plan", controllers.TokensSetPlan(d.Chats, d.Log))
	}
}
