package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cashflow-guardian/backend/advisor"
	"cashflow-guardian/backend/config"
	"cashflow-guardian/backend/controllers"
	"cashflow-guardian/backend/database"
	"cashflow-guardian/backend/logger"
	"cashflow-guardian/backend/metrics"
	"cashflow-guardian/backend/middlewares"
	"cashflow-guardian/backend/routes"
	"cashflow-guardian/backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.ErrorLogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, database.Options{
		URL:            cfg.DatabaseURL,
		SimpleProtocol: cfg.DBSimpleProtocol,
		MaxConns:       cfg.DBMaxConns,
	})
	if err != nil {
		zl.Fatal("database connect failed", logger.ErrorType(logger.DBConnectionError), zap.Error(err))
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		zl.Fatal("schema setup failed", logger.ErrorType(logger.DBConnectionError), zap.Error(err))
	}

	startups := database.NewStartupStore(pool)
	chats := database.NewChatStore(pool)
	m := metrics.New()

	// adv stays an untyped nil without a key so the chat handlers answer 503.
	var adv controllers.Advisor
	if cfg.AIEnabled() {
		client, err := utils.NewAIClient(ctx, utils.AIConfig{APIKey: cfg.GoogleAPIKey})
		if err != nil {
			zl.Fatal("gemini client failed", logger.ErrorType(logger.AIGenerationError), zap.Error(err))
		}
		defer client.Close()
		adv = advisor.NewAgent(
			advisor.NewGeminiModel(client, cfg.GeminiModel),
			advisor.NewToolbox(startups),
			advisor.NewMemory(cfg.ThreadMemoryTTL),
			chats, zl, m,
		)
	} else {
		zl.Warn("GOOGLE_API_KEY not set; chat endpoints are disabled")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(zl), middlewares.Observability(m))
	routes.Register(r, cfg, routes.Deps{
		Startups: startups,
		Chats:    chats,
		Advisor:  adv,
		DB:       startups,
		Metrics:  m,
		Log:      zl,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
