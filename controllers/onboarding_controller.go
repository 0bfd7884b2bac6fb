package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cashflow-guardian/backend/config"
	"cashflow-guardian/backend/models"
	"cashflow-guardian/backend/utils"
)

// CreateOnboarding registers a startup and returns the bearer token that scopes every other call to it.
func CreateOnboarding(cfg config.Config, store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.OnboardingRequest
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

		o, err := store.CreateOnboarding(ctx, req.ToModel(time.Now()))
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		token, err := utils.GenerateJWT(cfg.JWTSecret, o.ID, cfg.JWTTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
			return
		}
		log.Info("startup onboarded", zap.Int64("startup_id", o.ID), zap.String("startup_name", o.StartupName))
		c.JSON(http.StatusCreated, gin.H{"startup": o, "token": token, "token_type": "Bearer"})
	}
}

func GetOnboarding(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		o, err := store.GetOnboarding(ctx, startupID(c))
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// UpdateOnboarding replaces the baseline profile. An omitted onboarding_date keeps the stored one.
func UpdateOnboarding(store StartupStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.OnboardingRequest
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

		current, err := store.GetOnboarding(ctx, startupID(c))
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		next := req.ToModel(time.Now())
		next.ID = current.ID
		if req.OnboardingDate == "" {
			next.OnboardingDate = current.OnboardingDate
		}
		updated, err := store.UpdateOnboarding(ctx, next)
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
