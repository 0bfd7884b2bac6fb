package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cashflow-guardian/backend/database"
	"cashflow-guardian/backend/models"
)

const chatTimeout = 2 * time.Minute

var errAdvisorDisabled = gin.H{"error": "AI advisor is not configured (GOOGLE_API_KEY missing)"}

const (
	defaultThreadTitle = "New Chat"
	maxTitleRunes      = 80
)

// threadTitle trims s to a thread title, falling back to "New Chat".
func threadTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return defaultThreadTitle
	}
	if r := []rune(s); len(r) > maxTitleRunes {
		s = string(r[:maxTitleRunes])
	}
	return s
}

// StartSession creates a thread. The body may carry an optional title.
func StartSession(chats ChatStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TitleRequest
		_ = c.ShouldBindJSON(&req)
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		id, err := chats.CreateThread(ctx, startupID(c), threadTitle(req.Title))
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"thread_id": id})
	}
}

// resolveThread returns the request's thread, creating one when thread_id is
// empty. New threads are titled after the first message.
func resolveThread(ctx context.Context, chats ChatStore, startupID int64, req models.ChatRequest) (string, error) {
	requested := strings.TrimSpace(req.ThreadID)
	if requested == "" {
		return chats.CreateThread(ctx, startupID, threadTitle(req.Message))
	}
	if err := chats.EnsureThread(ctx, startupID, requested, threadTitle(req.Message)); err != nil {
		return "", err
	}
	return requested, nil
}

// quotaExhausted answers 429 when the startup has used up its token quota.
func quotaExhausted(ctx context.Context, c *gin.Context, chats ChatStore, log *zap.Logger, sid int64) bool {
	ledger, err := chats.TokenUsage(ctx, sid)
	if err != nil {
		storeError(c, log, err, "startup not found")
		return true
	}
	if !ledger.Exhausted() {
		return false
	}
	points := strconv.FormatInt(ledger.Quota/models.TokensPerPoint, 10)
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       "Token limit reached (plan: " + points + " points). Please upgrade or wait for reset.",
		"token_quota": ledger.Quota,
		"used":        ledger.Usage.Total,
	})
	return true
}

func bindChat(c *gin.Context) (models.ChatRequest, bool) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body or missing message"})
		return req, false
	}
	return req, true
}

func Chat(chats ChatStore, adv Advisor, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adv == nil {
			c.JSON(http.StatusServiceUnavailable, errAdvisorDisabled)
			return
		}
		req, ok := bindChat(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, chatTimeout)
		defer cancel()

		sid := startupID(c)
		if quotaExhausted(ctx, c, chats, log, sid) {
			return
		}
		threadID, err := resolveThread(ctx, chats, sid, req)
		if err != nil {
			storeError(c, log, err, "thread not found")
			return
		}
		reply, err := adv.Ask(ctx, sid, threadID, req.Message, nil)
		recordUsage(ctx, chats, log, sid, reply.Usage)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})
			return
		}
		usage := reply.Usage
		c.JSON(http.StatusOK, models.ChatResponse{
			Response:  reply.Text,
			ThreadID:  threadID,
			Timestamp: reply.Timestamp,
			Tokens:    &usage,
		})
	}
}

// ChatStream answers over server-sent events: one data event per model
// round, then {"done":true}. Failures after the stream started arrive as
// an event carrying "error".
func ChatStream(chats ChatStore, adv Advisor, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adv == nil {
			c.JSON(http.StatusServiceUnavailable, errAdvisorDisabled)
			return
		}
		req, ok := bindChat(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, chatTimeout)
		defer cancel()

		sid := startupID(c)
		if quotaExhausted(ctx, c, chats, log, sid) {
			return
		}
		threadID, err := resolveThread(ctx, chats, sid, req)
		if err != nil {
			storeError(c, log, err, "thread not found")
			return
		}

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		send := func(payload gin.H) {
			c.SSEvent("", payload)
			c.Writer.Flush()
		}
		reply, err := adv.Ask(ctx, sid, threadID, req.Message, func(text string) {
			send(gin.H{"content": text, "thread_id": threadID, "timestamp": time.Now()})
		})
		recordUsage(ctx, chats, log, sid, reply.Usage)
		if err != nil {
			send(gin.H{"error": err.Error(), "thread_id": threadID, "timestamp": time.Now()})
			return
		}
		send(gin.H{"done": true, "thread_id": threadID, "tokens": reply.Usage})
	}
}

// ListThreads lists the caller's threads, most recently active first.
func ListThreads(chats ChatStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		threads, err := chats.ListThreads(ctx, startupID(c))
		if err != nil {
			storeError(c, log, err, "startup not found")
			return
		}
		if threads == nil {
			threads = []models.ChatThread{}
		}
		c.JSON(http.StatusOK, threads)
	}
}

func RenameThread(chats ChatStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TitleRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title"})
			return
		}
		threadID := c.Param("thread_id")
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()
		title := threadTitle(req.Title)
		if err := chats.RenameThread(ctx, startupID(c), threadID, title); err != nil {
			storeError(c, log, err, "thread not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"thread_id": threadID, "title": title})
	}
}

// ChatHistory lists a thread's messages. Unknown threads have an empty history.
func ChatHistory(chats ChatStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		threadID := c.Param("thread_id")
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		owner, err := chats.ThreadOwner(ctx, threadID)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusOK, models.ChatHistoryResponse{Messages: []models.ChatMessage{}, ThreadID: threadID})
			return
		}
		if err != nil {
			storeError(c, log, err, "thread not found")
			return
		}
		if owner != startupID(c) {
			c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
			return
		}
		msgs, err := chats.ListMessages(ctx, threadID, 0)
		if err != nil {
			storeError(c, log, err, "thread not found")
			return
		}
		if msgs == nil {
			msgs = []models.ChatMessage{}
		}
		c.JSON(http.StatusOK, models.ChatHistoryResponse{Messages: msgs, ThreadID: threadID})
	}
}

// ClearChatHistory deletes the thread and its cached transcript.
func ClearChatHistory(chats ChatStore, adv Advisor, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		threadID := c.Param("thread_id")
		ctx, cancel := requestContext(c, 5*time.Second)
		defer cancel()

		owner, err := chats.ThreadOwner(ctx, threadID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			// nothing stored; clearing is idempotent
		case err != nil:
			storeError(c, log, err, "thread not found")
			return
		case owner != startupID(c):
			c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
			return
		default:
			if err := chats.DeleteThread(ctx, threadID); err != nil {
				storeError(c, log, err, "thread not found")
				return
			}
			if adv != nil {
				adv.Forget(threadID)
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "History cleared for thread " + threadID})
	}
}
