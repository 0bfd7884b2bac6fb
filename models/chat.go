package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

type TokenUsage struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

type ChatResponse struct {
	Response  string      `json:"response"`
	ThreadID  string      `json:"thread_id"`
	Timestamp time.Time   `json:"timestamp"`
	Tokens    *TokenUsage `json:"tokens,omitempty"`
}

type ChatHistoryResponse struct {
	Messages []ChatMessage `json:"messages"`
	ThreadID string        `json:"thread_id"`
}

const (
	// TokensPerPoint converts plan points into a token quota.
	TokensPerPoint    = 10_000
	MaxPlanPoints     = 5
	DefaultTokenQuota = MaxPlanPoints * TokensPerPoint
)

// TokenLedger is a startup's cumulative advisor token usage against its quota.
type TokenLedger struct {
	StartupID int64      `json:"startup_id"`
	Usage     TokenUsage `json:"usage"`
	Requests  int64      `json:"requests"`
	Quota     int64      `json:"token_quota"`
	Remaining int64      `json:"remaining"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Exhausted reports whether no tokens are left for another advisor request.
func (l TokenLedger) Exhausted() bool { return l.Usage.Total >= l.Quota }

type ChatThread struct {
	ID            string    `json:"thread_id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

type TitleRequest struct {
	Title string `json:"title"`
}

type TokenPlanRequest struct {
	Points    int  `json:"points"` // 1 point = 10,000 tokens, at most 5
	ResetUsed bool `json:"reset_used"`
}
