// Package advisor answers financial questions with a Gemini model that can
// call the finance tools for the asking startup.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	"cashflow-guardian/backend/logger"
	"cashflow-guardian/backend/metrics"
	"cashflow-guardian/backend/models"
	"cashflow-guardian/backend/utils"
)

const (
	// MaxToolRounds caps how many times the model may call tools for one question.
	MaxToolRounds = 8
	// historyWindow is how many persisted messages rebuild a cold thread.
	historyWindow = 20
)

// ThreadStore persists the user/assistant side of a conversation.
type ThreadStore interface {
	ListMessages(ctx context.Context, threadID string, limit int) ([]models.ChatMessage, error)
	AppendMessages(ctx context.Context, threadID string, msgs ...models.ChatMessage) error
}

type Agent struct {
	model   ChatModel
	tools   *Toolbox
	memory  *Memory
	threads ThreadStore
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewAgent(model ChatModel, tools *Toolbox, memory *Memory, threads ThreadStore, log *zap.Logger, m *metrics.Metrics) *Agent {
	return &Agent{
		model:   model,
		tools:   tools,
		memory:  memory,
		threads: threads,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

type Reply struct {
	Text      string
	Usage     models.TokenUsage
	Timestamp time.Time
}

// Ask answers message on the thread. onText, when set, receives the text of
// every model round as soon as it arrives. Both messages are persisted
// once the answer is complete. On error the returned Reply still carries
// the tokens spent so far.
func (a *Agent) Ask(ctx context.Context, startupID int64, threadID, message string, onText func(string)) (Reply, error) {
	unlock := a.memory.Lock(threadID)
	defer unlock()

	log := a.log.With(zap.String("thread_id", threadID), zap.Int64("startup_id", startupID))
	asked := a.now()

	transcript, err := a.transcript(ctx, threadID)
	if err != nil {
		return Reply{}, err
	}

	var (
		usage  models.TokenUsage
		chunks []string
		parts  = []genai.Part{genai.Text(EnhanceQuery(message))}
	)
	for round := 0; ; round++ {
		resp, err := a.model.Send(ctx, transcript, parts...)
		if err != nil {
			log.Error("model request failed", logger.ErrorType(logger.AIGenerationError), zap.Int("round", round), zap.Error(err))
			a.metrics.RecordTokens(usage.Input, usage.Output, usage.Total)
			return Reply{Usage: usage}, fmt.Errorf("generate reply: %w", err)
		}
		addUsage(&usage, resp)

		transcript = append(transcript, &genai.Content{Role: "user", Parts: parts}, modelContent(resp))
		if text := utils.ResponseText(resp); text != "" {
			chunks = append(chunks, text)
			if onText != nil {
				onText(text)
			}
		}

		calls := utils.FunctionCalls(resp)
		if len(calls) == 0 {
			break
		}
		if round == MaxToolRounds {
			log.Warn("tool round limit reached", zap.Int("rounds", round))
			// a dangling call would make the next turn invalid
			transcript[len(transcript)-1] = &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(FallbackReply)}}
			break
		}
		parts = a.runTools(ctx, log, startupID, calls)
	}

	text := strings.Join(chunks, "\n\n")
	if text == "" {
		text = FallbackReply
		if onText != nil {
			onText(text)
		}
	}
	reply := Reply{Text: text, Usage: usage, Timestamp: a.now()}

	a.memory.Store(threadID, transcript)
	a.metrics.RecordTokens(usage.Input, usage.Output, usage.Total)
	if err := a.threads.AppendMessages(ctx, threadID,
		models.ChatMessage{Role: models.RoleUser, Content: message, Timestamp: asked},
		models.ChatMessage{Role: models.RoleAssistant, Content: text, Timestamp: reply.Timestamp},
	); err != nil {
		log.Error("persist chat messages failed", logger.ErrorType(logger.DBConnectionError), zap.Error(err))
		return reply, fmt.Errorf("save chat history: %w", err)
	}
	log.Info("advisor replied", zap.Int64("tokens_total", usage.Total), zap.Int("chunks", len(chunks)))
	return reply, nil
}

// Forget drops the cached transcript for the thread.
func (a *Agent) Forget(threadID string) {
	a.memory.Forget(threadID)
}

// transcript returns the cached transcript or rebuilds it from the stored messages.
func (a *Agent) transcript(ctx context.Context, threadID string) ([]*genai.Content, error) {
	if t, ok := a.memory.Load(threadID); ok {
		return t, nil
	}
	msgs, err := a.threads.ListMessages(ctx, threadID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	t := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		t = append(t, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return t, nil
}

func (a *Agent) runTools(ctx context.Context, log *zap.Logger, startupID int64, calls []genai.FunctionCall) []genai.Part {
	parts := make([]genai.Part, 0, len(calls))
	for _, call := range calls {
		result, err := a.tools.Call(ctx, startupID, call.Name, call.Args)
		response := map[string]any{"result": result}
		status := "ok"
		if err != nil {
			status = "error"
			response = map[string]any{"error": err.Error()}
			lvl := zap.WarnLevel
			if !errors.Is(err, errUnknownTool) && ctx.Err() == nil {
				lvl = zap.ErrorLevel
			}
			log.Log(lvl, "tool call failed", logger.ErrorType(logger.ToolError), zap.String("tool", call.Name), zap.Error(err))
		}
		a.metrics.RecordToolCall(call.Name, status)
		parts = append(parts, genai.FunctionResponse{Name: call.Name, Response: response})
	}
	return parts
}

// EnhanceQuery nudges questions about cash towards actionable answers.
func EnhanceQuery(message string) string {
	lower := strings.ToLower(message)
	for _, k := range actionKeywords {
		if strings.Contains(lower, k) {
			return message + actionSuffix
		}
	}
	return message
}

func addUsage(u *models.TokenUsage, resp *genai.GenerateContentResponse) {
	if resp == nil || resp.UsageMetadata == nil {
		return
	}
	u.Input += int64(resp.UsageMetadata.PromptTokenCount)
	u.Output += int64(resp.UsageMetadata.CandidatesTokenCount)
	u.Total += int64(resp.UsageMetadata.TotalTokenCount)
}

func modelContent(resp *genai.GenerateContentResponse) *genai.Content {
	if resp != nil && len(resp.Candidates) > 0 {
		if c := resp.Candidates[0].Content; c != nil && len(c.Parts) > 0 {
			c.Role = "model"
			return c
		}
	}
	return &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(FallbackReply)}}
}
