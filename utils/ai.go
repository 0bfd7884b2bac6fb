package utils

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type AIConfig struct {
	APIKey string
}

func NewAIClient(ctx context.Context, cfg AIConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
}

// ResponseText joins the text parts of every candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	if resp != nil {
		for _, c := range resp.Candidates {
			if c == nil || c.Content == nil {
				continue
			}
			for _, p := range c.Content.Parts {
				if t, ok := p.(genai.Text); ok {
					b.WriteString(string(t))
				}
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// FunctionCalls collects the function calls of the first candidate.
func FunctionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, p := range resp.Candidates[0].Content.Parts {
		switch fc := p.(type) {
		case genai.FunctionCall:
			calls = append(calls, fc)
		case *genai.FunctionCall:
			calls = append(calls, *fc)
		}
	}
	return calls
}
