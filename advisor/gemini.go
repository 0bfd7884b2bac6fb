package advisor

import (
	"context"
	"slices"

	"github.com/google/generative-ai-go/genai"
)

// ChatModel sends the next user turn on top of a transcript.
type ChatModel interface {
	Send(ctx context.Context, history []*genai.Content, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiModel is the genai-backed ChatModel, configured with the advisor
// prompt and tools.
type GeminiModel struct {
	model *genai.GenerativeModel
}

func NewGeminiModel(client *genai.Client, name string) *GeminiModel {
	m := client.GenerativeModel(name)
	m.SetTemperature(0)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	m.Tools = []*genai.Tool{{FunctionDeclarations: Declarations()}}
	return &GeminiModel{model: m}
}

func (g *GeminiModel) Send(ctx context.Context, history []*genai.Content, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	cs := g.model.StartChat()
	cs.History = slices.Clip(history)
	return cs.SendMessage(ctx, parts...)
}
