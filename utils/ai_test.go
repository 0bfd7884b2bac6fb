package utils

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestResponseTextAndCalls(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: "model", Parts: []genai.Part{
			genai.Text("Your runway "),
			genai.FunctionCall{Name: "compute_runway", Args: map[string]any{}},
			genai.Text("is 9 months. "),
		}},
	}}}

	assert.Equal(t, "Your runway is 9 months.", ResponseText(resp))
	calls := FunctionCalls(resp)
	if assert.Len(t, calls, 1) {
		assert.Equal(t, "compute_runway", calls[0].Name)
	}

	assert.Empty(t, ResponseText(nil))
	assert.Nil(t, FunctionCalls(&genai.GenerateContentResponse{}))
}
