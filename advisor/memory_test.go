package advisor

import (
	"sync"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func userText(s string) *genai.Content {
	return &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(s)}}
}

func TestMemoryLockSerializesThread(t *testing.T) {
	m := NewMemory(time.Hour)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		overlap bool
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("t-1")
			defer unlock()
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.False(t, overlap)
	assert.Empty(t, m.locks)
}

func TestMemoryStoreLoadForget(t *testing.T) {
	m := NewMemory(time.Hour)
	m.Store("t-1", []*genai.Content{userText("a")})

	got, ok := m.Load("t-1")
	assert.True(t, ok)
	assert.Len(t, got, 1)

	m.Forget("t-1")
	_, ok = m.Load("t-1")
	assert.False(t, ok)
}

func TestTrimTranscriptStartsAtUserText(t *testing.T) {
	call := &genai.Content{Role: "model", Parts: []genai.Part{genai.FunctionCall{Name: "compute_cac"}}}
	resp := &genai.Content{Role: "user", Parts: []genai.Part{genai.FunctionResponse{Name: "compute_cac"}}}
	answer := &genai.Content{Role: "model", Parts: []genai.Part{genai.Text("ok")}}

	t1 := []*genai.Content{userText("q1"), call, resp, answer, userText("q2"), answer}
	trimmed := trimTranscript(t1, 4)
	assert.Len(t, trimmed, 2)
	assert.Equal(t, genai.Text("q2"), trimmed[0].Parts[0])

	assert.Len(t, trimTranscript(t1, 10), 6)
}
