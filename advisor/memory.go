package advisor

import (
	"slices"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/patrickmn/go-cache"
)

// maxTranscript bounds how many contents a thread keeps in memory.
const maxTranscript = 80

// Memory caches each thread's model transcript, tool calls included, and
// serializes work on the same thread.
type Memory struct {
	transcripts *cache.Cache

	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		transcripts: cache.New(ttl, ttl/2+time.Minute),
		locks:       make(map[string]*threadLock),
	}
}

// Lock blocks until the caller owns the thread. The returned func releases it.
func (m *Memory) Lock(threadID string) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[threadID]
	if !ok {
		l = &threadLock{}
		m.locks[threadID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(m.locks, threadID)
		}
		m.mu.Unlock()
	}
}

func (m *Memory) Load(threadID string) ([]*genai.Content, bool) {
	v, ok := m.transcripts.Get(threadID)
	if !ok {
		return nil, false
	}
	return slices.Clone(v.([]*genai.Content)), true
}

func (m *Memory) Store(threadID string, transcript []*genai.Content) {
	m.transcripts.SetDefault(threadID, trimTranscript(transcript, maxTranscript))
}

func (m *Memory) Forget(threadID string) {
	m.transcripts.Delete(threadID)
}

// trimTranscript keeps at most limit contents. The kept tail always starts at
// a user text turn so no function response loses its call.
func trimTranscript(t []*genai.Content, limit int) []*genai.Content {
	if len(t) <= limit {
		return t
	}
	for i := len(t) - limit; i < len(t); i++ {
		if isUserText(t[i]) {
			return slices.Clone(t[i:])
		}
	}
	return nil
}

func isUserText(c *genai.Content) bool {
	if c == nil || c.Role != "user" || len(c.Parts) == 0 {
		return false
	}
	_, ok := c.Parts[0].(genai.Text)
	return ok
}
