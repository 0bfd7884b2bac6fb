package controllers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cashflow-guardian/backend/advisor"
	"cashflow-guardian/backend/database"
	"cashflow-guardian/backend/finance"
	"cashflow-guardian/backend/models"
)

// memStartups is an in-memory StartupStore.
type memStartups struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]models.Onboarding
	monthly map[int64]map[time.Time]models.MonthlyRecord
	failAll error
}

func newMemStartups() *memStartups {
	return &memStartups{byID: map[int64]models.Onboarding{}, monthly: map[int64]map[time.Time]models.MonthlyRecord{}}
}

func (s *memStartups) CreateOnboarding(_ context.Context, o models.Onboarding) (models.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return models.Onboarding{}, s.failAll
	}
	for _, existing := range s.byID {
		if existing.StartupName == o.StartupName {
			return models.Onboarding{}, fmt.Errorf("create: %w", database.ErrDuplicate)
		}
	}
	s.nextID++
	o.ID = s.nextID
	o.CreatedAt = time.Now()
	s.byID[o.ID] = o
	return o, nil
}

func (s *memStartups) GetOnboarding(_ context.Context, id int64) (models.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return models.Onboarding{}, s.failAll
	}
	o, ok := s.byID[id]
	if !ok {
		return models.Onboarding{}, fmt.Errorf("get: %w", database.ErrNotFound)
	}
	return o, nil
}

func (s *memStartups) UpdateOnboarding(_ context.Context, o models.Onboarding) (models.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.byID[o.ID]
	if !ok {
		return models.Onboarding{}, fmt.Errorf("update: %w", database.ErrNotFound)
	}
	o.CreatedAt = prev.CreatedAt
	s.byID[o.ID] = o
	return o, nil
}

func (s *memStartups) ListMonthly(_ context.Context, id int64) ([]models.MonthlyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}
	var out []models.MonthlyRecord
	for _, m := range s.monthly[id] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *memStartups) UpsertMonthly(_ context.Context, m models.MonthlyRecord) (models.MonthlyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.Date = models.MonthStart(m.Date)
	if s.monthly[m.StartupID] == nil {
		s.monthly[m.StartupID] = map[time.Time]models.MonthlyRecord{}
	}
	s.monthly[m.StartupID][m.Date] = m
	return m, nil
}

func (s *memStartups) UpsertMonthlyBatch(ctx context.Context, records []models.MonthlyRecord) error {
	for _, m := range records {
		if _, err := s.UpsertMonthly(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStartups) DeleteMonthly(_ context.Context, id int64, month time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.MonthStart(month)
	if _, ok := s.monthly[id][key]; !ok {
		return fmt.Errorf("delete: %w", database.ErrNotFound)
	}
	delete(s.monthly[id], key)
	return nil
}

func (s *memStartups) Snapshot(ctx context.Context, id int64) (finance.Snapshot, error) {
	o, err := s.GetOnboarding(ctx, id)
	if err != nil {
		return finance.Snapshot{}, err
	}
	months, err := s.ListMonthly(ctx, id)
	if err != nil {
		return finance.Snapshot{}, err
	}
	return finance.Snapshot{Onboarding: o, Months: months}, nil
}

// memChats is an in-memory ChatStore.
type memChats struct {
	mu      sync.Mutex
	owners  map[string]int64
	msgs    map[string][]models.ChatMessage
	titles  map[string]string
	order   []string
	usage   map[int64]models.TokenLedger
	counter int
}

func newMemChats() *memChats {
	return &memChats{
		owners: map[string]int64{},
		msgs:   map[string][]models.ChatMessage{},
		titles: map[string]string{},
		usage:  map[int64]models.TokenLedger{},
	}
}

// ledger returns the stored ledger with the default quota filled in. Callers hold mu.
func (s *memChats) ledger(startupID int64) models.TokenLedger {
	l, ok := s.usage[startupID]
	if !ok {
		l.Quota = models.DefaultTokenQuota
	}
	l.StartupID = startupID
	return l
}

func (s *memChats) AddTokenUsage(_ context.Context, startupID int64, u models.TokenUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.ledger(startupID)
	l.Usage.Input += u.Input
	l.Usage.Output += u.Output
	l.Usage.Total += u.Total
	l.Requests++
	s.usage[startupID] = l
	return nil
}

func (s *memChats) TokenUsage(_ context.Context, startupID int64) (models.TokenLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.ledger(startupID)
	l.Remaining = max(0, l.Quota-l.Usage.Total)
	return l, nil
}

func (s *memChats) SetTokenQuota(ctx context.Context, startupID, quota int64, resetUsed bool) (models.TokenLedger, error) {
	s.mu.Lock()
	l := s.ledger(startupID)
	l.Quota = quota
	if resetUsed {
		l.Usage = models.TokenUsage{}
		l.Requests = 0
	}
	s.usage[startupID] = l
	s.mu.Unlock()
	return s.TokenUsage(ctx, startupID)
}

func (s *memChats) CreateThread(_ context.Context, startupID int64, title string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	id := fmt.Sprintf("thread-%d", s.counter)
	s.owners[id] = startupID
	s.titles[id] = title
	s.order = append(s.order, id)
	return id, nil
}

func (s *memChats) EnsureThread(_ context.Context, startupID int64, threadID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[threadID]
	if !ok {
		s.owners[threadID] = startupID
		s.titles[threadID] = title
		s.order = append(s.order, threadID)
		return nil
	}
	if owner != startupID {
		return fmt.Errorf("ensure: %w", database.ErrNotFound)
	}
	return nil
}

// ListThreads returns threads newest first.
func (s *memChats) ListThreads(_ context.Context, startupID int64) ([]models.ChatThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ChatThread
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		if owner, ok := s.owners[id]; ok && owner == startupID {
			out = append(out, models.ChatThread{ID: id, Title: s.titles[id]})
		}
	}
	return out, nil
}

func (s *memChats) RenameThread(_ context.Context, startupID int64, threadID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.owners[threadID]; !ok || owner != startupID {
		return fmt.Errorf("rename: %w", database.ErrNotFound)
	}
	s.titles[threadID] = title
	return nil
}

func (s *memChats) ThreadOwner(_ context.Context, threadID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[threadID]
	if !ok {
		return 0, fmt.Errorf("owner: %w", database.ErrNotFound)
	}
	return owner, nil
}

func (s *memChats) ListMessages(_ context.Context, threadID string, _ int) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.msgs[threadID]...), nil
}

func (s *memChats) DeleteThread(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, threadID)
	delete(s.msgs, threadID)
	delete(s.titles, threadID)
	return nil
}

// echoAdvisor streams two chunks and records the questions it saw. When err
// is set it fails after spending the tokens in spent.
type echoAdvisor struct {
	chats     *memChats
	err       error
	spent     models.TokenUsage
	forgotten []string
}

func (a *echoAdvisor) Ask(_ context.Context, _ int64, threadID, message string, onText func(string)) (advisor.Reply, error) {
	if a.err != nil {
		return advisor.Reply{Usage: a.spent}, a.err
	}
	chunks := []string{"Looking at your numbers.", "You asked: " + message}
	if onText != nil {
		for _, ch := range chunks {
			onText(ch)
		}
	}
	text := chunks[0] + "\n\n" + chunks[1]
	now := time.Now()
	a.chats.mu.Lock()
	a.chats.msgs[threadID] = append(a.chats.msgs[threadID],
		models.ChatMessage{Role: models.RoleUser, Content: message, Timestamp: now},
		models.ChatMessage{Role: models.RoleAssistant, Content: text, Timestamp: now})
	a.chats.mu.Unlock()
	return advisor.Reply{Text: text, Usage: models.TokenUsage{Input: 3, Output: 4, Total: 7}, Timestamp: now}, nil
}

func (a *echoAdvisor) Forget(threadID string) { a.forgotten = append(a.forgotten, threadID) }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }
