package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"cashflow-guardian/backend/models"
)

// openTestPool connects to PG_DSN and recreates the schema. It is destructive.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set; skipping Postgres store tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := Connect(ctx, Options{URL: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS token_usage, chat_messages, chat_threads, monthly_financial_data, onboarding_data CASCADE`)
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(ctx, pool))
	return pool
}

func sampleOnboarding(name string) models.Onboarding {
	return models.Onboarding{
		StartupName:        name,
		Industry:           "Fintech",
		TargetRevenue:      decimal.NewFromInt(150000),
		ProductDevExpenses: decimal.NewFromInt(50000),
		ManpowerExpenses:   decimal.NewFromInt(100000),
		MarketingExpenses:  decimal.RequireFromString("30000.50"),
		OperationsExpenses: decimal.NewFromInt(20000),
		InitialCash:        decimal.NewFromInt(1000000),
		InitialCustomers:   100,
		CurrentEmployees:   8,
		TargetRunwayMonths: 12,
		OnboardingDate:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestStartupStoreOnboarding(t *testing.T) {
	pool := openTestPool(t)
	store := NewStartupStore(pool)
	ctx := context.Background()

	created, err := store.CreateOnboarding(ctx, sampleOnboarding("Kape Labs"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.MarketingExpenses.Equal(decimal.RequireFromString("30000.50")))

	_, err = store.CreateOnboarding(ctx, sampleOnboarding("Kape Labs"))
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := store.GetOnboarding(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fintech", got.Industry)
	assert.Equal(t, 2025, got.OnboardingDate.Year())

	got.Industry = "Food"
	updated, err := store.UpdateOnboarding(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Food", updated.Industry)

	_, err = store.GetOnboarding(ctx, created.ID+1000)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartupStoreMonthly(t *testing.T) {
	pool := openTestPool(t)
	store := NewStartupStore(pool)
	ctx := context.Background()

	o, err := store.CreateOnboarding(ctx, sampleOnboarding("Monthly Co"))
	require.NoError(t, err)

	feb := models.MonthlyRecord{StartupID: o.ID, Date: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), Revenue: decimal.NewFromInt(100)}
	jan := models.MonthlyRecord{StartupID: o.ID, Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Revenue: decimal.NewFromInt(50)}
	_, err = store.UpsertMonthly(ctx, feb)
	require.NoError(t, err)
	_, err = store.UpsertMonthly(ctx, jan)
	require.NoError(t, err)

	// same month again replaces the row
	feb.Revenue = decimal.NewFromInt(250)
	feb.Date = time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	_, err = store.UpsertMonthly(ctx, feb)
	require.NoError(t, err)

	months, err := store.ListMonthly(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, time.January, months[0].Date.Month())
	assert.Equal(t, 1, months[1].Date.Day())
	assert.True(t, months[1].Revenue.Equal(decimal.NewFromInt(250)))

	snap, err := store.Snapshot(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monthly Co", snap.Onboarding.StartupName)
	assert.Len(t, snap.Months, 2)

	require.NoError(t, store.DeleteMonthly(ctx, o.ID, jan.Date))
	assert.ErrorIs(t, store.DeleteMonthly(ctx, o.ID, jan.Date), ErrNotFound)
}

func TestStartupStoreBatchIsAllOrNothing(t *testing.T) {
	pool := openTestPool(t)
	store := NewStartupStore(pool)
	ctx := context.Background()

	o, err := store.CreateOnboarding(ctx, sampleOnboarding("Batch Co"))
	require.NoError(t, err)

	good := models.MonthlyRecord{StartupID: o.ID, Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	bad := models.MonthlyRecord{StartupID: o.ID, Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), ActiveCustomers: -1}
	assert.Error(t, store.UpsertMonthlyBatch(ctx, []models.MonthlyRecord{good, bad}))

	months, err := store.ListMonthly(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, months)

	bad.ActiveCustomers = 4
	require.NoError(t, store.UpsertMonthlyBatch(ctx, []models.MonthlyRecord{good, bad}))
	months, err = store.ListMonthly(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, months, 2)
}

func TestChatStore(t *testing.T) {
	pool := openTestPool(t)
	startups := NewStartupStore(pool)
	chats := NewChatStore(pool)
	ctx := context.Background()

	a, err := startups.CreateOnboarding(ctx, sampleOnboarding("A"))
	require.NoError(t, err)
	b, err := startups.CreateOnboarding(ctx, sampleOnboarding("B"))
	require.NoError(t, err)

	id, err := chats.CreateThread(ctx, a.ID, "Runway")
	require.NoError(t, err)
	owner, err := chats.ThreadOwner(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, a.ID, owner)

	require.NoError(t, chats.EnsureThread(ctx, a.ID, id, "ignored"))
	assert.ErrorIs(t, chats.EnsureThread(ctx, b.ID, id, "t"), ErrNotFound)
	require.NoError(t, chats.EnsureThread(ctx, b.ID, "client-chosen-id", "Client"))
	require.NoError(t, chats.EnsureThread(ctx, b.ID, "client-chosen-id", "again"))

	fresh, err := chats.CreateThread(ctx, a.ID, "Fresh")
	require.NoError(t, err)

	base := time.Now().Add(-time.Minute)
	for i, content := range []string{"q1", "a1", "q2", "a2"} {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		require.NoError(t, chats.AppendMessages(ctx, id, models.ChatMessage{Role: role, Content: content, Timestamp: base.Add(time.Duration(i) * time.Second)}))
	}

	all, err := chats.ListMessages(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "q1", all[0].Content)

	last, err := chats.ListMessages(ctx, id, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "q2", last[0].Content)
	assert.Equal(t, models.RoleAssistant, last[1].Role)

	threads, err := chats.ListThreads(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, fresh, threads[0].ID, "an empty thread sorts by its creation time")
	assert.Equal(t, id, threads[1].ID)
	assert.Equal(t, "Runway", threads[1].Title)
	assert.Equal(t, base.Add(3*time.Second).Unix(), threads[1].LastMessageAt.Unix())

	require.NoError(t, chats.RenameThread(ctx, a.ID, fresh, "Hiring"))
	assert.ErrorIs(t, chats.RenameThread(ctx, b.ID, fresh, "stolen"), ErrNotFound)
	threads, err = chats.ListThreads(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hiring", threads[0].Title)

	theirs, err := chats.ListThreads(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Client", theirs[0].Title)

	require.NoError(t, chats.DeleteThread(ctx, id))
	_, err = chats.ThreadOwner(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	gone, err := chats.ListMessages(ctx, id, 0)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestChatStoreTokenUsage(t *testing.T) {
	pool := openTestPool(t)
	startups := NewStartupStore(pool)
	chats := NewChatStore(pool)
	ctx := context.Background()

	a, err := startups.CreateOnboarding(ctx, sampleOnboarding("Usage"))
	require.NoError(t, err)

	empty, err := chats.TokenUsage(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.Requests)
	assert.Equal(t, int64(models.DefaultTokenQuota), empty.Quota)
	assert.Equal(t, int64(models.DefaultTokenQuota), empty.Remaining)

	require.NoError(t, chats.AddTokenUsage(ctx, a.ID, models.TokenUsage{Input: 10, Output: 5, Total: 15}))
	require.NoError(t, chats.AddTokenUsage(ctx, a.ID, models.TokenUsage{Input: 1, Output: 2, Total: 3}))

	got, err := chats.TokenUsage(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenUsage{Input: 11, Output: 7, Total: 18}, got.Usage)
	assert.Equal(t, int64(2), got.Requests)
	assert.Equal(t, a.ID, got.StartupID)
	assert.Equal(t, int64(models.DefaultTokenQuota-18), got.Remaining)

	plan, err := chats.SetTokenQuota(ctx, a.ID, 10, false)
	require.NoError(t, err)
	assert.Equal(t, int64(10), plan.Quota)
	assert.Zero(t, plan.Remaining)
	assert.True(t, plan.Exhausted())

	plan, err = chats.SetTokenQuota(ctx, a.ID, 10, true)
	require.NoError(t, err)
	assert.Zero(t, plan.Usage.Total)
	assert.Zero(t, plan.Requests)
	assert.Equal(t, int64(10), plan.Remaining)
}

func TestEnsureThreadConcurrentFirstUse(t *testing.T) {
	pool := openTestPool(t)
	startups := NewStartupStore(pool)
	chats := NewChatStore(pool)
	ctx := context.Background()

	a, err := startups.CreateOnboarding(ctx, sampleOnboarding("Racer"))
	require.NoError(t, err)

	for round := range 10 {
		id := fmt.Sprintf("shared-%d", round)
		var g errgroup.Group
		for range 4 {
			g.Go(func() error { return chats.EnsureThread(ctx, a.ID, id, "race") })
		}
		require.NoError(t, g.Wait(), "round %d", round)
	}
}
