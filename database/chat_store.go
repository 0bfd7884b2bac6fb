package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cashflow-guardian/backend/models"
)

// ChatStore persists advisor threads and their user/assistant messages.
type ChatStore struct {
	pool *pgxpool.Pool
}

func NewChatStore(pool *pgxpool.Pool) *ChatStore {
	return &ChatStore{pool: pool}
}

// CreateThread starts a new thread for the startup and returns its id.
func (s *ChatStore) CreateThread(ctx context.Context, startupID int64, title string) (string, error) {
	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx, `INSERT INTO chat_threads (id, startup_id, title) VALUES ($1, $2, $3)`,
		id, startupID, title); err != nil {
		return "", fmt.Errorf("ChatStore.CreateThread: %w", translate(err))
	}
	return id, nil
}

// EnsureThread creates the thread if it is new. A thread owned by another
// startup reports ErrNotFound.
func (s *ChatStore) EnsureThread(ctx context.Context, startupID int64, threadID, title string) error {
	op := "ChatStore.EnsureThread"
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO chat_threads (id, startup_id, title) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`, threadID, startupID, title)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	// a separate statement sees a row committed by a concurrent insert
	owner, err := s.ThreadOwner(ctx, threadID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if owner != startupID {
		return fmt.Errorf("%s: thread %s: %w", op, threadID, ErrNotFound)
	}
	return nil
}

// ListThreads returns the startup's threads, most recently active first.
func (s *ChatStore) ListThreads(ctx context.Context, startupID int64) ([]models.ChatThread, error) {
	op := "ChatStore.ListThreads"
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.title, t.created_at, COALESCE(MAX(m.created_at), t.created_at) AS last_message_at
		FROM chat_threads t
		LEFT JOIN chat_messages m ON m.thread_id = t.id
		WHERE t.startup_id = $1
		GROUP BY t.id, t.title, t.created_at
		ORDER BY last_message_at DESC, t.id`, startupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	threads, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.ChatThread])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return threads, nil
}

// RenameThread sets the title of one of the startup's threads.
func (s *ChatStore) RenameThread(ctx context.Context, startupID int64, threadID, title string) error {
	op := "ChatStore.RenameThread"
	tag, err := s.pool.Exec(ctx, `UPDATE chat_threads SET title = $1 WHERE id = $2 AND startup_id = $3`,
		title, threadID, startupID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: thread %s: %w", op, threadID, ErrNotFound)
	}
	return nil
}

// ThreadOwner returns the startup that owns the thread.
func (s *ChatStore) ThreadOwner(ctx context.Context, threadID string) (int64, error) {
	var owner int64
	err := s.pool.QueryRow(ctx, `SELECT startup_id FROM chat_threads WHERE id = $1`, threadID).Scan(&owner)
	if err != nil {
		return 0, fmt.Errorf("ChatStore.ThreadOwner: %w", translate(err))
	}
	return owner, nil
}

// AppendMessages stores the messages in order, in one batch.
func (s *ChatStore) AppendMessages(ctx context.Context, threadID string, msgs ...models.ChatMessage) error {
	op := "ChatStore.AppendMessages"
	if len(msgs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range msgs {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		batch.Queue(`INSERT INTO chat_messages (thread_id, role, content, created_at) VALUES ($1, $2, $3, $4)`,
			threadID, m.Role, m.Content, ts)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s: %w", op, translate(err))
	}
	return nil
}

// ListMessages returns the thread's messages oldest first. limit > 0 keeps only the most recent ones.
func (s *ChatStore) ListMessages(ctx context.Context, threadID string, limit int) ([]models.ChatMessage, error) {
	op := "ChatStore.ListMessages"
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT role, content, created_at FROM (
			SELECT id, role, content, created_at FROM chat_messages
			WHERE thread_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent
		ORDER BY id`, threadID, lim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ChatMessage, error) {
		var m models.ChatMessage
		err := row.Scan(&m.Role, &m.Content, &m.Timestamp)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return msgs, nil
}

// DeleteThread removes the thread and, by cascade, its messages.
func (s *ChatStore) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chat_threads WHERE id = $1`, threadID); err != nil {
		return fmt.Errorf("ChatStore.DeleteThread: %w", err)
	}
	return nil
}

// AddTokenUsage adds one advisor request's token counts to the startup's running totals.
func (s *ChatStore) AddTokenUsage(ctx context.Context, startupID int64, u models.TokenUsage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO token_usage (startup_id, input_tokens, output_tokens, total_tokens, requests, updated_at)
		VALUES ($1, $2, $3, $4, 1, now())
		ON CONFLICT (startup_id) DO UPDATE SET
			input_tokens = token_usage.input_tokens + EXCLUDED.input_tokens,
			output_tokens = token_usage.output_tokens + EXCLUDED.output_tokens,
			total_tokens = token_usage.total_tokens + EXCLUDED.total_tokens,
			requests = token_usage.requests + 1,
			updated_at = now()`,
		startupID, u.Input, u.Output, u.Total)
	if err != nil {
		return fmt.Errorf("ChatStore.AddTokenUsage: %w", translate(err))
	}
	return nil
}

// TokenUsage returns the startup's totals and quota. A startup that never
// chatted has zero usage and the default quota.
func (s *ChatStore) TokenUsage(ctx context.Context, startupID int64) (models.TokenLedger, error) {
	l := models.TokenLedger{StartupID: startupID, Quota: models.DefaultTokenQuota}
	err := s.pool.QueryRow(ctx, `
		SELECT input_tokens, output_tokens, total_tokens, requests, token_quota, updated_at
		FROM token_usage WHERE startup_id = $1`, startupID).
		Scan(&l.Usage.Input, &l.Usage.Output, &l.Usage.Total, &l.Requests, &l.Quota, &l.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return models.TokenLedger{}, fmt.Errorf("ChatStore.TokenUsage: %w", err)
	}
	l.Remaining = max(0, l.Quota-l.Usage.Total)
	return l, nil
}

// SetTokenQuota changes the startup's quota. resetUsed also zeroes the running totals.
func (s *ChatStore) SetTokenQuota(ctx context.Context, startupID, quota int64, resetUsed bool) (models.TokenLedger, error) {
	q := `
		INSERT INTO token_usage (startup_id, token_quota, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (startup_id) DO UPDATE SET token_quota = EXCLUDED.token_quota, updated_at = now()`
	if resetUsed {
		q = `
		INSERT INTO token_usage (startup_id, token_quota, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (startup_id) DO UPDATE SET token_quota = EXCLUDED.token_quota,
			input_tokens = 0, output_tokens = 0, total_tokens = 0, requests = 0, updated_at = now()`
	}
	if _, err := s.pool.Exec(ctx, q, startupID, quota); err != nil {
		return models.TokenLedger{}, fmt.Errorf("ChatStore.SetTokenQuota: %w", translate(err))
	}
	return s.TokenUsage(ctx, startupID)
}
