package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS onboarding_data (
		id BIGSERIAL PRIMARY KEY,
		startup_name TEXT NOT NULL UNIQUE,
		industry TEXT NOT NULL DEFAULT '',
		target_revenue NUMERIC(14,2) NOT NULL DEFAULT 0,
		product_dev_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
		manpower_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
		marketing_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
		operations_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
		initial_cash NUMERIC(14,2) NOT NULL DEFAULT 0,
		initial_customers INT NOT NULL DEFAULT 0 CHECK (initial_customers >= 0),
		current_employees INT NOT NULL DEFAULT 0 CHECK (current_employees >= 0),
		target_runway_months INT NOT NULL DEFAULT 0 CHECK (target_runway_months >= 0),
		onboarding_date DATE NOT NULL DEFAULT CURRENT_DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS monthly_financial_data (
		id BIGSERIAL PRIMARY KEY,
		startup_id BIGINT NOT NULL REFERENCES onboarding_data(id) ON DELETE CASCADE,
		date DATE NOT NULL, -- always the first day of the month
		revenue NUMERIC(14,2) NOT NULL DEFAULT 0,
		product_dev_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
		manpower_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
		marketing_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
		operations_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
		other_expenses NUMERIC(14,2) NOT NULL DEFAULT 0,
		new_customers INT NOT NULL DEFAULT 0 CHECK (new_customers >= 0),
		active_customers INT NOT NULL DEFAULT 0 CHECK (active_customers >= 0),
		UNIQUE (startup_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS chat_threads (
		id TEXT PRIMARY KEY,
		startup_id BIGINT NOT NULL REFERENCES onboarding_data(id) ON DELETE CASCADE,
		title TEXT NOT NULL DEFAULT 'New Chat',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE chat_threads ADD COLUMN IF NOT EXISTS title TEXT NOT NULL DEFAULT 'New Chat'`,
	`CREATE INDEX IF NOT EXISTS chat_threads_startup_id_idx ON chat_threads(startup_id)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		thread_id TEXT NOT NULL REFERENCES chat_threads(id) ON DELETE CASCADE,
		role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS chat_messages_thread_id_idx ON chat_messages(thread_id, id)`,
	`CREATE TABLE IF NOT EXISTS token_usage (
		startup_id BIGINT PRIMARY KEY REFERENCES onboarding_data(id) ON DELETE CASCADE,
		input_tokens BIGINT NOT NULL DEFAULT 0,
		output_tokens BIGINT NOT NULL DEFAULT 0,
		total_tokens BIGINT NOT NULL DEFAULT 0,
		requests BIGINT NOT NULL DEFAULT 0,
		token_quota BIGINT NOT NULL DEFAULT 50000 CHECK (token_quota >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE token_usage ADD COLUMN IF NOT EXISTS token_quota BIGINT NOT NULL DEFAULT 50000`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range schema {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
