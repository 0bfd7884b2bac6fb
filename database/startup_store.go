package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"cashflow-guardian/backend/finance"
	"cashflow-guardian/backend/models"
)

// StartupStore persists onboarding profiles and their monthly actuals.
type StartupStore struct {
	pool *pgxpool.Pool
}

func NewStartupStore(pool *pgxpool.Pool) *StartupStore {
	return &StartupStore{pool: pool}
}

const onboardingColumns = `id, startup_name, industry, target_revenue, product_dev_expenses, manpower_expenses,
	marketing_expenses, operations_expenses, initial_cash, initial_customers, current_employees,
	target_runway_months, onboarding_date, created_at`

func scanOnboarding(row pgx.Row) (models.Onboarding, error) {
	var o models.Onboarding
	err := row.Scan(
		&o.ID, &o.StartupName, &o.Industry, &o.TargetRevenue, &o.ProductDevExpenses, &o.ManpowerExpenses,
		&o.MarketingExpenses, &o.OperationsExpenses, &o.InitialCash, &o.InitialCustomers, &o.CurrentEmployees,
		&o.TargetRunwayMonths, &o.OnboardingDate, &o.CreatedAt,
	)
	return o, err
}

func (s *StartupStore) CreateOnboarding(ctx context.Context, o models.Onboarding) (models.Onboarding, error) {
	op := "StartupStore.CreateOnboarding"
	row := s.pool.QueryRow(ctx, `
		INSERT INTO onboarding_data (startup_name, industry, target_revenue, product_dev_expenses, manpower_expenses,
			marketing_expenses, operations_expenses, initial_cash, initial_customers, current_employees,
			target_runway_months, onboarding_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+onboardingColumns,
		o.StartupName, o.Industry, o.TargetRevenue, o.ProductDevExpenses, o.ManpowerExpenses,
		o.MarketingExpenses, o.OperationsExpenses, o.InitialCash, o.InitialCustomers, o.CurrentEmployees,
		o.TargetRunwayMonths, o.OnboardingDate,
	)
	created, err := scanOnboarding(row)
	if err != nil {
		return models.Onboarding{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return created, nil
}

func (s *StartupStore) GetOnboarding(ctx context.Context, startupID int64) (models.Onboarding, error) {
	op := "StartupStore.GetOnboarding"
	row := s.pool.QueryRow(ctx, `SELECT `+onboardingColumns+` FROM onboarding_data WHERE id = $1`, startupID)
	o, err := scanOnboarding(row)
	if err != nil {
		return models.Onboarding{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return o, nil
}

// UpdateOnboarding replaces the baseline profile. The id and created_at are kept.
func (s *StartupStore) UpdateOnboarding(ctx context.Context, o models.Onboarding) (models.Onboarding, error) {
	op := "StartupStore.UpdateOnboarding"
	row := s.pool.QueryRow(ctx, `
		UPDATE onboarding_data SET
			startup_name = $2, industry = $3, target_revenue = $4, product_dev_expenses = $5,
			manpower_expenses = $6, marketing_expenses = $7, operations_expenses = $8, initial_cash = $9,
			initial_customers = $10, current_employees = $11, target_runway_months = $12, onboarding_date = $13
		WHERE id = $1
		RETURNING `+onboardingColumns,
		o.ID, o.StartupName, o.Industry, o.TargetRevenue, o.ProductDevExpenses, o.ManpowerExpenses,
		o.MarketingExpenses, o.OperationsExpenses, o.InitialCash, o.InitialCustomers, o.CurrentEmployees,
		o.TargetRunwayMonths, o.OnboardingDate,
	)
	updated, err := scanOnboarding(row)
	if err != nil {
		return models.Onboarding{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return updated, nil
}

// ListMonthly returns the startup's months, oldest first.
func (s *StartupStore) ListMonthly(ctx context.Context, startupID int64) ([]models.MonthlyRecord, error) {
	op := "StartupStore.ListMonthly"
	rows, err := s.pool.Query(ctx, `
		SELECT id, startup_id, date, revenue, product_dev_expenses, manpower_expenses, marketing_expenses,
			operations_expenses, other_expenses, new_customers, active_customers
		FROM monthly_financial_data
		WHERE startup_id = $1
		ORDER BY date`, startupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []models.MonthlyRecord{}
	for rows.Next() {
		var m models.MonthlyRecord
		if err := rows.Scan(&m.ID, &m.StartupID, &m.Date, &m.Revenue, &m.ProductDevExpenses, &m.ManpowerExpenses,
			&m.MarketingExpenses, &m.OperationsExpenses, &m.OtherExpenses, &m.NewCustomers, &m.ActiveCustomers); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

const upsertMonthlySQL = `
	INSERT INTO monthly_financial_data (startup_id, date, revenue, product_dev_expenses, manpower_expenses,
		marketing_expenses, operations_expenses, other_expenses, new_customers, active_customers)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (startup_id, date) DO UPDATE SET
		revenue = EXCLUDED.revenue,
		product_dev_expenses = EXCLUDED.product_dev_expenses,
		manpower_expenses = EXCLUDED.manpower_expenses,
		marketing_expenses = EXCLUDED.marketing_expenses,
		operations_expenses = EXCLUDED.operations_expenses,
		other_expenses = EXCLUDED.other_expenses,
		new_customers = EXCLUDED.new_customers,
		active_customers = EXCLUDED.active_customers
	RETURNING id`

func upsertArgs(m models.MonthlyRecord) []any {
	return []any{
		m.StartupID, models.MonthStart(m.Date), m.Revenue, m.ProductDevExpenses, m.ManpowerExpenses,
		m.MarketingExpenses, m.OperationsExpenses, m.OtherExpenses, m.NewCustomers, m.ActiveCustomers,
	}
}

// UpsertMonthly writes one month, replacing any existing row for the same month.
func (s *StartupStore) UpsertMonthly(ctx context.Context, m models.MonthlyRecord) (models.MonthlyRecord, error) {
	op := "StartupStore.UpsertMonthly"
	m.Date = models.MonthStart(m.Date)
	if err := s.pool.QueryRow(ctx, upsertMonthlySQL, upsertArgs(m)...).Scan(&m.ID); err != nil {
		return models.MonthlyRecord{}, fmt.Errorf("%s: %w", op, translate(err))
	}
	return m, nil
}

// UpsertMonthlyBatch writes every record in one transaction. Nothing is kept if any row fails.
func (s *StartupStore) UpsertMonthlyBatch(ctx context.Context, records []models.MonthlyRecord) error {
	op := "StartupStore.UpsertMonthlyBatch"
	if len(records) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, m := range records {
		batch.Queue(upsertMonthlySQL, upsertArgs(m)...)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("%s: row %d: %w", op, i+1, translate(err))
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func (s *StartupStore) DeleteMonthly(ctx context.Context, startupID int64, month time.Time) error {
	op := "StartupStore.DeleteMonthly"
	tag, err := s.pool.Exec(ctx, `DELETE FROM monthly_financial_data WHERE startup_id = $1 AND date = $2`,
		startupID, models.MonthStart(month))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// Snapshot loads the onboarding row and the months concurrently.
func (s *StartupStore) Snapshot(ctx context.Context, startupID int64) (finance.Snapshot, error) {
	var snap finance.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := s.GetOnboarding(gctx, startupID)
		snap.Onboarding = o
		return err
	})
	g.Go(func() error {
		months, err := s.ListMonthly(gctx, startupID)
		snap.Months = months
		return err
	})
	if err := g.Wait(); err != nil {
		return finance.Snapshot{}, err
	}
	return snap, nil
}

func (s *StartupStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
