package finance

import (
	"github.com/shopspring/decimal"
)

type CashPosition struct {
	InitialCash   decimal.Decimal `json:"initial_cash"`
	CurrentCash   decimal.Decimal `json:"current_cash"`
	MonthsElapsed int             `json:"months_elapsed"`
}

// CurrentCash is the initial cash plus every month's net cash flow.
func CurrentCash(s Snapshot) CashPosition {
	cash := s.Onboarding.InitialCash
	for _, m := range s.Months {
		cash = cash.Add(m.NetCashFlow())
	}
	return CashPosition{
		InitialCash:   s.Onboarding.InitialCash,
		CurrentCash:   cash,
		MonthsElapsed: len(s.Months),
	}
}

// BurnRate compares the planned burn with the recent average of actual expenses.
// Actual and Variance are null until monthly data exists; VariancePct is nil
// when the planned burn is zero.
type BurnRate struct {
	Planned      decimal.Decimal     `json:"planned"`
	Actual       decimal.NullDecimal `json:"actual"`
	WindowMonths int                 `json:"window_months"`
	Variance     decimal.NullDecimal `json:"variance"`
	VariancePct  *float64            `json:"variance_pct"`
}

func ComputeBurnRate(s Snapshot) BurnRate {
	b := BurnRate{Planned: s.Onboarding.PlannedBurn()}
	recent := s.Recent(RecentWindow)
	if len(recent) == 0 {
		return b
	}
	var total decimal.Decimal
	for _, m := range recent {
		total = total.Add(m.TotalExpenses())
	}
	actual := average(total, len(recent))
	variance := actual.Sub(b.Planned)
	b.Actual = decimal.NewNullDecimal(actual)
	b.WindowMonths = len(recent)
	b.Variance = decimal.NewNullDecimal(variance)
	if b.Planned.IsPositive() {
		pct := variance.Div(b.Planned).InexactFloat64() * 100
		b.VariancePct = &pct
	}
	return b
}

type RunwayBasis string

const (
	BasisSimulated RunwayBasis = "simulated"
	BasisPlanned   RunwayBasis = "planned"
	BasisActual    RunwayBasis = "actual"
)

// RunwayResult explains how a runway figure was derived. MonthlyBurn is the
// divisor: the simulated expense, the planned burn, or the recent net burn.
type RunwayResult struct {
	Basis        RunwayBasis         `json:"basis"`
	Runway       Runway              `json:"runway"`
	CurrentCash  decimal.Decimal     `json:"current_cash"`
	MonthlyBurn  decimal.Decimal     `json:"monthly_burn"`
	AvgRevenue   decimal.NullDecimal `json:"avg_revenue"`
	AvgExpenses  decimal.NullDecimal `json:"avg_expenses"`
	WindowMonths int                 `json:"window_months"`
	CashPositive bool                `json:"cash_positive"`
}

// ComputeRunway projects months of cash left. A non-nil simulatedExpense
// replaces the burn entirely.
func ComputeRunway(s Snapshot, simulatedExpense *decimal.Decimal) (RunwayResult, error) {
	cash := CurrentCash(s).CurrentCash
	r := RunwayResult{CurrentCash: cash}

	if simulatedExpense != nil {
		if !simulatedExpense.IsPositive() {
			return RunwayResult{}, ErrInvalidExpense
		}
		r.Basis = BasisSimulated
		r.MonthlyBurn = *simulatedExpense
		r.Runway = runwayFor(cash, *simulatedExpense)
		return r, nil
	}

	recent := s.Recent(RecentWindow)
	if len(recent) == 0 {
		r.Basis = BasisPlanned
		r.MonthlyBurn = s.Onboarding.PlannedBurn()
		r.Runway = runwayFor(cash, r.MonthlyBurn)
		return r, nil
	}

	var revenue, expenses decimal.Decimal
	for _, m := range recent {
		revenue = revenue.Add(m.Revenue)
		expenses = expenses.Add(m.TotalExpenses())
	}
	avgRevenue := average(revenue, len(recent))
	avgExpenses := average(expenses, len(recent))

	r.Basis = BasisActual
	r.AvgRevenue = decimal.NewNullDecimal(avgRevenue)
	r.AvgExpenses = decimal.NewNullDecimal(avgExpenses)
	r.WindowMonths = len(recent)
	r.MonthlyBurn = avgExpenses.Sub(avgRevenue)
	r.CashPositive = !r.MonthlyBurn.IsPositive()
	r.Runway = runwayFor(cash, r.MonthlyBurn)
	return r, nil
}
