// Package finance computes startup health metrics (cash, burn, runway,
// churn, CAC, LTV, hiring affordability) from the onboarding baseline and
// the monthly actuals. It does no I/O.
package finance

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"

	"cashflow-guardian/backend/models"
)

const (
	// RecentWindow is how many trailing months feed the "recent" averages.
	RecentWindow = 3
	// BreakdownWindow is how many trailing months a churn breakdown lists.
	BreakdownWindow = 6
)

var (
	ErrNoMonthlyData  = errors.New("no monthly financial data")
	ErrInvalidExpense = errors.New("simulated expense must be greater than zero")
	ErrSalaryRequired = errors.New("monthly salary must be provided")
	ErrNegativeSalary = errors.New("monthly salary must not be negative")
	ErrInvalidHorizon = errors.New("months ahead must not be negative")
)

// Snapshot is everything known about one startup. Months are ordered oldest first.
type Snapshot struct {
	Onboarding models.Onboarding
	Months     []models.MonthlyRecord
}

func (s Snapshot) HasMonths() bool { return len(s.Months) > 0 }

// Latest returns the most recent month, if any.
func (s Snapshot) Latest() (models.MonthlyRecord, bool) {
	if len(s.Months) == 0 {
		return models.MonthlyRecord{}, false
	}
	return s.Months[len(s.Months)-1], true
}

// Recent returns the last n months, or all of them when fewer exist.
func (s Snapshot) Recent(n int) []models.MonthlyRecord {
	return lastN(s.Months, n)
}

func lastN[T any](xs []T, n int) []T {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func average(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

// Runway is a whole number of months. It is unbounded when the burn is zero or negative.
type Runway struct {
	Months    int64 `json:"months"`
	Unbounded bool  `json:"unbounded"`
}

func (r Runway) String() string {
	if r.Unbounded {
		return "∞"
	}
	return strconv.FormatInt(r.Months, 10)
}

// runwayFor floors cash/burn. Negative cash gives a negative runway.
func runwayFor(cash, burn decimal.Decimal) Runway {
	if !burn.IsPositive() {
		return Runway{Unbounded: true}
	}
	return Runway{Months: cash.Div(burn).Floor().IntPart()}
}
