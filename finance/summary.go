package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Summary struct {
	StartupName        string          `json:"startup_name"`
	Industry           string          `json:"industry"`
	InitialCash        decimal.Decimal `json:"initial_cash"`
	PlannedRevenue     decimal.Decimal `json:"planned_revenue"`
	PlannedExpenses    decimal.Decimal `json:"planned_expenses"`
	InitialCustomers   int             `json:"initial_customers"`
	TargetRunwayMonths int             `json:"target_runway_months"`
	MonthsElapsed      int             `json:"months_elapsed"`
	CurrentCash        decimal.Decimal `json:"current_cash"`
	Latest             *LatestPosition `json:"latest,omitempty"`
}

// LatestPosition compares the most recent month against the onboarding plan.
type LatestPosition struct {
	Date             time.Time       `json:"date"`
	Revenue          decimal.Decimal `json:"revenue"`
	Expenses         decimal.Decimal `json:"expenses"`
	ActiveCustomers  int             `json:"active_customers"`
	Employees        int             `json:"employees"`
	RevenueVsPlanPct float64         `json:"revenue_vs_plan_pct"`
	CustomerChange   int             `json:"customer_change"`
	Churn            ChurnPoint      `json:"churn"`
}

func Summarize(s Snapshot) Summary {
	o := s.Onboarding
	cash := CurrentCash(s)
	sum := Summary{
		StartupName:        o.StartupName,
		Industry:           o.Industry,
		InitialCash:        o.InitialCash,
		PlannedRevenue:     o.TargetRevenue,
		PlannedExpenses:    o.PlannedBurn(),
		InitialCustomers:   o.InitialCustomers,
		TargetRunwayMonths: o.TargetRunwayMonths,
		MonthsElapsed:      cash.MonthsElapsed,
		CurrentCash:        cash.CurrentCash,
	}
	latest, ok := s.Latest()
	if !ok {
		return sum
	}
	series := ChurnSeries(s)
	lp := &LatestPosition{
		Date:            latest.Date,
		Revenue:         latest.Revenue,
		Expenses:        latest.TotalExpenses(),
		ActiveCustomers: latest.ActiveCustomers,
		Employees:       o.CurrentEmployees,
		CustomerChange:  latest.ActiveCustomers - o.InitialCustomers,
		Churn:           series[len(series)-1],
	}
	if o.TargetRevenue.IsPositive() {
		lp.RevenueVsPlanPct = latest.Revenue.Sub(o.TargetRevenue).Div(o.TargetRevenue).InexactFloat64() * 100
	}
	sum.Latest = lp
	return sum
}
